// Package tripstore persists the trip odometer between runs.
package tripstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketTrip    = []byte("trip")
	bucketHistory = []byte("history")
	keyTotal      = []byte("total_km")
)

// ErrNoTotal is returned by Load before anything has been saved.
var ErrNoTotal = errors.New("no saved trip total")

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open trip db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketTrip, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init trip db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Load returns the last saved total.
func (s *Store) Load() (float64, error) {
	var km float64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTrip).Get(keyTotal)
		if v == nil {
			return ErrNoTotal
		}
		if len(v) != 8 {
			return fmt.Errorf("trip total: %d bytes, want 8", len(v))
		}
		km = math.Float64frombits(binary.BigEndian.Uint64(v))
		return nil
	})
	return km, err
}

// Save stores the total and appends it to the history keyed by save time.
func (s *Store) Save(km float64, at time.Time) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, math.Float64bits(km))
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(at.UnixNano()))

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketTrip).Put(keyTotal, val); err != nil {
			return err
		}
		return tx.Bucket(bucketHistory).Put(key, val)
	})
}

// Entry is one historical save.
type Entry struct {
	At time.Time
	Km float64
}

// History returns up to limit most recent saves, newest first. limit <= 0 returns all.
func (s *Store) History(limit int) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			if len(k) != 8 || len(v) != 8 {
				continue
			}
			out = append(out, Entry{
				At: time.Unix(0, int64(binary.BigEndian.Uint64(k))).UTC(),
				Km: math.Float64frombits(binary.BigEndian.Uint64(v)),
			})
		}
		return nil
	})
	return out, err
}
