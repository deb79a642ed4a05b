// Package signals holds the decoded vehicle state: every channel the decoder can
// write, each with its latest value, arrival timestamp and a presence flag.
package signals

import (
	"encoding/json"
	"time"
)

// Reading is the latest value of one channel. Set is false until the first decode.
type Reading[T any] struct {
	Value T
	At    time.Time
	Set   bool
}

// Put records v as the channel's current value.
func (r *Reading[T]) Put(v T, at time.Time) {
	r.Value = v
	r.At = at
	r.Set = true
}

// Get returns the value and whether the channel has ever been written.
func (r Reading[T]) Get() (T, bool) {
	return r.Value, r.Set
}

// Age is the time since the last write, measured from now. Unset channels report zero.
func (r Reading[T]) Age(now time.Time) time.Duration {
	if !r.Set {
		return 0
	}
	return now.Sub(r.At)
}

type readingJSON[T any] struct {
	Value T         `json:"value"`
	At    time.Time `json:"at"`
}

// MarshalJSON encodes an unset channel as null.
func (r Reading[T]) MarshalJSON() ([]byte, error) {
	if !r.Set {
		return []byte("null"), nil
	}
	return json.Marshal(readingJSON[T]{Value: r.Value, At: r.At})
}

type Float = Reading[float64]
type Flag = Reading[bool]
type Instant = Reading[time.Time]

type Vec3 struct {
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
}

type Quaternion struct {
	W Float `json:"w"`
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
}
