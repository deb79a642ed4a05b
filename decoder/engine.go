package decoder

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

// Stats counts what Process did with each frame.
type Stats struct {
	Frames       uint64 `json:"frames"`
	Decoded      uint64 `json:"decoded"`
	Unmatched    uint64 `json:"unmatched"`
	Truncated    uint64 `json:"truncated"`
	ShardRejects uint64 `json:"shard_rejects"`
	DecodeErrors uint64 `json:"decode_errors"`
}

// Engine decodes frames from any number of buses into one store.
type Engine struct {
	table *Table
	store *signals.Store
	log   *utils.Logger
	now   func() time.Time

	frames       atomic.Uint64
	decoded      atomic.Uint64
	unmatched    atomic.Uint64
	truncated    atomic.Uint64
	shardRejects atomic.Uint64
	decodeErrors atomic.Uint64
}

func NewEngine(table *Table, store *signals.Store, log *utils.Logger) *Engine {
	if log == nil {
		log = utils.NewNopLogger()
	}
	return &Engine{
		table: table,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (e *Engine) Store() *signals.Store { return e.store }

// Process decodes one frame. Frames with no route or a short payload are dropped
// without error. Invalid shard indices return *ShardIndexError and failing routines
// return *DecodeError; neither stops the caller.
func (e *Engine) Process(f utils.Frame) (err error) {
	e.frames.Add(1)

	def, unit, ok := e.table.Lookup(f.ID)
	if !ok {
		e.unmatched.Add(1)
		e.log.Trace("RX unmatched %s", f)
		return nil
	}
	if len(f.Data) < def.MinLen {
		e.truncated.Add(1)
		e.log.Trace("RX short %s want>=%d", f, def.MinLen)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.decodeErrors.Add(1)
			err = &DecodeError{ID: f.ID, Message: def.Name, Err: fmt.Errorf("panic: %v", r)}
			e.log.Error("%v", err)
		}
	}()

	apply, err := def.decode(unit, f.Data)
	if err != nil {
		var se *ShardIndexError
		if errors.As(err, &se) {
			e.shardRejects.Add(1)
			e.log.Warn("%v", se)
			return se
		}
		e.decodeErrors.Add(1)
		de := &DecodeError{ID: f.ID, Message: def.Name, Err: err}
		e.log.Error("%v", de)
		return de
	}

	at := f.Timestamp
	if at.IsZero() {
		at = e.now()
	}
	e.store.Update(func(v *signals.Vehicle) { apply(v, at) })
	e.decoded.Add(1)
	e.log.Trace("RX %s -> %s unit=%d", f, def.Name, unit)
	return nil
}

func (e *Engine) Stats() Stats {
	return Stats{
		Frames:       e.frames.Load(),
		Decoded:      e.decoded.Load(),
		Unmatched:    e.unmatched.Load(),
		Truncated:    e.truncated.Load(),
		ShardRejects: e.shardRejects.Load(),
		DecodeErrors: e.decodeErrors.Load(),
	}
}

// RestoreTrip seeds the odometer, typically with the total persisted by the last run.
func (e *Engine) RestoreTrip(km float64) {
	at := e.now()
	e.store.Update(func(v *signals.Vehicle) {
		v.Trip.Odometer.Restore(km)
		v.Trip.IntegratedKm.Put(v.Trip.Odometer.Total(), at)
	})
}

func (e *Engine) TripKm() float64 {
	var km float64
	e.store.View(func(v *signals.Vehicle) { km = v.Trip.Odometer.Total() })
	return km
}

// SetRecording records the local logger state. The start time is kept while recording.
func (e *Engine) SetRecording(on bool, started time.Time) {
	at := e.now()
	e.store.Update(func(v *signals.Vehicle) {
		v.Logging.Recording.Put(on, at)
		if on {
			v.Logging.StartedAt.Put(started, at)
		} else {
			v.Logging.StartedAt = signals.Instant{}
		}
	})
}
