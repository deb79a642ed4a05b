// Package decoder turns raw CAN frames into channel writes on a signals.Store.
package decoder

import (
	"fmt"
	"time"

	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

// Apply writes one decoded frame into the vehicle. It runs under the store's write lock
// so every channel of the frame lands together with the same timestamp.
type Apply func(v *signals.Vehicle, at time.Time)

// DecodeFunc is a custom routine for messages that scalar fields cannot describe.
// It sees the full payload and the unit index and must not touch the store.
type DecodeFunc func(unit int, data []byte) (Apply, error)

// Target resolves the channel a field is written to. A nil result skips the write.
type Target func(v *signals.Vehicle, unit int) *signals.Float

// FieldDef is a fixed-position scalar: value = raw / Div * Mul + Add.
// Zero Div or Mul are read as 1.
type FieldDef struct {
	Name   string
	Offset int
	Type   utils.RawType
	Order  utils.ByteOrder
	Div    float64
	Mul    float64
	Add    float64
	// Mirror negates the value on units listed in MessageDef.MirroredUnits.
	Mirror bool
	Target Target
}

func (f FieldDef) scale(raw float64) float64 {
	div, mul := f.Div, f.Mul
	if div == 0 {
		div = 1
	}
	if mul == 0 {
		mul = 1
	}
	return raw/div*mul + f.Add
}

// MessageDef describes one arbitration ID, or a contiguous range of them.
type MessageDef struct {
	Name string
	ID   uint32
	// Count > 1 makes the definition cover ID..ID+Count-1.
	Count int
	// UnitBase is subtracted from the arbitration ID to get the unit index.
	UnitBase uint32
	// MinLen is the shortest payload decoded. Shorter frames are dropped.
	MinLen        int
	Fields        []FieldDef
	Decode        DecodeFunc
	MirroredUnits []int
	// Derive runs after the fields inside the same Apply.
	Derive func(v *signals.Vehicle, unit int, at time.Time)
}

func (d *MessageDef) span() int {
	if d.Count < 1 {
		return 1
	}
	return d.Count
}

func (d *MessageDef) unit(id uint32) int {
	return int(id) - int(d.UnitBase)
}

func (d *MessageDef) mirrored(unit int) bool {
	for _, u := range d.MirroredUnits {
		if u == unit {
			return true
		}
	}
	return false
}

func (d *MessageDef) validate() error {
	if d.MinLen < 0 || d.MinLen > 8 {
		return fmt.Errorf("message %s: min length %d outside 0..8", d.Name, d.MinLen)
	}
	if d.Decode == nil && len(d.Fields) == 0 {
		return fmt.Errorf("message %s: no fields and no decode routine", d.Name)
	}
	for _, f := range d.Fields {
		if f.Target == nil {
			return fmt.Errorf("message %s field %s: no target", d.Name, f.Name)
		}
		if f.Type.Size() == 0 || f.Offset < 0 || f.Offset+f.Type.Size() > d.MinLen {
			return fmt.Errorf("message %s field %s: %s at byte %d does not fit min length %d",
				d.Name, f.Name, f.Type, f.Offset, d.MinLen)
		}
	}
	return nil
}

// decode extracts every field before anything is written, so a failing field
// leaves all of the frame's channels untouched.
func (d *MessageDef) decode(unit int, data []byte) (Apply, error) {
	if d.Decode != nil {
		return d.Decode(unit, data)
	}

	vals := make([]float64, len(d.Fields))
	for i, f := range d.Fields {
		raw, err := utils.ReadRaw(data, f.Offset, f.Type, f.Order)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		v := f.scale(raw)
		if f.Mirror && d.mirrored(unit) {
			v = -v
		}
		vals[i] = v
	}

	return func(v *signals.Vehicle, at time.Time) {
		for i, f := range d.Fields {
			if ch := f.Target(v, unit); ch != nil {
				ch.Put(vals[i], at)
			}
		}
		if d.Derive != nil {
			d.Derive(v, unit, at)
		}
	}, nil
}
