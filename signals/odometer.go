package signals

import (
	"math"
	"time"
)

// DefaultKmFactor converts wheel rpm to km/h.
const DefaultKmFactor = 0.00709

// Odometer integrates trip distance from the left and right rear wheel speeds.
type Odometer struct {
	kmFactor float64
	total    float64
	last     time.Time
}

func NewOdometer(kmFactor float64) Odometer {
	if kmFactor <= 0 {
		kmFactor = DefaultKmFactor
	}
	return Odometer{kmFactor: kmFactor}
}

// Restore seeds the running total, typically from persisted state.
func (o *Odometer) Restore(km float64) {
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		km = 0
	}
	o.total = km
}

func (o *Odometer) Total() float64 { return o.total }

// Observe is called after either wheel speed changes. Nothing is integrated until both
// wheels have been seen. Time only moves forward; a non-positive step adds nothing.
func (o *Odometer) Observe(left, right Float, at time.Time) float64 {
	if !left.Set || !right.Set {
		return o.total
	}
	if o.kmFactor == 0 {
		o.kmFactor = DefaultKmFactor
	}
	if !o.last.IsZero() {
		dt := at.Sub(o.last).Seconds()
		if dt <= 0 {
			return o.total
		}
		avg := (math.Abs(left.Value) + math.Abs(right.Value)) / 2
		o.total += avg * o.kmFactor / 3600 * dt
	}
	o.last = at
	return o.total
}
