package decoder

import (
	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

func field(name string, off int, typ utils.RawType, target Target) FieldDef {
	return FieldDef{Name: name, Offset: off, Type: typ, Target: target}
}

func (f FieldDef) times(m float64) FieldDef { f.Mul = m; return f }
func (f FieldDef) over(d float64) FieldDef  { f.Div = d; return f }
func (f FieldDef) plus(a float64) FieldDef  { f.Add = a; return f }
func (f FieldDef) big() FieldDef            { f.Order = utils.BigEndian; return f }
func (f FieldDef) mirror() FieldDef         { f.Mirror = true; return f }

// ch targets a channel that does not depend on the unit index.
func ch(get func(v *signals.Vehicle) *signals.Float) Target {
	return func(v *signals.Vehicle, _ int) *signals.Float { return get(v) }
}

// inv targets a channel of the inverter addressed by the unit index.
func inv(get func(i *signals.Inverter) *signals.Float) Target {
	return func(v *signals.Vehicle, unit int) *signals.Float {
		i := v.Inverter(unit)
		if i == nil {
			return nil
		}
		return get(i)
	}
}

// axes builds three consecutive 16-bit axis fields at bytes 0, 2 and 4.
// muls gives the X, Y and Z multipliers.
func axes(prefix string, order utils.ByteOrder, muls [3]float64, get func(v *signals.Vehicle) *signals.Vec3) []FieldDef {
	pick := [3]func(a *signals.Vec3) *signals.Float{
		func(a *signals.Vec3) *signals.Float { return &a.X },
		func(a *signals.Vec3) *signals.Float { return &a.Y },
		func(a *signals.Vec3) *signals.Float { return &a.Z },
	}
	names := [3]string{"x", "y", "z"}
	out := make([]FieldDef, 3)
	for i := range out {
		p := pick[i]
		out[i] = FieldDef{
			Name:   prefix + "." + names[i],
			Offset: 2 * i,
			Type:   utils.I16,
			Order:  order,
			Mul:    muls[i],
			Target: func(v *signals.Vehicle, _ int) *signals.Float { return p(get(v)) },
		}
	}
	return out
}

func uniform(m float64) [3]float64 { return [3]float64{m, m, m} }

// xsensAxes uses the sensor's mounting: X and Y scales are negative, Z positive.
func xsensAxes(m float64) [3]float64 { return [3]float64{-m, -m, m} }

// quaternion builds four consecutive 16-bit components W, X, Y, Z.
func quaternion(prefix string, order utils.ByteOrder, mul float64, get func(v *signals.Vehicle) *signals.Quaternion) []FieldDef {
	pick := [4]func(q *signals.Quaternion) *signals.Float{
		func(q *signals.Quaternion) *signals.Float { return &q.W },
		func(q *signals.Quaternion) *signals.Float { return &q.X },
		func(q *signals.Quaternion) *signals.Float { return &q.Y },
		func(q *signals.Quaternion) *signals.Float { return &q.Z },
	}
	names := [4]string{"w", "x", "y", "z"}
	out := make([]FieldDef, 4)
	for i := range out {
		p := pick[i]
		out[i] = FieldDef{
			Name:   prefix + "." + names[i],
			Offset: 2 * i,
			Type:   utils.I16,
			Order:  order,
			Mul:    mul,
			Target: func(v *signals.Vehicle, _ int) *signals.Float { return p(get(v)) },
		}
	}
	return out
}
