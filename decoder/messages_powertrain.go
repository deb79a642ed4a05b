package decoder

import (
	"time"

	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

const (
	IDAccumulatorHeartbeat uint32 = 0x710
	IDInverterStatusBase   uint32 = 0x190
	IDInverterStateBase    uint32 = 0x290
	IDInverterTempBase     uint32 = 0x390
	IDInverterHeartbeat    uint32 = 0x710
	IDInverterControlBase  uint32 = 0x210

	AccumulatorAlive byte = 0x7F
	InverterAlive    byte = 0x05

	// Left and right rear wheels feed the trip odometer.
	leftWheelUnit  = 3
	rightWheelUnit = 4
)

// accumulatorIDs differ between layouts; everything else on the powertrain bus is shared.
type accumulatorIDs struct {
	cellVoltage     uint32
	cellTemperature uint32
	status          uint32
	state           uint32
}

func accumulatorLayout(l Layout) accumulatorIDs {
	if l == LayoutLegacy {
		return accumulatorIDs{cellVoltage: 0x190, cellTemperature: 0x390, status: 0x290, state: 0x490}
	}
	return accumulatorIDs{cellVoltage: 0x601, cellTemperature: 0x651, status: 0x501, state: 0x511}
}

func powertrainMessages(p Profile) []MessageDef {
	ids := accumulatorLayout(p.Layout)

	return []MessageDef{
		{
			Name:   "cell_voltages",
			ID:     ids.cellVoltage,
			MinLen: 8,
			Decode: shardDecoder(ids.cellVoltage, "cell_voltages", signals.CellVoltageMaxIndex,
				func(b byte) float64 { return float64(b) * 0.02 },
				func(v *signals.Vehicle) []signals.Float { return v.Accumulator.CellVoltages[:] }),
		},
		{
			Name:   "cell_temperatures",
			ID:     ids.cellTemperature,
			MinLen: 8,
			Decode: shardDecoder(ids.cellTemperature, "cell_temperatures", signals.CellTemperatureMaxIdx,
				func(b byte) float64 { return float64(b) - 32 },
				func(v *signals.Vehicle) []signals.Float { return v.Accumulator.CellTemperatures[:] }),
		},
		{
			Name:   "accumulator_heartbeat",
			ID:     IDAccumulatorHeartbeat,
			MinLen: 1,
			Decode: heartbeatDecoder(AccumulatorAlive, func(v *signals.Vehicle, _ int) *signals.Flag {
				return &v.Accumulator.Heartbeat
			}),
		},
		{
			Name:   "accumulator_status",
			ID:     ids.status,
			MinLen: 7,
			Fields: []FieldDef{
				field("status", 0, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.Accumulator.Status })),
				field("temperature", 1, utils.I16, ch(func(v *signals.Vehicle) *signals.Float { return &v.Accumulator.Temperature })).times(0.125),
				field("voltage", 3, utils.U32, ch(func(v *signals.Vehicle) *signals.Float { return &v.Accumulator.Voltage })).over(1024),
			},
		},
		{
			Name:   "accumulator_state",
			ID:     ids.state,
			MinLen: 5,
			Fields: []FieldDef{
				field("soc", 0, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.Accumulator.SOC })),
				field("current", 1, utils.I16, ch(func(v *signals.Vehicle) *signals.Float { return &v.Accumulator.Current })).times(0.01),
				field("capacity", 3, utils.I16, ch(func(v *signals.Vehicle) *signals.Float { return &v.Accumulator.Capacity })).times(0.01),
			},
		},
		{
			Name:          "inverter_status",
			ID:            IDInverterStatusBase + 1,
			Count:         signals.InverterCount,
			UnitBase:      IDInverterStatusBase,
			MinLen:        6,
			MirroredUnits: p.MirroredUnits,
			Fields: []FieldDef{
				field("status_word0", 0, utils.U8, inv(func(i *signals.Inverter) *signals.Float { return &i.StatusWord0 })),
				field("status_word1", 1, utils.U8, inv(func(i *signals.Inverter) *signals.Float { return &i.StatusWord1 })),
				field("torque", 2, utils.I16, inv(func(i *signals.Inverter) *signals.Float { return &i.Torque })).
					over(1000).times(p.FeedbackTorqueScale).mirror(),
				field("speed", 4, utils.I16, inv(func(i *signals.Inverter) *signals.Float { return &i.Speed })),
			},
			Derive: integrateTrip,
		},
		{
			Name:     "inverter_state",
			ID:       IDInverterStateBase + 1,
			Count:    signals.InverterCount,
			UnitBase: IDInverterStateBase,
			MinLen:   4,
			Fields: []FieldDef{
				field("dc_voltage", 0, utils.U16, inv(func(i *signals.Inverter) *signals.Float { return &i.DCVoltage })).over(100),
				field("dc_current", 2, utils.U16, inv(func(i *signals.Inverter) *signals.Float { return &i.DCCurrent })).over(100),
			},
		},
		{
			Name:     "inverter_temperature",
			ID:       IDInverterTempBase + 1,
			Count:    signals.InverterCount,
			UnitBase: IDInverterTempBase,
			MinLen:   6,
			Fields: []FieldDef{
				field("mos_temp", 0, utils.I16, inv(func(i *signals.Inverter) *signals.Float { return &i.MOSTemp })).times(0.1),
				field("mcu_temp", 2, utils.I16, inv(func(i *signals.Inverter) *signals.Float { return &i.MCUTemp })).times(0.1),
				field("motor_temp", 4, utils.I16, inv(func(i *signals.Inverter) *signals.Float { return &i.MotorTemp })).times(0.1),
			},
		},
		{
			Name:     "inverter_heartbeat",
			ID:       IDInverterHeartbeat + 1,
			Count:    signals.InverterCount,
			UnitBase: IDInverterHeartbeat,
			MinLen:   1,
			Decode: heartbeatDecoder(InverterAlive, func(v *signals.Vehicle, unit int) *signals.Flag {
				i := v.Inverter(unit)
				if i == nil {
					return nil
				}
				return &i.Heartbeat
			}),
		},
		{
			Name:          "inverter_control",
			ID:            IDInverterControlBase + 1,
			Count:         signals.InverterCount,
			UnitBase:      IDInverterControlBase,
			MinLen:        4,
			MirroredUnits: p.MirroredUnits,
			Fields: []FieldDef{
				field("control_word", 0, utils.U16, inv(func(i *signals.Inverter) *signals.Float { return &i.ControlWord })),
				field("target_torque", 2, utils.I16, inv(func(i *signals.Inverter) *signals.Float { return &i.TargetTorque })).
					over(1000).times(p.CommandTorqueScale).mirror(),
			},
		},
	}
}

// shardDecoder writes seven consecutive array slots starting at the index in byte 0.
// The index must be a multiple of the stride and no greater than maxIndex.
func shardDecoder(id uint32, array string, maxIndex int, transform func(b byte) float64,
	slots func(v *signals.Vehicle) []signals.Float) DecodeFunc {
	return func(_ int, data []byte) (Apply, error) {
		idx := int(data[0])
		if idx%signals.ShardStride != 0 || idx > maxIndex {
			return nil, &ShardIndexError{ID: id, Array: array, Index: idx}
		}
		var vals [signals.ShardStride]float64
		for i := range vals {
			vals[i] = transform(data[1+i])
		}
		return func(v *signals.Vehicle, at time.Time) {
			s := slots(v)
			for i, val := range vals {
				if j := idx + i; j < len(s) {
					s[j].Put(val, at)
				}
			}
		}, nil
	}
}

// heartbeatDecoder reports alive only when byte 0 equals the sentinel exactly.
func heartbeatDecoder(sentinel byte, target func(v *signals.Vehicle, unit int) *signals.Flag) DecodeFunc {
	return func(unit int, data []byte) (Apply, error) {
		alive := data[0] == sentinel
		return func(v *signals.Vehicle, at time.Time) {
			if f := target(v, unit); f != nil {
				f.Put(alive, at)
			}
		}, nil
	}
}

func integrateTrip(v *signals.Vehicle, unit int, at time.Time) {
	if unit != leftWheelUnit && unit != rightWheelUnit {
		return
	}
	left := v.Inverter(leftWheelUnit).Speed
	right := v.Inverter(rightWheelUnit).Speed
	km := v.Trip.Odometer.Observe(left, right, at)
	if left.Set && right.Set {
		v.Trip.IntegratedKm.Put(km, at)
	}
}
