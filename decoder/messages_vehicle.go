package decoder

import (
	"time"

	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

const (
	IDTimestamp       uint32 = 0x100
	IDCockpit         uint32 = 0x181
	IDVCUState        uint32 = 0x281
	IDSuspension      uint32 = 0x381
	IDGPSPosition     uint32 = 0x400
	IDGPSExtended     uint32 = 0x401
	IDVelocityBase    uint32 = 0x402
	IDVelocityMag     uint32 = 0x408
	IDCovarianceBase  uint32 = 0x410
	IDCovarianceType  uint32 = 0x419
	IDLoggingCommand  uint32 = 0x420
	IDLoggingStatus   uint32 = 0x421
	IDTripDistance    uint32 = 0x440
	vcuRunningMask           = 0x20
	gpsEpoch1984Unix  int64  = 441763200
	loggingRecording         = 0x01
	mmPerKm                  = 1e6
	kmhPerMetreSecond        = 3.6
)

func vehicleMessages(p Profile) []MessageDef {
	defs := []MessageDef{
		{
			Name:   "timestamp",
			ID:     IDTimestamp,
			MinLen: 6,
			Decode: decodeTimestamp,
		},
		{
			Name:   "vcu_state",
			ID:     IDVCUState,
			MinLen: 1,
			Decode: func(_ int, data []byte) (Apply, error) {
				running := data[0]&vcuRunningMask != 0
				return func(v *signals.Vehicle, at time.Time) { v.VCU.Running.Put(running, at) }, nil
			},
		},
		{
			Name:   "gps_position",
			ID:     IDGPSPosition,
			MinLen: 8,
			Fields: []FieldDef{
				field("lat", 0, utils.I32, ch(func(v *signals.Vehicle) *signals.Float { return &v.GPS.Lat })).over(1e7),
				field("lon", 4, utils.I32, ch(func(v *signals.Vehicle) *signals.Float { return &v.GPS.Lon })).over(1e7),
			},
		},
		{
			Name:   "gps_extended",
			ID:     IDGPSExtended,
			MinLen: 2,
			Decode: decodeGPSExtended,
		},
		{
			Name:     "velocity_component",
			ID:       IDVelocityBase,
			Count:    6,
			UnitBase: IDVelocityBase,
			MinLen:   4,
			Fields: []FieldDef{
				field("component", 0, utils.I32, velocityComponent).over(1000),
			},
		},
		{
			Name:   "velocity_magnitude",
			ID:     IDVelocityMag,
			MinLen: 4,
			Fields: []FieldDef{
				field("magnitude", 0, utils.I32, ch(func(v *signals.Vehicle) *signals.Float { return &v.Velocity.Magnitude })).over(1000),
			},
			Derive: func(v *signals.Vehicle, _ int, at time.Time) {
				v.Velocity.SpeedKmh.Put(v.Velocity.Magnitude.Value*kmhPerMetreSecond, at)
			},
		},
		{
			Name:     "position_covariance",
			ID:       IDCovarianceBase,
			Count:    signals.CovarianceSlots,
			UnitBase: IDCovarianceBase,
			MinLen:   8,
			Fields: []FieldDef{
				field("covariance", 0, utils.F64, func(v *signals.Vehicle, unit int) *signals.Float {
					if unit < 0 || unit >= len(v.GPS.Covariance) {
						return nil
					}
					return &v.GPS.Covariance[unit]
				}),
			},
		},
		{
			Name:   "position_covariance_type",
			ID:     IDCovarianceType,
			MinLen: 1,
			Decode: func(_ int, data []byte) (Apply, error) {
				ct := signals.CovarianceType(data[0])
				return func(v *signals.Vehicle, at time.Time) { v.GPS.CovarianceType.Put(ct, at) }, nil
			},
		},
		{
			Name:   "logging_command",
			ID:     IDLoggingCommand,
			MinLen: 1,
			Fields: []FieldDef{
				field("command", 0, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.Logging.Command })),
			},
		},
		{
			Name:   "logging_status",
			ID:     IDLoggingStatus,
			MinLen: 1,
			Decode: decodeLoggingStatus,
		},
		{
			Name:   "trip_distance",
			ID:     IDTripDistance,
			MinLen: 4,
			Fields: []FieldDef{
				field("distance", 0, utils.U32, ch(func(v *signals.Vehicle) *signals.Float { return &v.Trip.ReportedKm })).over(mmPerKm),
			},
		},
	}

	if p.Layout == LayoutV6 {
		defs = append(defs,
			MessageDef{
				Name:   "vcu_cockpit",
				ID:     IDCockpit,
				MinLen: 8,
				Fields: []FieldDef{
					field("steering", 0, utils.I16, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.Steering })).times(100),
					field("accel", 2, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.Accel })),
					field("apps1", 3, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.APPS1 })),
					field("apps2", 4, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.APPS2 })),
					field("brake", 5, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.Brake })),
					field("bse1", 6, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.BSE1 })),
					field("bse2", 7, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.BSE2 })),
				},
			},
			MessageDef{
				Name:   "vcu_suspension",
				ID:     IDSuspension,
				MinLen: 4,
				Fields: []FieldDef{
					field("front", 0, utils.U16, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.SuspensionFront })).times(0.0001).plus(0.3),
					field("rear", 2, utils.U16, ch(func(v *signals.Vehicle) *signals.Float { return &v.VCU.SuspensionRear })).times(0.0001).plus(0.3),
				},
			},
		)
	}
	return defs
}

func velocityComponent(v *signals.Vehicle, unit int) *signals.Float {
	switch unit {
	case 0:
		return &v.Velocity.Linear.X
	case 1:
		return &v.Velocity.Linear.Y
	case 2:
		return &v.Velocity.Linear.Z
	case 3:
		return &v.Velocity.Angular.X
	case 4:
		return &v.Velocity.Angular.Y
	case 5:
		return &v.Velocity.Angular.Z
	}
	return nil
}

// decodeTimestamp reads milliseconds since midnight (u32) and days since 1984-01-01 (u16).
func decodeTimestamp(_ int, data []byte) (Apply, error) {
	ms, err := utils.ReadRaw(data, 0, utils.U32, utils.LittleEndian)
	if err != nil {
		return nil, err
	}
	days, err := utils.ReadRaw(data, 4, utils.U16, utils.LittleEndian)
	if err != nil {
		return nil, err
	}
	t := time.Unix(gpsEpoch1984Unix+int64(days)*86400, 0).UTC().Add(time.Duration(ms) * time.Millisecond)
	return func(v *signals.Vehicle, at time.Time) { v.Clock.Time.Put(t, at) }, nil
}

// decodeGPSExtended reads altitude and an optional status byte that reads as 0 when absent.
func decodeGPSExtended(_ int, data []byte) (Apply, error) {
	alt, err := utils.ReadRaw(data, 0, utils.I16, utils.LittleEndian)
	if err != nil {
		return nil, err
	}
	status := 0.0
	if len(data) > 2 {
		status = float64(data[2])
	}
	return func(v *signals.Vehicle, at time.Time) {
		v.GPS.Altitude.Put(alt, at)
		v.GPS.Status.Put(status, at)
	}, nil
}

// decodeLoggingStatus reads the data logger's status: 0x01 plus a u32 Unix start time
// while recording, anything else when idle.
func decodeLoggingStatus(_ int, data []byte) (Apply, error) {
	recording := data[0] == loggingRecording
	var started time.Time
	if recording && len(data) >= 5 {
		sec, err := utils.ReadRaw(data, 1, utils.U32, utils.LittleEndian)
		if err != nil {
			return nil, err
		}
		started = time.Unix(int64(sec), 0).UTC()
	}
	return func(v *signals.Vehicle, at time.Time) {
		v.Logging.Recording.Put(recording, at)
		switch {
		case !recording:
			v.Logging.StartedAt = signals.Instant{}
		case !started.IsZero():
			v.Logging.StartedAt.Put(started, at)
		}
	}, nil
}
