package decoder

import (
	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

const (
	IDXsensQuaternion    uint32 = 0x021
	IDXsensDeltaV        uint32 = 0x031
	IDXsensRateOfTurn    uint32 = 0x032
	IDXsensDeltaQ        uint32 = 0x033
	IDXsensAcceleration  uint32 = 0x034
	IDXsensMagneticField uint32 = 0x041
	IDXsensLatLon        uint32 = 0x071
	IDXsensAltitude      uint32 = 0x072
	IDXsensVelocity      uint32 = 0x076

	degPerRad = 57.2958
)

func simple(fields []FieldDef, minLen int, name string, id uint32) MessageDef {
	return MessageDef{Name: name, ID: id, MinLen: minLen, Fields: fields}
}

// divided rewrites multipliers as divisors for sensors whose firmware documents
// the scale as a divisor.
func divided(fs []FieldDef, d float64) []FieldDef {
	for i := range fs {
		fs[i].Mul = 0
		fs[i].Div = d
	}
	return fs
}

func imuMessages(p Profile) []MessageDef {
	le := utils.LittleEndian
	if p.Layout == LayoutLegacy {
		return []MessageDef{
			simple(divided(axes("lsm6_accel", le, uniform(1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.AccelLSM6 }), 1000), 6, "imu_lsm6_accel", 0x180),
			// The legacy car's message list puts the LSM303 on 0x181, the ID the v6 cockpit
			// reuses. Its firmware dispatch used 0x182; that ID is left unrouted here.
			simple(divided(axes("lsm303_accel", le, uniform(1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.AccelLSM303 }), 1000), 6, "imu_lsm303_accel", 0x181),
			simple(divided(axes("gyro", le, uniform(1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.GyroRad }), 10*degPerRad), 6, "imu_gyro", 0x280),
			simple(divided(axes("euler", le, uniform(1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.Euler }), 100), 6, "imu_euler", 0x380),
			simple(divided(axes("mag", le, uniform(1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.Mag }), 10), 6, "imu_mag", 0x430),
		}
	}

	be := utils.BigEndian
	deltaV := append(
		axes("delta_v", be, xsensAxes(7.62939e-06), func(v *signals.Vehicle) *signals.Vec3 { return &v.Xsens.DeltaV }),
		field("exponent", 6, utils.U8, ch(func(v *signals.Vehicle) *signals.Float { return &v.Xsens.DeltaVExponent })),
	)

	return []MessageDef{
		simple(axes("accel_km6", le, uniform(0.001), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.AccelKM6 }), 6, "imu_accel_km6", 0x185),
		simple(axes("accel_km308", le, uniform(0.001), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.AccelKM308 }), 6, "imu_accel_km308", 0x426),
		simple(axes("gyro", le, uniform(0.1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.Gyro }), 6, "imu_gyro", 0x285),
		simple(axes("euler", le, uniform(0.01), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.Euler }), 6, "imu_euler", 0x385),
		simple(axes("mag", le, uniform(0.1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU.Mag }), 6, "imu_mag", 0x429),

		simple(axes("accel", le, uniform(0.001), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU2.Accel }), 6, "imu2_accel", 0x188),
		simple(axes("gyro", le, uniform(0.1), func(v *signals.Vehicle) *signals.Vec3 { return &v.IMU2.Gyro }), 6, "imu2_gyro", 0x288),
		{
			Name:   "imu2_quaternion",
			ID:     0x488,
			MinLen: 8,
			Fields: quaternion("quaternion", le, 0.0001, func(v *signals.Vehicle) *signals.Quaternion { return &v.IMU2.Quaternion }),
		},

		{
			Name:   "xsens_quaternion",
			ID:     IDXsensQuaternion,
			MinLen: 8,
			Fields: quaternion("quaternion", be, 3.05176e-05, func(v *signals.Vehicle) *signals.Quaternion { return &v.Xsens.Quaternion }),
		},
		simple(deltaV, 7, "xsens_delta_v", IDXsensDeltaV),
		simple(axes("rate_of_turn", be, xsensAxes(0.00195313), func(v *signals.Vehicle) *signals.Vec3 { return &v.Xsens.RateOfTurn }), 6, "xsens_rate_of_turn", IDXsensRateOfTurn),
		{
			Name:   "xsens_delta_q",
			ID:     IDXsensDeltaQ,
			MinLen: 8,
			Fields: quaternion("delta_q", be, 3.05185e-05, func(v *signals.Vehicle) *signals.Quaternion { return &v.Xsens.DeltaQ }),
		},
		simple(axes("acceleration", be, xsensAxes(0.00390625), func(v *signals.Vehicle) *signals.Vec3 { return &v.Xsens.Acceleration }), 6, "xsens_acceleration", IDXsensAcceleration),
		simple(axes("magnetic_field", be, xsensAxes(0.000976563), func(v *signals.Vehicle) *signals.Vec3 { return &v.Xsens.MagneticField }), 6, "xsens_magnetic_field", IDXsensMagneticField),
		{
			Name:   "xsens_lat_lon",
			ID:     IDXsensLatLon,
			MinLen: 8,
			Fields: []FieldDef{
				field("lat", 0, utils.I32, ch(func(v *signals.Vehicle) *signals.Float { return &v.Xsens.Lat })).big().times(5.96046e-08),
				field("lon", 4, utils.I32, ch(func(v *signals.Vehicle) *signals.Float { return &v.Xsens.Lon })).big().times(1.19209e-07),
			},
		},
		{
			Name:   "xsens_altitude",
			ID:     IDXsensAltitude,
			MinLen: 4,
			Fields: []FieldDef{
				field("altitude", 0, utils.I32, ch(func(v *signals.Vehicle) *signals.Float { return &v.Xsens.Altitude })).big().times(3.05176e-05),
			},
		},
		simple(axes("velocity", be, xsensAxes(0.015625), func(v *signals.Vehicle) *signals.Vec3 { return &v.Xsens.Velocity }), 6, "xsens_velocity", IDXsensVelocity),
	}
}

// Messages returns the complete message map for a profile.
func Messages(p Profile) []MessageDef {
	var defs []MessageDef
	defs = append(defs, vehicleMessages(p)...)
	defs = append(defs, powertrainMessages(p)...)
	defs = append(defs, imuMessages(p)...)
	return defs
}

// NewProfileTable builds and validates the table for a profile.
func NewProfileTable(p Profile) (*Table, error) {
	return NewTable(Messages(p))
}
