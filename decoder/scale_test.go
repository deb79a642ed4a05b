package decoder

import (
	"math"
	"testing"

	"ev-telemetry/signals"
)

type floatGetter func(v *signals.Vehicle) signals.Float

func TestDecode_ScaleTable(t *testing.T) {
	v6, legacy := V6Profile(), LegacyProfile()
	inverter := func(unit int, get func(i *signals.Inverter) signals.Float) floatGetter {
		return func(v *signals.Vehicle) signals.Float { return get(v.Inverter(unit)) }
	}

	cases := []struct {
		name    string
		profile Profile
		id      uint32
		data    []byte
		get     floatGetter
		want    float64
	}{
		// Vehicle bus.
		{"cockpit steering", v6, 0x181, []byte{0xFA, 0x00, 10, 20, 30, 40, 50, 60}, func(v *signals.Vehicle) signals.Float { return v.VCU.Steering }, 25000},
		{"cockpit apps2", v6, 0x181, []byte{0xFA, 0x00, 10, 20, 30, 40, 50, 60}, func(v *signals.Vehicle) signals.Float { return v.VCU.APPS2 }, 30},
		{"suspension front", v6, 0x381, []byte{0x10, 0x27, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.VCU.SuspensionFront }, 1.3},
		{"suspension rear at zero raw", v6, 0x381, []byte{0x10, 0x27, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.VCU.SuspensionRear }, 0.3},
		{"gps lat", v6, 0x400, []byte{0x80, 0x96, 0x98, 0x00, 0x00, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.GPS.Lat }, 1.0},
		{"gps lon negative", v6, 0x400, []byte{0x00, 0x00, 0x00, 0x00, 0x80, 0x69, 0x67, 0xFF}, func(v *signals.Vehicle) signals.Float { return v.GPS.Lon }, -1.0},
		{"gps altitude", v6, 0x401, []byte{0x64, 0x00, 0x03}, func(v *signals.Vehicle) signals.Float { return v.GPS.Altitude }, 100},
		{"gps status", v6, 0x401, []byte{0x64, 0x00, 0x03}, func(v *signals.Vehicle) signals.Float { return v.GPS.Status }, 3},
		{"linear velocity x", v6, 0x402, []byte{0xDC, 0x05, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Velocity.Linear.X }, 1.5},
		{"angular velocity z", v6, 0x407, []byte{0x18, 0xFC, 0xFF, 0xFF}, func(v *signals.Vehicle) signals.Float { return v.Velocity.Angular.Z }, -1.0},
		{"velocity magnitude", v6, 0x408, []byte{0xE8, 0x03, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Velocity.Magnitude }, 1.0},
		{"covariance slot 8", v6, 0x418, []byte{0, 0, 0, 0, 0, 0, 0xF8, 0x3F}, func(v *signals.Vehicle) signals.Float { return v.GPS.Covariance[8] }, 1.5},
		{"logging command", v6, 0x420, []byte{0x02}, func(v *signals.Vehicle) signals.Float { return v.Logging.Command }, 2},
		{"reported trip", v6, 0x440, []byte{0x40, 0x42, 0x0F, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Trip.ReportedKm }, 1.0},

		// Accumulator.
		{"cell voltage", v6, 0x601, []byte{7, 100, 0, 0, 0, 0, 0, 0}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.CellVoltages[7] }, 2.0},
		{"cell temperature", v6, 0x651, []byte{14, 52, 0, 0, 0, 0, 0, 0}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.CellTemperatures[14] }, 20},
		{"accumulator status", v6, 0x501, []byte{0x03, 0x08, 0x00, 0x00, 0x04, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.Status }, 3},
		{"accumulator temperature", v6, 0x501, []byte{0x03, 0x08, 0x00, 0x00, 0x04, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.Temperature }, 1},
		{"accumulator voltage", v6, 0x501, []byte{0x03, 0x08, 0x00, 0x00, 0x04, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.Voltage }, 1},
		{"accumulator soc", v6, 0x511, []byte{0x32, 0x9C, 0xFF, 0x64, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.SOC }, 50},
		{"accumulator current", v6, 0x511, []byte{0x32, 0x9C, 0xFF, 0x64, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.Current }, -1},
		{"accumulator capacity", v6, 0x511, []byte{0x32, 0x9C, 0xFF, 0x64, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.Capacity }, 1},

		// Inverters.
		{"inverter status word1", v6, 0x191, []byte{0x01, 0x02, 0xE8, 0x03, 0x10, 0x00}, inverter(1, func(i *signals.Inverter) signals.Float { return i.StatusWord1 }), 2},
		{"inverter torque", v6, 0x191, []byte{0x01, 0x02, 0xE8, 0x03, 0x10, 0x00}, inverter(1, func(i *signals.Inverter) signals.Float { return i.Torque }), 20},
		{"inverter torque mirrored", v6, 0x193, []byte{0x01, 0x02, 0xE8, 0x03, 0x10, 0x00}, inverter(3, func(i *signals.Inverter) signals.Float { return i.Torque }), -20},
		{"inverter speed", v6, 0x194, []byte{0x01, 0x02, 0xE8, 0x03, 0x18, 0xFC}, inverter(4, func(i *signals.Inverter) signals.Float { return i.Speed }), -1000},
		{"inverter dc voltage", v6, 0x292, []byte{0x10, 0x27, 0x64, 0x00}, inverter(2, func(i *signals.Inverter) signals.Float { return i.DCVoltage }), 100},
		{"inverter dc current", v6, 0x292, []byte{0x10, 0x27, 0x64, 0x00}, inverter(2, func(i *signals.Inverter) signals.Float { return i.DCCurrent }), 1},
		{"inverter mos temp", v6, 0x393, []byte{0xF6, 0xFF, 0x0A, 0x00, 0x64, 0x00}, inverter(3, func(i *signals.Inverter) signals.Float { return i.MOSTemp }), -1},
		{"inverter mcu temp", v6, 0x393, []byte{0xF6, 0xFF, 0x0A, 0x00, 0x64, 0x00}, inverter(3, func(i *signals.Inverter) signals.Float { return i.MCUTemp }), 1},
		{"inverter motor temp", v6, 0x393, []byte{0xF6, 0xFF, 0x0A, 0x00, 0x64, 0x00}, inverter(3, func(i *signals.Inverter) signals.Float { return i.MotorTemp }), 10},
		{"inverter control word", v6, 0x211, []byte{0x0F, 0x00, 0xE8, 0x03}, inverter(1, func(i *signals.Inverter) signals.Float { return i.ControlWord }), 15},
		{"inverter target torque", v6, 0x212, []byte{0x0F, 0x00, 0xE8, 0x03}, inverter(2, func(i *signals.Inverter) signals.Float { return i.TargetTorque }), 20},
		{"inverter target torque mirrored", v6, 0x213, []byte{0x0F, 0x00, 0xE8, 0x03}, inverter(3, func(i *signals.Inverter) signals.Float { return i.TargetTorque }), -20},
		{"legacy feedback torque", legacy, 0x193, []byte{0x01, 0x02, 0xE8, 0x03, 0x10, 0x00}, inverter(3, func(i *signals.Inverter) signals.Float { return i.Torque }), 25},

		// On-board IMU and IMU2.
		{"imu accel km6 x", v6, 0x185, []byte{0xE8, 0x03, 0x18, 0xFC, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.AccelKM6.X }, 1.0},
		{"imu accel km6 y", v6, 0x185, []byte{0xE8, 0x03, 0x18, 0xFC, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.AccelKM6.Y }, -1.0},
		{"imu accel km308 z", v6, 0x426, []byte{0x00, 0x00, 0x00, 0x00, 0xE8, 0x03}, func(v *signals.Vehicle) signals.Float { return v.IMU.AccelKM308.Z }, 1.0},
		{"imu gyro", v6, 0x285, []byte{0x64, 0x00, 0x00, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.Gyro.X }, 10},
		{"imu euler", v6, 0x385, []byte{0x00, 0x00, 0x28, 0x23, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.Euler.Y }, 90},
		{"imu mag", v6, 0x429, []byte{0x00, 0x00, 0x00, 0x00, 0xF4, 0x01}, func(v *signals.Vehicle) signals.Float { return v.IMU.Mag.Z }, 50},
		{"imu2 accel", v6, 0x188, []byte{0xE8, 0x03, 0x00, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU2.Accel.X }, 1.0},
		{"imu2 gyro", v6, 0x288, []byte{0x00, 0x00, 0x9C, 0xFF, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU2.Gyro.Y }, -10},
		{"imu2 quaternion w", v6, 0x488, []byte{0x10, 0x27, 0, 0, 0, 0, 0, 0}, func(v *signals.Vehicle) signals.Float { return v.IMU2.Quaternion.W }, 1.0},

		// Xsens, big-endian with mirrored X and Y axes.
		{"xsens quaternion w", v6, 0x021, []byte{0x7F, 0xFF, 0, 0, 0, 0, 0, 0}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Quaternion.W }, 32767 * 3.05176e-05},
		{"xsens delta v x", v6, 0x031, []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x05}, func(v *signals.Vehicle) signals.Float { return v.Xsens.DeltaV.X }, -7.62939e-06},
		{"xsens delta v exponent", v6, 0x031, []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x05}, func(v *signals.Vehicle) signals.Float { return v.Xsens.DeltaVExponent }, 5},
		{"xsens rate of turn x", v6, 0x032, []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x01}, func(v *signals.Vehicle) signals.Float { return v.Xsens.RateOfTurn.X }, -0.00195313},
		{"xsens rate of turn y", v6, 0x032, []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x01}, func(v *signals.Vehicle) signals.Float { return v.Xsens.RateOfTurn.Y }, -0.00195313},
		{"xsens rate of turn z", v6, 0x032, []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x01}, func(v *signals.Vehicle) signals.Float { return v.Xsens.RateOfTurn.Z }, 0.00195313},
		{"xsens delta q w", v6, 0x033, []byte{0x00, 0x02, 0, 0, 0, 0, 0, 0}, func(v *signals.Vehicle) signals.Float { return v.Xsens.DeltaQ.W }, 2 * 3.05185e-05},
		{"xsens acceleration x", v6, 0x034, []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Acceleration.X }, -1.0},
		{"xsens acceleration z", v6, 0x034, []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Acceleration.Z }, 1.0},
		{"xsens magnetic field z", v6, 0x041, []byte{0x00, 0x00, 0x00, 0x00, 0x04, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Xsens.MagneticField.Z }, 1024 * 0.000976563},
		{"xsens lat", v6, 0x071, []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Lat }, 16777216 * 5.96046e-08},
		{"xsens lon", v6, 0x071, []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Lon }, 16777216 * 1.19209e-07},
		{"xsens altitude", v6, 0x072, []byte{0x00, 0x01, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Altitude }, 65536 * 3.05176e-05},
		{"xsens velocity x", v6, 0x076, []byte{0x00, 0x40, 0x00, 0x00, 0x00, 0x40}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Velocity.X }, -1.0},
		{"xsens velocity z", v6, 0x076, []byte{0x00, 0x40, 0x00, 0x00, 0x00, 0x40}, func(v *signals.Vehicle) signals.Float { return v.Xsens.Velocity.Z }, 1.0},

		// Legacy layout.
		{"legacy lsm6 accel", legacy, 0x180, []byte{0xE8, 0x03, 0x00, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.AccelLSM6.X }, 1.0},
		{"legacy lsm303 accel", legacy, 0x181, []byte{0x00, 0x00, 0x18, 0xFC, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.AccelLSM303.Y }, -1.0},
		{"legacy gyro rad", legacy, 0x280, []byte{0x3D, 0x02, 0x00, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.GyroRad.X }, 573 / (10 * 57.2958)},
		{"legacy euler", legacy, 0x380, []byte{0x00, 0x00, 0x00, 0x00, 0x28, 0x23}, func(v *signals.Vehicle) signals.Float { return v.IMU.Euler.Z }, 90},
		{"legacy mag", legacy, 0x430, []byte{0xF4, 0x01, 0x00, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.IMU.Mag.X }, 50},
		{"legacy cell voltage", legacy, 0x190, []byte{0, 150, 0, 0, 0, 0, 0, 0}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.CellVoltages[0] }, 3.0},
		{"legacy cell temperature", legacy, 0x390, []byte{0, 57, 0, 0, 0, 0, 0, 0}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.CellTemperatures[0] }, 25},
		{"legacy accumulator voltage", legacy, 0x290, []byte{0x00, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.Voltage }, 2},
		{"legacy accumulator current", legacy, 0x490, []byte{0x00, 0x64, 0x00, 0x00, 0x00}, func(v *signals.Vehicle) signals.Float { return v.Accumulator.Current }, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, tc.profile)
			mustProcess(t, e, frame(tc.id, t0, tc.data...))
			if st := e.Stats(); st.Decoded != 1 {
				t.Fatalf("0x%X not decoded: %+v", tc.id, st)
			}
			snap := e.Store().Snapshot()
			got := tc.get(&snap)
			if !got.Set {
				t.Fatalf("0x%X channel left unset", tc.id)
			}
			if !got.At.Equal(t0) {
				t.Fatalf("at=%v want %v", got.At, t0)
			}
			if math.Abs(got.Value-tc.want) > 1e-9 {
				t.Fatalf("0x%X value=%v want %v", tc.id, got.Value, tc.want)
			}
		})
	}
}

func TestLegacyLayout_LSM303Route(t *testing.T) {
	e := newTestEngine(t, LegacyProfile())
	accel := []byte{0xE8, 0x03, 0x00, 0x00, 0x00, 0x00}

	mustProcess(t, e, frame(0x182, t0, accel...))
	if st := e.Stats(); st.Unmatched != 1 || st.Decoded != 0 {
		t.Fatalf("0x182 stats=%+v want unmatched", st)
	}

	mustProcess(t, e, frame(0x181, t0, accel...))
	snap := e.Store().Snapshot()
	if !snap.IMU.AccelLSM303.X.Set || snap.VCU.Steering.Set {
		t.Fatalf("0x181 routed wrong: lsm303=%+v steering=%+v", snap.IMU.AccelLSM303.X, snap.VCU.Steering)
	}
}
