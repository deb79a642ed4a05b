package signals

import (
	"fmt"
	"time"
)

// Sample is one channel flattened to a number. Flags read as 0/1 and instants as Unix seconds.
type Sample struct {
	Name  string
	Unit  string
	Value float64
	At    time.Time
	Set   bool
}

// Samples lists every channel in a fixed order.
func (v *Vehicle) Samples() []Sample {
	var out []Sample
	add := func(name, unit string, r Float) {
		out = append(out, Sample{Name: name, Unit: unit, Value: r.Value, At: r.At, Set: r.Set})
	}
	flag := func(name string, r Flag) {
		val := 0.0
		if r.Value {
			val = 1
		}
		out = append(out, Sample{Name: name, Value: val, At: r.At, Set: r.Set})
	}
	instant := func(name string, r Instant) {
		val := 0.0
		if r.Set {
			val = float64(r.Value.UnixNano()) / 1e9
		}
		out = append(out, Sample{Name: name, Unit: "s", Value: val, At: r.At, Set: r.Set})
	}
	vec := func(prefix, unit string, v Vec3) {
		add(prefix+".x", unit, v.X)
		add(prefix+".y", unit, v.Y)
		add(prefix+".z", unit, v.Z)
	}
	quat := func(prefix string, q Quaternion) {
		add(prefix+".w", "", q.W)
		add(prefix+".x", "", q.X)
		add(prefix+".y", "", q.Y)
		add(prefix+".z", "", q.Z)
	}

	instant("clock.time", v.Clock.Time)

	add("vcu.steering", "", v.VCU.Steering)
	add("vcu.accel", "%", v.VCU.Accel)
	add("vcu.apps1", "%", v.VCU.APPS1)
	add("vcu.apps2", "%", v.VCU.APPS2)
	add("vcu.brake", "%", v.VCU.Brake)
	add("vcu.bse1", "%", v.VCU.BSE1)
	add("vcu.bse2", "%", v.VCU.BSE2)
	add("vcu.suspension_front", "m", v.VCU.SuspensionFront)
	add("vcu.suspension_rear", "m", v.VCU.SuspensionRear)
	flag("vcu.running", v.VCU.Running)

	add("gps.lat", "deg", v.GPS.Lat)
	add("gps.lon", "deg", v.GPS.Lon)
	add("gps.altitude", "m", v.GPS.Altitude)
	add("gps.status", "", v.GPS.Status)
	for i, c := range v.GPS.Covariance {
		add(fmt.Sprintf("gps.covariance[%d]", i), "m2", c)
	}
	ct := v.GPS.CovarianceType
	out = append(out, Sample{Name: "gps.covariance_type", Value: float64(ct.Value), At: ct.At, Set: ct.Set})

	vec("velocity.linear", "m/s", v.Velocity.Linear)
	vec("velocity.angular", "rad/s", v.Velocity.Angular)
	add("velocity.magnitude", "m/s", v.Velocity.Magnitude)
	add("velocity.speed_kmh", "km/h", v.Velocity.SpeedKmh)

	add("trip.reported_km", "km", v.Trip.ReportedKm)
	add("trip.integrated_km", "km", v.Trip.IntegratedKm)

	a := &v.Accumulator
	flag("accumulator.heartbeat", a.Heartbeat)
	add("accumulator.status", "", a.Status)
	add("accumulator.temperature", "degC", a.Temperature)
	add("accumulator.voltage", "V", a.Voltage)
	add("accumulator.soc", "%", a.SOC)
	add("accumulator.current", "A", a.Current)
	add("accumulator.capacity", "Ah", a.Capacity)
	for i, c := range a.CellVoltages {
		add(fmt.Sprintf("accumulator.cell_voltage[%d]", i), "V", c)
	}
	for i, c := range a.CellTemperatures {
		add(fmt.Sprintf("accumulator.cell_temperature[%d]", i), "degC", c)
	}

	for i := range v.Inverters {
		inv := &v.Inverters[i]
		p := fmt.Sprintf("inverter[%d].", i+1)
		add(p+"status_word0", "", inv.StatusWord0)
		add(p+"status_word1", "", inv.StatusWord1)
		add(p+"torque", "Nm", inv.Torque)
		add(p+"speed", "rpm", inv.Speed)
		add(p+"dc_voltage", "V", inv.DCVoltage)
		add(p+"dc_current", "A", inv.DCCurrent)
		add(p+"mos_temp", "degC", inv.MOSTemp)
		add(p+"mcu_temp", "degC", inv.MCUTemp)
		add(p+"motor_temp", "degC", inv.MotorTemp)
		flag(p+"heartbeat", inv.Heartbeat)
		add(p+"control_word", "", inv.ControlWord)
		add(p+"target_torque", "Nm", inv.TargetTorque)
	}

	vec("imu.accel_km6", "m/s2", v.IMU.AccelKM6)
	vec("imu.accel_km308", "m/s2", v.IMU.AccelKM308)
	vec("imu.accel_lsm6", "m/s2", v.IMU.AccelLSM6)
	vec("imu.accel_lsm303", "m/s2", v.IMU.AccelLSM303)
	vec("imu.gyro", "deg/s", v.IMU.Gyro)
	vec("imu.gyro_rad", "rad/s", v.IMU.GyroRad)
	vec("imu.euler", "deg", v.IMU.Euler)
	vec("imu.mag", "uT", v.IMU.Mag)

	vec("imu2.accel", "g", v.IMU2.Accel)
	vec("imu2.gyro", "deg/s", v.IMU2.Gyro)
	quat("imu2.quaternion", v.IMU2.Quaternion)

	x := &v.Xsens
	quat("xsens.quaternion", x.Quaternion)
	vec("xsens.delta_v", "m/s", x.DeltaV)
	add("xsens.delta_v_exponent", "", x.DeltaVExponent)
	vec("xsens.rate_of_turn", "rad/s", x.RateOfTurn)
	quat("xsens.delta_q", x.DeltaQ)
	vec("xsens.acceleration", "m/s2", x.Acceleration)
	vec("xsens.magnetic_field", "a.u.", x.MagneticField)
	add("xsens.lat", "deg", x.Lat)
	add("xsens.lon", "deg", x.Lon)
	add("xsens.altitude", "m", x.Altitude)
	vec("xsens.velocity", "m/s", x.Velocity)

	flag("logging.recording", v.Logging.Recording)
	instant("logging.started_at", v.Logging.StartedAt)
	add("logging.command", "", v.Logging.Command)

	return out
}

// Channel names a channel and its unit.
type Channel struct {
	Name string
	Unit string
}

// Catalogue lists every channel the store exposes.
func Catalogue() []Channel {
	var v Vehicle
	samples := v.Samples()
	out := make([]Channel, len(samples))
	for i, s := range samples {
		out[i] = Channel{Name: s.Name, Unit: s.Unit}
	}
	return out
}

// Lookup finds a sample by name.
func (v *Vehicle) Lookup(name string) (Sample, bool) {
	for _, s := range v.Samples() {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}
