package signals

const (
	CellVoltageSlots      = 105
	CellTemperatureSlots  = 224
	CellVoltageMaxIndex   = 98
	CellTemperatureMaxIdx = 217
	ShardStride           = 7
	InverterCount         = 4
	CovarianceSlots       = 9
)

// InverterNames are the wheel positions of inverter units 1..4.
var InverterNames = [InverterCount]string{"FL", "FR", "RL", "RR"}

// Vehicle is the full set of decoded channels.
type Vehicle struct {
	Clock       Clock                   `json:"clock"`
	VCU         VCU                     `json:"vcu"`
	GPS         GPS                     `json:"gps"`
	Velocity    Velocity                `json:"velocity"`
	Trip        Trip                    `json:"trip"`
	Accumulator Accumulator             `json:"accumulator"`
	Inverters   [InverterCount]Inverter `json:"inverters"`
	IMU         IMU                     `json:"imu"`
	IMU2        IMU2                    `json:"imu2"`
	Xsens       Xsens                   `json:"xsens"`
	Logging     Logging                 `json:"logging"`
}

// Inverter returns unit 1..4, or nil for any other unit.
func (v *Vehicle) Inverter(unit int) *Inverter {
	if unit < 1 || unit > InverterCount {
		return nil
	}
	return &v.Inverters[unit-1]
}

type Clock struct {
	Time Instant `json:"time"`
}

type VCU struct {
	Steering        Float `json:"steering"`
	Accel           Float `json:"accel"`
	APPS1           Float `json:"apps1"`
	APPS2           Float `json:"apps2"`
	Brake           Float `json:"brake"`
	BSE1            Float `json:"bse1"`
	BSE2            Float `json:"bse2"`
	SuspensionFront Float `json:"suspension_front"`
	SuspensionRear  Float `json:"suspension_rear"`
	Running         Flag  `json:"running"`
}

type CovarianceType uint8

const (
	CovarianceUnknown CovarianceType = iota
	CovarianceApproximated
	CovarianceDiagonalKnown
	CovarianceKnown
)

func (c CovarianceType) String() string {
	switch c {
	case CovarianceUnknown:
		return "UNKNOWN"
	case CovarianceApproximated:
		return "APPROXIMATED"
	case CovarianceDiagonalKnown:
		return "DIAGONAL_KNOWN"
	case CovarianceKnown:
		return "KNOWN"
	default:
		return "INVALID"
	}
}

func (c CovarianceType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type GPS struct {
	Lat            Float                   `json:"lat"`
	Lon            Float                   `json:"lon"`
	Altitude       Float                   `json:"altitude"`
	Status         Float                   `json:"status"`
	Covariance     [CovarianceSlots]Float  `json:"covariance"`
	CovarianceType Reading[CovarianceType] `json:"covariance_type"`
}

type Velocity struct {
	Linear    Vec3  `json:"linear"`
	Angular   Vec3  `json:"angular"`
	Magnitude Float `json:"magnitude"`
	SpeedKmh  Float `json:"speed_kmh"`
}

// Trip holds both the distance reported on the bus and the locally integrated odometer.
type Trip struct {
	ReportedKm   Float    `json:"reported_km"`
	IntegratedKm Float    `json:"integrated_km"`
	Odometer     Odometer `json:"-"`
}

type Accumulator struct {
	Heartbeat        Flag                        `json:"heartbeat"`
	Status           Float                       `json:"status"`
	Temperature      Float                       `json:"temperature"`
	Voltage          Float                       `json:"voltage"`
	SOC              Float                       `json:"soc"`
	Current          Float                       `json:"current"`
	Capacity         Float                       `json:"capacity"`
	CellVoltages     [CellVoltageSlots]Float     `json:"cell_voltages"`
	CellTemperatures [CellTemperatureSlots]Float `json:"cell_temperatures"`
}

type Inverter struct {
	StatusWord0  Float `json:"status_word0"`
	StatusWord1  Float `json:"status_word1"`
	Torque       Float `json:"torque"`
	Speed        Float `json:"speed"`
	DCVoltage    Float `json:"dc_voltage"`
	DCCurrent    Float `json:"dc_current"`
	MOSTemp      Float `json:"mos_temp"`
	MCUTemp      Float `json:"mcu_temp"`
	MotorTemp    Float `json:"motor_temp"`
	Heartbeat    Flag  `json:"heartbeat"`
	ControlWord  Float `json:"control_word"`
	TargetTorque Float `json:"target_torque"`
}

// IMU is the on-board IMU. The LSM fields and GyroRad are only written by the legacy layout.
type IMU struct {
	AccelKM6    Vec3 `json:"accel_km6"`
	AccelKM308  Vec3 `json:"accel_km308"`
	AccelLSM6   Vec3 `json:"accel_lsm6"`
	AccelLSM303 Vec3 `json:"accel_lsm303"`
	Gyro        Vec3 `json:"gyro"`
	GyroRad     Vec3 `json:"gyro_rad"`
	Euler       Vec3 `json:"euler"`
	Mag         Vec3 `json:"mag"`
}

type IMU2 struct {
	Accel      Vec3       `json:"accel"`
	Gyro       Vec3       `json:"gyro"`
	Quaternion Quaternion `json:"quaternion"`
}

type Xsens struct {
	Quaternion     Quaternion `json:"quaternion"`
	DeltaV         Vec3       `json:"delta_v"`
	DeltaVExponent Float      `json:"delta_v_exponent"`
	RateOfTurn     Vec3       `json:"rate_of_turn"`
	DeltaQ         Quaternion `json:"delta_q"`
	Acceleration   Vec3       `json:"acceleration"`
	MagneticField  Vec3       `json:"magnetic_field"`
	Lat            Float      `json:"lat"`
	Lon            Float      `json:"lon"`
	Altitude       Float      `json:"altitude"`
	Velocity       Vec3       `json:"velocity"`
}

// Logging mirrors the data logger's state as seen on the bus.
type Logging struct {
	Recording Flag    `json:"recording"`
	StartedAt Instant `json:"started_at"`
	Command   Float   `json:"command"`
}
