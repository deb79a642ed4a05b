package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"ev-telemetry/decoder"
	"ev-telemetry/signals"
)

const unset = "--"

// Each channel kind has one formatter. Unset channels render as "--".

func fmtFloat(r signals.Float, prec int, unit string) string {
	if !r.Set {
		return unset
	}
	s := fmt.Sprintf("%.*f", prec, r.Value)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func fmtFlag(r signals.Flag, on, off string) string {
	if !r.Set {
		return unset
	}
	if r.Value {
		return on
	}
	return off
}

func fmtInstant(r signals.Instant, layout string) string {
	if !r.Set || r.Value.IsZero() {
		return unset
	}
	return r.Value.Format(layout)
}

func fmtVec(v signals.Vec3, prec int) string {
	return fmt.Sprintf("%s / %s / %s", fmtFloat(v.X, prec, ""), fmtFloat(v.Y, prec, ""), fmtFloat(v.Z, prec, ""))
}

func fmtQuat(q signals.Quaternion) string {
	return fmt.Sprintf("%s %s %s %s", fmtFloat(q.W, 4, ""), fmtFloat(q.X, 4, ""), fmtFloat(q.Y, 4, ""), fmtFloat(q.Z, 4, ""))
}

func fmtCovType(r signals.Reading[signals.CovarianceType]) string {
	if !r.Set {
		return unset
	}
	return r.Value.String()
}

// cellRange summarises a cell array as min..max over the slots reported so far.
func cellRange(cells []signals.Float, prec int, unit string) string {
	lo, hi, n := 0.0, 0.0, 0
	for _, c := range cells {
		if !c.Set {
			continue
		}
		if n == 0 || c.Value < lo {
			lo = c.Value
		}
		if n == 0 || c.Value > hi {
			hi = c.Value
		}
		n++
	}
	if n == 0 {
		return unset
	}
	return fmt.Sprintf("%.*f..%.*f %s (%d/%d)", prec, lo, prec, hi, unit, n, len(cells))
}

func alive(r signals.Flag) string {
	switch {
	case !r.Set:
		return pterm.FgGray.Sprint(unset)
	case r.Value:
		return pterm.FgGreen.Sprint("OK")
	default:
		return pterm.FgRed.Sprint("LOST")
	}
}

func renderSnapshot(v *signals.Vehicle, st decoder.Stats, now time.Time) string {
	var b strings.Builder

	vehicle := pterm.TableData{
		{"Channel", "Value"},
		{"Clock", fmtInstant(v.Clock.Time, "2006-01-02 15:04:05.000")},
		{"VCU", fmtFlag(v.VCU.Running, "RUNNING", "STOPPED")},
		{"Steering", fmtFloat(v.VCU.Steering, 0, "")},
		{"Accel / Brake", fmtFloat(v.VCU.Accel, 0, "%") + " / " + fmtFloat(v.VCU.Brake, 0, "%")},
		{"APPS1 / APPS2", fmtFloat(v.VCU.APPS1, 0, "%") + " / " + fmtFloat(v.VCU.APPS2, 0, "%")},
		{"Suspension F / R", fmtFloat(v.VCU.SuspensionFront, 4, "") + " / " + fmtFloat(v.VCU.SuspensionRear, 4, "")},
		{"GPS", fmtFloat(v.GPS.Lat, 7, "") + ", " + fmtFloat(v.GPS.Lon, 7, "")},
		{"Altitude / Status", fmtFloat(v.GPS.Altitude, 0, "m") + " / " + fmtFloat(v.GPS.Status, 0, "")},
		{"Covariance", fmtCovType(v.GPS.CovarianceType)},
		{"Speed", fmtFloat(v.Velocity.SpeedKmh, 1, "km/h")},
		{"Velocity XYZ", fmtVec(v.Velocity.Linear, 3)},
		{"Trip (bus / local)", fmtFloat(v.Trip.ReportedKm, 3, "km") + " / " + fmtFloat(v.Trip.IntegratedKm, 3, "km")},
		{"Logging", fmtFlag(v.Logging.Recording, "RECORDING", "IDLE") + " " + fmtInstant(v.Logging.StartedAt, "15:04:05")},
	}

	acc := &v.Accumulator
	accumulator := pterm.TableData{
		{"Accumulator", "Value"},
		{"Heartbeat", alive(acc.Heartbeat)},
		{"Voltage", fmtFloat(acc.Voltage, 1, "V")},
		{"Current", fmtFloat(acc.Current, 2, "A")},
		{"SOC", fmtFloat(acc.SOC, 0, "%")},
		{"Capacity", fmtFloat(acc.Capacity, 2, "Ah")},
		{"Temperature", fmtFloat(acc.Temperature, 1, "C")},
		{"Cells", cellRange(acc.CellVoltages[:], 2, "V")},
		{"Cell temps", cellRange(acc.CellTemperatures[:], 0, "C")},
	}

	inverters := pterm.TableData{{"Inverter", "Alive", "Torque", "Target", "Speed", "DC V", "DC A", "Motor", "MCU"}}
	for i := range v.Inverters {
		inv := &v.Inverters[i]
		inverters = append(inverters, []string{
			signals.InverterNames[i],
			alive(inv.Heartbeat),
			fmtFloat(inv.Torque, 1, "Nm"),
			fmtFloat(inv.TargetTorque, 1, "Nm"),
			fmtFloat(inv.Speed, 0, "rpm"),
			fmtFloat(inv.DCVoltage, 1, ""),
			fmtFloat(inv.DCCurrent, 1, ""),
			fmtFloat(inv.MotorTemp, 1, "C"),
			fmtFloat(inv.MCUTemp, 1, "C"),
		})
	}

	imu := pterm.TableData{
		{"IMU", "X / Y / Z"},
		{"Accel KM6", fmtVec(v.IMU.AccelKM6, 3)},
		{"Gyro", fmtVec(v.IMU.Gyro, 1)},
		{"Euler", fmtVec(v.IMU.Euler, 2)},
		{"IMU2 accel", fmtVec(v.IMU2.Accel, 3)},
		{"IMU2 quat", fmtQuat(v.IMU2.Quaternion)},
		{"Xsens accel", fmtVec(v.Xsens.Acceleration, 3)},
		{"Xsens rate", fmtVec(v.Xsens.RateOfTurn, 3)},
		{"Xsens quat", fmtQuat(v.Xsens.Quaternion)},
		{"Xsens pos", fmtFloat(v.Xsens.Lat, 6, "") + ", " + fmtFloat(v.Xsens.Lon, 6, "")},
	}

	for _, td := range []pterm.TableData{vehicle, accumulator, inverters, imu} {
		s, err := pterm.DefaultTable.WithHasHeader().WithData(td).Srender()
		if err != nil {
			s = err.Error()
		}
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("frames=%d decoded=%d unmatched=%d short=%d shard_rejects=%d errors=%d  %s\n",
		st.Frames, st.Decoded, st.Unmatched, st.Truncated, st.ShardRejects, st.DecodeErrors, now.Format("15:04:05")))
	return b.String()
}

// Dashboard redraws the snapshot in place.
type Dashboard struct {
	area *pterm.AreaPrinter
}

func NewDashboard() (*Dashboard, error) {
	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return nil, fmt.Errorf("start dashboard: %w", err)
	}
	return &Dashboard{area: area}, nil
}

func (d *Dashboard) Render(v *signals.Vehicle, st decoder.Stats, now time.Time) {
	d.area.Update(renderSnapshot(v, st, now))
}

func (d *Dashboard) Stop() {
	if d.area != nil {
		_ = d.area.Stop()
	}
}
