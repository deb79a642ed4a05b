package decoder

import (
	"math"
	"time"

	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

const (
	LoggingCommandStart = 0x01
	LoggingCommandStop  = 0x02
)

// RecordingStatusFrame encodes the 0x421 logger status: 0x01 and the u32 Unix start
// time while recording, eight zero bytes otherwise.
func RecordingStatusFrame(recording bool, started time.Time) utils.Frame {
	data := make([]byte, 8)
	if recording {
		data[0] = loggingRecording
		_ = utils.PutRaw(data, 1, utils.U32, utils.LittleEndian, started.Unix())
	}
	return utils.Frame{ID: IDLoggingStatus, Data: data, Timestamp: started}
}

// RecordingStatusFromVehicle encodes the logger status held in the store.
func RecordingStatusFromVehicle(v *signals.Vehicle) utils.Frame {
	rec := v.Logging.Recording.Set && v.Logging.Recording.Value
	return RecordingStatusFrame(rec, v.Logging.StartedAt.Value)
}

// TripDistanceFrame encodes km as whole millimetres, u32 little-endian in an 8-byte payload.
func TripDistanceFrame(km float64) utils.Frame {
	data := make([]byte, 8)
	mm := int64(math.Round(km * mmPerKm))
	_ = utils.PutRaw(data, 0, utils.U32, utils.LittleEndian, mm)
	return utils.Frame{ID: IDTripDistance, Data: data}
}

// LoggingCommandFrame encodes a 0x420 start or stop request.
func LoggingCommandFrame(cmd byte) utils.Frame {
	return utils.Frame{ID: IDLoggingCommand, Data: []byte{cmd}}
}
