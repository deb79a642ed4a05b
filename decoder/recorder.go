package decoder

import (
	"time"

	"ev-telemetry/signals"
)

// RecorderEvent is what a Recorder step changed.
type RecorderEvent int

const (
	RecorderIdle RecorderEvent = iota
	RecorderStarted
	RecorderStopped
	// RecorderVCUStopped is a stop caused by the VCU run flag falling. Trip state should
	// be persisted on this event.
	RecorderVCUStopped
)

func (e RecorderEvent) String() string {
	switch e {
	case RecorderStarted:
		return "started"
	case RecorderStopped:
		return "stopped"
	case RecorderVCUStopped:
		return "vcu_stopped"
	default:
		return "idle"
	}
}

// Recorder tracks whether the car is being logged. While the VCU reports running the
// recorder is forced on and 0x420 commands are ignored. Otherwise the latest command wins.
type Recorder struct {
	recording bool
	started   time.Time
	vcuLast   bool
	lastCmd   time.Time
}

func (r *Recorder) Recording() (bool, time.Time) { return r.recording, r.started }

// Step evaluates the latest snapshot.
func (r *Recorder) Step(v *signals.Vehicle, now time.Time) RecorderEvent {
	vcu := v.VCU.Running.Set && v.VCU.Running.Value
	defer func() { r.vcuLast = vcu }()

	cmd := v.Logging.Command
	fresh := cmd.Set && cmd.At.After(r.lastCmd)
	if fresh {
		r.lastCmd = cmd.At
	}

	switch {
	case vcu && !r.vcuLast:
		r.recording, r.started = true, now
		return RecorderStarted
	case !vcu && r.vcuLast:
		r.recording, r.started = false, time.Time{}
		return RecorderVCUStopped
	case vcu:
		if !r.recording {
			r.recording, r.started = true, now
			return RecorderStarted
		}
		return RecorderIdle
	}

	if !fresh {
		return RecorderIdle
	}
	switch byte(cmd.Value) {
	case LoggingCommandStart:
		if !r.recording {
			r.recording, r.started = true, now
			return RecorderStarted
		}
	case LoggingCommandStop:
		if r.recording {
			r.recording, r.started = false, time.Time{}
			return RecorderStopped
		}
	}
	return RecorderIdle
}
