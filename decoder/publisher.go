package decoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.einride.tech/can"

	"ev-telemetry/signals"
	"ev-telemetry/utils"
)

//go:generate mockgen -source=publisher.go -destination=mocks_test.go -package=decoder

// FrameWriter transmits one frame. utils.SocketCANWriter satisfies it.
type FrameWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
}

// Producer encodes one outbound frame from a snapshot. ok=false skips this cycle.
type Producer func(v *signals.Vehicle) (f utils.Frame, ok bool)

// TripProducer sends the integrated trip distance once the odometer has a value.
func TripProducer(v *signals.Vehicle) (utils.Frame, bool) {
	if !v.Trip.IntegratedKm.Set {
		return utils.Frame{}, false
	}
	return TripDistanceFrame(v.Trip.IntegratedKm.Value), true
}

// RecordingProducer sends the logger status every cycle.
func RecordingProducer(v *signals.Vehicle) (utils.Frame, bool) {
	return RecordingStatusFromVehicle(v), true
}

// Publisher periodically encodes frames from the store and transmits them.
type Publisher struct {
	name      string
	store     *signals.Store
	out       FrameWriter
	interval  time.Duration
	producers []Producer
	log       *utils.Logger
	sent      uint64
}

func NewPublisher(name string, store *signals.Store, out FrameWriter, interval time.Duration, log *utils.Logger, producers ...Producer) (*Publisher, error) {
	if store == nil || out == nil {
		return nil, errors.New("publisher needs a store and a writer")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("publisher %s: invalid interval %v", name, interval)
	}
	if len(producers) == 0 {
		return nil, fmt.Errorf("publisher %s: no producers", name)
	}
	if log == nil {
		log = utils.NewNopLogger()
	}
	return &Publisher{
		name:      name,
		store:     store,
		out:       out,
		interval:  interval,
		producers: producers,
		log:       log,
	}, nil
}

// PublishOnce encodes and sends every producer's frame from one snapshot. A failed
// write does not stop the remaining frames; the errors are joined.
func (p *Publisher) PublishOnce(ctx context.Context) error {
	snap := p.store.Snapshot()
	var errs []error
	for _, prod := range p.producers {
		f, ok := prod(&snap)
		if !ok {
			continue
		}
		cf, err := f.CAN()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.out.WriteFrame(ctx, cf); err != nil {
			errs = append(errs, err)
			continue
		}
		p.sent++
		p.log.Trace("TX %s id=0x%X len=%d data=% X", p.name, cf.ID, cf.Length, cf.Data[:cf.Length])
	}
	return errors.Join(errs...)
}

func (p *Publisher) Sent() uint64 { return p.sent }

func (p *Publisher) Run(ctx context.Context) error {
	p.log.Info("Starting TX publisher=%s interval=%v producers=%d", p.name, p.interval, len(p.producers))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Completed TX publisher=%s frames_sent=%d", p.name, p.sent)
			return ctx.Err()
		case <-ticker.C:
			if err := p.PublishOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.log.Warn("TX %s: %v", p.name, err)
			}
		}
	}
}
