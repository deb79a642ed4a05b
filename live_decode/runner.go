package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ev-telemetry/config"
	"ev-telemetry/decoder"
	"ev-telemetry/signals"
	"ev-telemetry/tripstore"
	"ev-telemetry/utils"
)

const superviseTick = 100 * time.Millisecond

type Runner struct {
	cfg        *config.Config
	log        *utils.Logger
	engine     *decoder.Engine
	sources    []utils.FrameSource
	writers    []*utils.SocketCANWriter
	publishers []*decoder.Publisher
	trips      *tripstore.Store
	dash       *Dashboard
	recorder   decoder.Recorder
	vcuRunning bool
}

// profileFor applies the configured calibration overrides to the named profile.
func profileFor(cfg *config.Config) (decoder.Profile, error) {
	p, err := decoder.ProfileByName(cfg.Profile)
	if err != nil {
		return decoder.Profile{}, err
	}
	c := cfg.Calibration
	if c.FeedbackTorqueScale > 0 {
		p.FeedbackTorqueScale = c.FeedbackTorqueScale
	}
	if c.CommandTorqueScale > 0 {
		p.CommandTorqueScale = c.CommandTorqueScale
	}
	if c.MirroredUnits != nil {
		p.MirroredUnits = append([]int(nil), (*c.MirroredUnits)...)
	}
	return p, nil
}

func NewRunner(ctx context.Context, cfg *config.Config, log *utils.Logger) (*Runner, error) {
	profile, err := profileFor(cfg)
	if err != nil {
		return nil, err
	}
	table, err := decoder.NewProfileTable(profile)
	if err != nil {
		return nil, fmt.Errorf("message table: %w", err)
	}

	r := &Runner{
		cfg:    cfg,
		log:    log,
		engine: decoder.NewEngine(table, signals.NewStore(cfg.Trip.KmFactor), log.With("decoder")),
	}
	log.Info("Profile=%s feedback_torque=x%.0f command_torque=x%.0f mirrored=%v ids=%d",
		profile.Name(), profile.FeedbackTorqueScale, profile.CommandTorqueScale, profile.MirroredUnits, len(table.IDs()))

	if cfg.Trip.DBPath != "" {
		if err := r.openTrips(cfg.Trip.DBPath); err != nil {
			log.Warn("Trip persistence disabled: %v", err)
		}
	}

	if err := r.openSources(ctx); err != nil {
		r.Close()
		return nil, err
	}
	if cfg.Publish.Enabled {
		r.openPublishers(ctx)
	}
	if cfg.Dashboard.Enabled {
		dash, err := NewDashboard()
		if err != nil {
			log.Warn("Dashboard disabled: %v", err)
		} else {
			r.dash = dash
		}
	}
	return r, nil
}

func (r *Runner) openTrips(path string) error {
	s, err := tripstore.Open(path)
	if err != nil {
		return err
	}
	r.trips = s
	km, err := s.Load()
	switch {
	case errors.Is(err, tripstore.ErrNoTotal):
		r.log.Info("No saved trip distance, starting at 0 km")
	case err != nil:
		r.log.Warn("Trip distance not restored: %v", err)
	default:
		r.engine.RestoreTrip(km)
		r.log.Info("Loaded cumulative trip distance: %.3f km", km)
	}
	return nil
}

// openSources dials every bus. A bus that cannot be opened is skipped.
func (r *Runner) openSources(ctx context.Context) error {
	if r.cfg.Replay.File != "" {
		lg, err := utils.LoadReplayFile(r.cfg.Replay.File)
		if err != nil {
			return fmt.Errorf("load replay: %w", err)
		}
		r.log.Info("Replay %s: frames=%d skipped_rows=%d speed=%.2f",
			r.cfg.Replay.File, len(lg.Frames), lg.Skipped, r.cfg.Replay.Speed)
		r.sources = append(r.sources, utils.NewReplayReader("replay", lg, r.cfg.Replay.Speed))
		return nil
	}

	for _, b := range r.cfg.Buses {
		src, err := utils.NewSocketCANReader(ctx, b.Name, b.Interface, r.cfg.PollTimeout())
		if err != nil {
			r.log.Warn("Bus %s unavailable, skipping: %v", b.Name, err)
			continue
		}
		r.log.Info("Bus %s listening on %s", b.Name, b.Interface)
		r.sources = append(r.sources, src)
	}
	if len(r.sources) == 0 {
		r.log.Warn("No frame sources open; the store will stay empty")
	}
	return nil
}

func (r *Runner) openPublishers(ctx context.Context) {
	store := r.engine.Store()
	interval := r.cfg.PublishInterval()

	byBus := map[string][]decoder.Producer{}
	var order []string
	add := func(bus string, p decoder.Producer) {
		if bus == "" {
			return
		}
		if _, ok := byBus[bus]; !ok {
			order = append(order, bus)
		}
		byBus[bus] = append(byBus[bus], p)
	}
	add(r.cfg.Publish.Bus, decoder.RecordingProducer)
	add(r.cfg.Publish.TripBus, decoder.TripProducer)

	for _, bus := range order {
		iface := r.ifaceFor(bus)
		w, err := utils.NewSocketCANWriter(ctx, bus, iface)
		if err != nil {
			r.log.Warn("Publisher on %s disabled: %v", bus, err)
			continue
		}
		p, err := decoder.NewPublisher(bus, store, w, interval, r.log.With("publisher"), byBus[bus]...)
		if err != nil {
			_ = w.Close()
			r.log.Warn("Publisher on %s disabled: %v", bus, err)
			continue
		}
		r.writers = append(r.writers, w)
		r.publishers = append(r.publishers, p)
	}
}

func (r *Runner) ifaceFor(bus string) string {
	for _, b := range r.cfg.Buses {
		if b.Name == bus {
			return b.Interface
		}
	}
	return bus
}

func (r *Runner) Close() {
	for _, s := range r.sources {
		_ = s.Close()
	}
	for _, w := range r.writers {
		r.log.Debug("TX bus=%s frames_sent=%d", w.Bus(), w.Sent())
		_ = w.Close()
	}
	if r.dash != nil {
		r.dash.Stop()
	}
	if r.trips != nil {
		_ = r.trips.Close()
	}
}

func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting RX: sources=%d publishers=%d dashboard=%v", len(r.sources), len(r.publishers), r.dash != nil)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	var rx sync.WaitGroup
	for _, src := range r.sources {
		src := src
		rx.Add(1)
		g.Go(func() error {
			defer rx.Done()
			return r.ingest(gctx, src)
		})
	}
	if r.cfg.Replay.File != "" {
		// A finished replay ends the run.
		go func() {
			rx.Wait()
			cancel()
		}()
	}
	for _, p := range r.publishers {
		p := p
		g.Go(func() error { return p.Run(gctx) })
	}
	g.Go(func() error { return r.supervise(gctx) })

	err := g.Wait()
	r.saveTrip("shutdown")
	st := r.engine.Stats()
	r.log.Info("Completed RX. frames=%d decoded=%d unmatched=%d short=%d shard_rejects=%d errors=%d",
		st.Frames, st.Decoded, st.Unmatched, st.Truncated, st.ShardRejects, st.DecodeErrors)
	return err
}

// ingest feeds one source into the engine until the source ends or ctx is cancelled.
// Decode errors are logged by the engine and never stop ingestion.
func (r *Runner) ingest(ctx context.Context, src utils.FrameSource) error {
	r.log.Debug("RX loop %s started", src.Name())
	defer r.log.Debug("RX loop %s stopped", src.Name())

	for {
		f, err := src.ReadFrame(ctx)
		switch {
		case err == nil:
			_ = r.engine.Process(f)
		case errors.Is(err, utils.ErrNoFrame):
			continue
		case errors.Is(err, io.EOF):
			r.log.Info("Source %s exhausted", src.Name())
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			r.log.Error("RX %s: %v", src.Name(), err)
			return nil
		}
	}
}

// supervise owns everything driven by wall-clock ticks rather than frames.
func (r *Runner) supervise(ctx context.Context) error {
	ticker := time.NewTicker(superviseTick)
	defer ticker.Stop()

	lastSave := time.Now()
	lastDraw := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			snap := r.engine.Store().Snapshot()

			if r.cfg.Publish.Enabled {
				r.stepRecorder(&snap, now)
			} else if r.vcuStopped(&snap) {
				r.saveTrip("vcu stopped")
			}

			if r.trips != nil && now.Sub(lastSave) >= r.cfg.SaveInterval() {
				r.saveTrip("interval")
				lastSave = now
			}
			if r.dash != nil && now.Sub(lastDraw) >= r.cfg.RefreshInterval() {
				r.dash.Render(&snap, r.engine.Stats(), now)
				lastDraw = now
			}
		}
	}
}

// vcuStopped detects the run flag falling when no recorder is tracking it.
func (r *Runner) vcuStopped(v *signals.Vehicle) bool {
	running := v.VCU.Running.Set && v.VCU.Running.Value
	fell := r.vcuRunning && !running
	r.vcuRunning = running
	return fell
}

func (r *Runner) stepRecorder(v *signals.Vehicle, now time.Time) {
	ev := r.recorder.Step(v, now)
	switch ev {
	case decoder.RecorderIdle:
		return
	case decoder.RecorderVCUStopped:
		r.saveTrip("vcu stopped")
	}
	on, started := r.recorder.Recording()
	r.engine.SetRecording(on, started)
	r.log.Info("Recording %s at %s", ev, now.Format(time.RFC3339))
}

func (r *Runner) saveTrip(reason string) {
	if r.trips == nil {
		return
	}
	km := r.engine.TripKm()
	if err := r.trips.Save(km, time.Now()); err != nil {
		r.log.Error("Trip save (%s) failed: %v", reason, err)
		return
	}
	r.log.Debug("Trip distance saved (%s): %.3f km", reason, km)
}
