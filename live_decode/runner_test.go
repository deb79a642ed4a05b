package main

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ev-telemetry/config"
	"ev-telemetry/tripstore"
	"ev-telemetry/utils"
)

// Both rear wheels at 1000 rpm for one hour.
const hourAt1000rpm = `Time Stamp,ID,Extended,Dir,Bus,LEN,D1,D2,D3,D4,D5,D6,D7,D8
0,193,false,Rx,0,6,00,00,00,00,E8,03,,
0,194,false,Rx,0,6,00,00,00,00,E8,03,,
3600000000,193,false,Rx,0,6,00,00,00,00,E8,03,,
3600000000,194,false,Rx,0,6,00,00,00,00,E8,03,,
3600000000,999,false,Rx,0,2,01,02,,,,,,
`

func replayConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	capture := filepath.Join(dir, "capture.csv")
	if err := os.WriteFile(capture, []byte(hourAt1000rpm), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Replay.File = capture
	cfg.Replay.Speed = 0
	cfg.Dashboard.Enabled = false
	cfg.Trip.DBPath = filepath.Join(dir, "trip.db")
	if err := config.Validate(&cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	return &cfg
}

func TestRunner_ReplayPersistsTrip(t *testing.T) {
	cfg := replayConfig(t)

	seed, err := tripstore.Open(cfg.Trip.DBPath)
	if err != nil {
		t.Fatalf("Open err=%v", err)
	}
	if err := seed.Save(2.0, time.Now()); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	_ = seed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, err := NewRunner(ctx, cfg, utils.NewNopLogger())
	if err != nil {
		t.Fatalf("NewRunner err=%v", err)
	}
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err=%v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("replay did not end the run")
	}

	st := r.engine.Stats()
	if st.Frames != 5 || st.Decoded != 4 || st.Unmatched != 1 {
		t.Fatalf("stats=%+v", st)
	}
	if got := r.engine.TripKm(); math.Abs(got-9.09) > 1e-6 {
		t.Fatalf("trip=%v want 9.09", got)
	}
	r.Close()

	s, err := tripstore.Open(cfg.Trip.DBPath)
	if err != nil {
		t.Fatalf("reopen err=%v", err)
	}
	defer s.Close()
	km, err := s.Load()
	if err != nil || math.Abs(km-9.09) > 1e-6 {
		t.Fatalf("persisted=%v err=%v want 9.09", km, err)
	}
}

func TestProfileFor_Overrides(t *testing.T) {
	cfg := config.Default()
	cfg.Profile = "legacy"
	cfg.Calibration.CommandTorqueScale = 30
	none := []int{}
	cfg.Calibration.MirroredUnits = &none

	p, err := profileFor(&cfg)
	if err != nil {
		t.Fatalf("profileFor err=%v", err)
	}
	if p.Name() != "legacy" || p.FeedbackTorqueScale != 25 || p.CommandTorqueScale != 30 {
		t.Fatalf("profile=%+v", p)
	}
	if len(p.MirroredUnits) != 0 {
		t.Fatalf("mirrored=%v want none", p.MirroredUnits)
	}

	cfg.Profile = "v7"
	if _, err := profileFor(&cfg); err == nil {
		t.Fatal("unknown profile accepted")
	}
}

func TestRunner_MissingReplay(t *testing.T) {
	cfg := replayConfig(t)
	cfg.Replay.File = filepath.Join(t.TempDir(), "absent.csv")
	if _, err := NewRunner(context.Background(), cfg, utils.NewNopLogger()); err == nil {
		t.Fatal("missing capture accepted")
	}
}
