package main

import (
	"strings"
	"testing"
	"time"

	"ev-telemetry/decoder"
	"ev-telemetry/signals"
)

func TestFmtFloat(t *testing.T) {
	var r signals.Float
	if got := fmtFloat(r, 2, "V"); got != unset {
		t.Fatalf("unset=%q", got)
	}
	r.Put(3.14159, time.Now())
	if got := fmtFloat(r, 2, "V"); got != "3.14 V" {
		t.Fatalf("got %q", got)
	}
	if got := fmtFloat(r, 0, ""); got != "3" {
		t.Fatalf("got %q", got)
	}
}

func TestFmtFlag(t *testing.T) {
	var r signals.Flag
	if got := fmtFlag(r, "ON", "OFF"); got != unset {
		t.Fatalf("unset=%q", got)
	}
	r.Put(false, time.Now())
	if got := fmtFlag(r, "ON", "OFF"); got != "OFF" {
		t.Fatalf("got %q", got)
	}
}

func TestCellRange(t *testing.T) {
	cells := make([]signals.Float, 5)
	if got := cellRange(cells, 2, "V"); got != unset {
		t.Fatalf("empty=%q", got)
	}
	now := time.Now()
	cells[1].Put(3.9, now)
	cells[3].Put(4.1, now)
	cells[4].Put(3.7, now)
	if got := cellRange(cells, 2, "V"); got != "3.70..4.10 V (3/5)" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderSnapshot(t *testing.T) {
	var v signals.Vehicle
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	v.GPS.Lat.Put(45.4642035, now)
	v.Inverter(2).Torque.Put(-12.5, now)

	out := renderSnapshot(&v, decoder.Stats{Frames: 42, Decoded: 40}, now)
	for _, want := range []string{"Accumulator", "Inverter", "45.4642035", "-12.5 Nm", "frames=42 decoded=40", "12:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
	for _, name := range signals.InverterNames {
		if !strings.Contains(out, name) {
			t.Errorf("render missing inverter %s", name)
		}
	}
}
