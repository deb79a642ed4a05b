package tripstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trip.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open err=%v", err)
	}

	if _, err := s.Load(); !errors.Is(err, ErrNoTotal) {
		t.Fatalf("expected ErrNoTotal, got %v", err)
	}

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, km := range []float64{1.25, 2.5, 3.75} {
		if err := s.Save(km, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Save err=%v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen err=%v", err)
	}
	defer s.Close()

	km, err := s.Load()
	if err != nil || km != 3.75 {
		t.Fatalf("Load=%v err=%v want 3.75", km, err)
	}

	hist, err := s.History(2)
	if err != nil {
		t.Fatalf("History err=%v", err)
	}
	if len(hist) != 2 || hist[0].Km != 3.75 || hist[1].Km != 2.5 {
		t.Fatalf("history=%+v", hist)
	}
	if !hist[0].At.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("history time=%v", hist[0].At)
	}
}
