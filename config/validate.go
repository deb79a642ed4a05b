// config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Profile)) {
	case "v6", "legacy":
	default:
		return fmt.Errorf("profile %q: want v6 or legacy", cfg.Profile)
	}

	c := cfg.Calibration
	if c.FeedbackTorqueScale < 0 || c.CommandTorqueScale < 0 {
		return fmt.Errorf("calibration: torque scales must not be negative")
	}
	if c.MirroredUnits != nil {
		for _, u := range *c.MirroredUnits {
			if u < 1 || u > 4 {
				return fmt.Errorf("calibration: mirrored unit %d outside 1..4", u)
			}
		}
	}

	// ------------------------------------------------------------
	// SOURCES
	// ------------------------------------------------------------

	names := make(map[string]bool, len(cfg.Buses))
	for i, b := range cfg.Buses {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("bus %d: name is required", i)
		}
		if strings.TrimSpace(b.Interface) == "" {
			return fmt.Errorf("bus %q: interface is required", b.Name)
		}
		if names[b.Name] {
			return fmt.Errorf("bus %q: duplicate name", b.Name)
		}
		names[b.Name] = true
	}
	if cfg.Replay.File != "" && cfg.Replay.Speed < 0 {
		return fmt.Errorf("replay: speed %v must not be negative", cfg.Replay.Speed)
	}

	// ------------------------------------------------------------
	// TRIP / OUTPUTS
	// ------------------------------------------------------------

	if cfg.Trip.KmFactor <= 0 {
		return fmt.Errorf("trip: km_factor must be positive")
	}
	if cfg.Trip.DBPath != "" && cfg.Trip.SaveIntervalMs <= 0 {
		return fmt.Errorf("trip: save_interval_ms must be positive")
	}
	if cfg.Publish.Enabled {
		if cfg.Publish.IntervalMs <= 0 {
			return fmt.Errorf("publish: interval_ms must be positive")
		}
		for _, b := range []string{cfg.Publish.Bus, cfg.Publish.TripBus} {
			if b != "" && !names[b] {
				return fmt.Errorf("publish: unknown bus %q", b)
			}
		}
	}
	if cfg.Dashboard.Enabled && cfg.Dashboard.RefreshMs <= 0 {
		return fmt.Errorf("dashboard: refresh_ms must be positive")
	}
	if cfg.PollTimeoutMs <= 0 {
		return fmt.Errorf("poll_timeout_ms must be positive")
	}
	return nil
}
