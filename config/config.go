// config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Profile       string            `yaml:"profile"`
	Calibration   CalibrationConfig `yaml:"calibration"`
	Buses         []BusConfig       `yaml:"buses"`
	Replay        ReplayConfig      `yaml:"replay"`
	Trip          TripConfig        `yaml:"trip"`
	Publish       PublishConfig     `yaml:"publish"`
	Dashboard     DashboardConfig   `yaml:"dashboard"`
	Log           LogConfig         `yaml:"log"`
	PollTimeoutMs int               `yaml:"poll_timeout_ms"`
}

// ---- CALIBRATION ----

// CalibrationConfig overrides the profile's torque calibration. Zero values and a nil
// mirrored list keep the profile default.
type CalibrationConfig struct {
	FeedbackTorqueScale float64 `yaml:"feedback_torque_scale"`
	CommandTorqueScale  float64 `yaml:"command_torque_scale"`
	MirroredUnits       *[]int  `yaml:"mirrored_units"`
}

// ---- SOURCES ----

type BusConfig struct {
	Name      string `yaml:"name"`
	Interface string `yaml:"interface"`
}

// ReplayConfig replaces the live buses with a recorded capture when File is set.
type ReplayConfig struct {
	File  string  `yaml:"file"`
	Speed float64 `yaml:"speed"`
}

// ---- TRIP ----

type TripConfig struct {
	DBPath         string  `yaml:"db_path"`
	KmFactor       float64 `yaml:"km_factor"`
	SaveIntervalMs int     `yaml:"save_interval_ms"`
}

// ---- OUTPUTS ----

type PublishConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Bus        string `yaml:"bus"`
	TripBus    string `yaml:"trip_bus"`
	IntervalMs int    `yaml:"interval_ms"`
}

type DashboardConfig struct {
	Enabled   bool `yaml:"enabled"`
	RefreshMs int  `yaml:"refresh_ms"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Stdout bool   `yaml:"stdout"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Profile: "v6",
		Buses: []BusConfig{
			{Name: "can0", Interface: "can0"},
			{Name: "can1", Interface: "can1"},
		},
		Replay: ReplayConfig{Speed: 1.0},
		Trip: TripConfig{
			DBPath:         "trip.db",
			KmFactor:       0.00709,
			SaveIntervalMs: 10000,
		},
		Publish: PublishConfig{
			Bus:        "can0",
			TripBus:    "can1",
			IntervalMs: 1000,
		},
		Dashboard:     DashboardConfig{Enabled: true, RefreshMs: 200},
		Log:           LogConfig{Level: "info", File: "live_decode.log"},
		PollTimeoutMs: 50,
	}
}

// Load reads a YAML file over the defaults, then validates and normalizes it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	Normalize(&cfg)
	return &cfg, nil
}

func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMs) * time.Millisecond
}

func (c *Config) SaveInterval() time.Duration {
	return time.Duration(c.Trip.SaveIntervalMs) * time.Millisecond
}

func (c *Config) PublishInterval() time.Duration {
	return time.Duration(c.Publish.IntervalMs) * time.Millisecond
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Dashboard.RefreshMs) * time.Millisecond
}
