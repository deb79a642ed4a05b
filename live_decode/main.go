package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ev-telemetry/config"
	"ev-telemetry/utils"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "Path to YAML config (defaults when empty)")
		replay    = flag.String("replay", "", "Replay a CSV capture instead of the live buses")
		speed     = flag.Float64("speed", 0, "Replay speed multiplier (0 keeps the config value)")
		profile   = flag.String("profile", "", "v6|legacy (overrides the config)")
		logLevel  = flag.String("log", "", "trace|debug|info|warn|error|critical")
		noDash    = flag.Bool("no-dashboard", false, "Disable the terminal dashboard")
		logStdout = flag.Bool("stdout", false, "Also log to stdout")
	)
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *replay != "" {
		cfg.Replay.File = *replay
	}
	if *speed > 0 {
		cfg.Replay.Speed = *speed
	}
	if *profile != "" {
		cfg.Profile = *profile
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *noDash {
		cfg.Dashboard.Enabled = false
	}
	if *logStdout {
		cfg.Log.Stdout = true
	}
	if err := config.Validate(cfg); err != nil {
		_, _ = os.Stderr.WriteString("ERROR: " + err.Error() + "\n")
		os.Exit(1)
	}
	config.Normalize(cfg)

	log, err := utils.NewFileLogger(cfg.Log.File, utils.ParseLevel(cfg.Log.Level), cfg.Log.Stdout)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open " + cfg.Log.File + ": " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := NewRunner(ctx, cfg, log)
	if err != nil {
		log.Critical("Startup failed: %v", err)
		os.Exit(1)
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}
