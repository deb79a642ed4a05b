// config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Profile = strings.ToLower(strings.TrimSpace(cfg.Profile))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	for i := range cfg.Buses {
		cfg.Buses[i].Name = strings.TrimSpace(cfg.Buses[i].Name)
		cfg.Buses[i].Interface = strings.TrimSpace(cfg.Buses[i].Interface)
	}
}
