// Package config loads process configuration for the coach: SQLite path,
// relay address, and the daily trigger times. Values come from defaults,
// then an optional YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danwhitfield/war-coach/internal/schedule"
)

// #region config-types

// Config is the full process configuration.
type Config struct {
	DBPath    string         `yaml:"db_path"`
	RelayAddr string         `yaml:"relay_addr"`
	Times     schedule.Times `yaml:"times"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		DBPath:    "war_coach.db",
		RelayAddr: "localhost:50061",
		Times:     schedule.DefaultTimes(),
	}
}

// #endregion config-types

// #region load

// Load builds the configuration. A missing file at path is not an error;
// the defaults stand. Environment variables WARCOACH_DB and RELAY_ADDR
// override whatever the file set.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.DBPath = envOr("WARCOACH_DB", cfg.DBPath)
	cfg.RelayAddr = envOr("RELAY_ADDR", cfg.RelayAddr)

	if err := validateTimes(cfg.Times); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validateTimes rejects trigger points that are not "HH:MM"; the scheduler
// compares them lexicographically against the tick minute.
func validateTimes(t schedule.Times) error {
	points := []string{t.Wake, t.AMDeadline, t.Midday, t.PMAudit, t.PMGrade, t.SundayAudit}
	points = append(points, t.ProteinPings...)
	for _, p := range points {
		if !validMinute(p) {
			return fmt.Errorf("invalid trigger time %q (want HH:MM)", p)
		}
	}
	return nil
}

func validMinute(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh := digits2(s[0], s[1])
	mm := digits2(s[3], s[4])
	return hh >= 0 && hh < 24 && mm >= 0 && mm < 60
}

func digits2(a, b byte) int {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return -1
	}
	return int(a-'0')*10 + int(b-'0')
}

// #endregion load

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
