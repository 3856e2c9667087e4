package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Limits applied when a session is started. Values outside the range are
// clamped, not rejected.
const (
	MinWorkMinutes       = 1
	MaxWorkMinutes       = 120
	MinBreakMinutes      = 1
	MaxShortBreakMinutes = 60
	MaxLongBreakMinutes  = 120
)

type Config struct {
	Durations DurationsConfig `toml:"durations"`
	Behavior  BehaviorConfig  `toml:"behavior"`
	Storage   StorageConfig   `toml:"storage"`
	Mirror    MirrorConfig    `toml:"mirror"`
}

type DurationsConfig struct {
	WorkMinutes       int `toml:"work_minutes"`
	ShortBreakMinutes int `toml:"short_break_minutes"`
	LongBreakMinutes  int `toml:"long_break_minutes"`
	LongBreakInterval int `toml:"long_break_interval"`
}

type BehaviorConfig struct {
	// Mode is "auto" (sessions finalize themselves at zero) or "manual"
	// (the timer runs past zero until the user switches).
	Mode                  string `toml:"mode"`
	AutoStartNext         bool   `toml:"auto_start_next"`
	AutoStartDelaySeconds int    `toml:"auto_start_delay_seconds"`
	Notify                bool   `toml:"notify"`
}

type StorageConfig struct {
	// Backend is "log" (flat chronological log inside the state file) or
	// "daily-notes" (one record per calendar day).
	Backend           string `toml:"backend"`
	DataDir           string `toml:"data_dir"`
	DailyNotesEnabled bool   `toml:"daily_notes_enabled"`
	DailyNotesDir     string `toml:"daily_notes_dir"`
}

type MirrorConfig struct {
	Enabled        bool   `toml:"enabled"`
	Path           string `toml:"path"`
	CooldownMillis int    `toml:"cooldown_ms"`
}

const (
	ModeAuto   = "auto"
	ModeManual = "manual"

	BackendLog        = "log"
	BackendDailyNotes = "daily-notes"
)

func DefaultConfig() Config {
	dataDir := DefaultDataDir()
	return Config{
		Durations: DurationsConfig{
			WorkMinutes:       25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
			LongBreakInterval: 4,
		},
		Behavior: BehaviorConfig{
			Mode:                  ModeAuto,
			AutoStartNext:         false,
			AutoStartDelaySeconds: 5,
			Notify:                true,
		},
		Storage: StorageConfig{
			Backend:           BackendLog,
			DataDir:           dataDir,
			DailyNotesEnabled: false,
			DailyNotesDir:     filepath.Join(dataDir, "daily"),
		},
		Mirror: MirrorConfig{
			Enabled:        true,
			Path:           filepath.Join(dataDir, "pomodoros.md"),
			CooldownMillis: 1500,
		},
	}
}

// Load reads the config file at the default path. A missing file yields
// the defaults.
func Load() (Config, error) {
	return LoadFrom(DefaultConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Durations.WorkMinutes < MinWorkMinutes || cfg.Durations.WorkMinutes > MaxWorkMinutes {
		errs = append(errs, fmt.Sprintf("work_minutes must be %d-%d, got %d", MinWorkMinutes, MaxWorkMinutes, cfg.Durations.WorkMinutes))
	}
	if cfg.Durations.ShortBreakMinutes < MinBreakMinutes || cfg.Durations.ShortBreakMinutes > MaxShortBreakMinutes {
		errs = append(errs, fmt.Sprintf("short_break_minutes must be %d-%d, got %d", MinBreakMinutes, MaxShortBreakMinutes, cfg.Durations.ShortBreakMinutes))
	}
	if cfg.Durations.LongBreakMinutes < MinBreakMinutes || cfg.Durations.LongBreakMinutes > MaxLongBreakMinutes {
		errs = append(errs, fmt.Sprintf("long_break_minutes must be %d-%d, got %d", MinBreakMinutes, MaxLongBreakMinutes, cfg.Durations.LongBreakMinutes))
	}
	if cfg.Durations.LongBreakInterval < 1 {
		errs = append(errs, fmt.Sprintf("long_break_interval must be positive, got %d", cfg.Durations.LongBreakInterval))
	}
	if cfg.Behavior.Mode != ModeAuto && cfg.Behavior.Mode != ModeManual {
		errs = append(errs, fmt.Sprintf("mode must be %q or %q, got %q", ModeAuto, ModeManual, cfg.Behavior.Mode))
	}
	if cfg.Behavior.AutoStartDelaySeconds < 0 {
		errs = append(errs, fmt.Sprintf("auto_start_delay_seconds must not be negative, got %d", cfg.Behavior.AutoStartDelaySeconds))
	}
	if cfg.Storage.Backend != BackendLog && cfg.Storage.Backend != BackendDailyNotes {
		errs = append(errs, fmt.Sprintf("backend must be %q or %q, got %q", BackendLog, BackendDailyNotes, cfg.Storage.Backend))
	}
	if cfg.Mirror.CooldownMillis < 0 {
		errs = append(errs, fmt.Sprintf("cooldown_ms must not be negative, got %d", cfg.Mirror.CooldownMillis))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ClampDuration bounds a requested session length to the allowed range
// for its type.
func (d DurationsConfig) ClampDuration(sessionType string, minutes int) int {
	lo, hi := MinWorkMinutes, MaxWorkMinutes
	switch sessionType {
	case "short-break":
		lo, hi = MinBreakMinutes, MaxShortBreakMinutes
	case "long-break":
		lo, hi = MinBreakMinutes, MaxLongBreakMinutes
	}
	if minutes < lo {
		return lo
	}
	if minutes > hi {
		return hi
	}
	return minutes
}
