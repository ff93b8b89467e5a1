package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/slotkv/internal/core/domain"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config is the SlotKV configuration.
type Config struct {
	Log     LogConfig     `koanf:"log" yaml:"log"`
	Storage StorageConfig `koanf:"storage" yaml:"storage"`
	Output  string        `koanf:"output" yaml:"output"` // table, json, yaml
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// StorageConfig configures the slot medium and the engine.
type StorageConfig struct {
	Backend      string       `koanf:"backend" yaml:"backend"`
	Path         string       `koanf:"path" yaml:"path"`
	Location     string       `koanf:"location" yaml:"location"`
	MaxByteSize  int          `koanf:"max_byte_size" yaml:"max_byte_size"`
	MaxSlots     int          `koanf:"max_slots" yaml:"max_slots"`
	WideCharCost int          `koanf:"wide_char_cost" yaml:"wide_char_cost"`
	Badger       BadgerConfig `koanf:"badger" yaml:"badger"`
}

// BadgerConfig holds Badger-specific settings.
type BadgerConfig struct {
	GCInterval  time.Duration `koanf:"gc_interval" yaml:"gc_interval"`
	GCThreshold float64       `koanf:"gc_threshold" yaml:"gc_threshold"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend:      BackendSQLite,
			Path:         DefaultDataPath(BackendSQLite),
			Location:     string(domain.LocationPersistent),
			MaxByteSize:  4000,
			MaxSlots:     20,
			WideCharCost: 3,
			Badger: BadgerConfig{
				GCInterval:  10 * time.Minute,
				GCThreshold: 0.5,
			},
		},
		Output: OutputTable,
	}
}

// DefaultMap returns Default as a flat key map for confloader.
func DefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"log.level":                   d.Log.Level,
		"log.format":                  d.Log.Format,
		"storage.backend":             d.Storage.Backend,
		"storage.path":                d.Storage.Path,
		"storage.location":            d.Storage.Location,
		"storage.max_byte_size":       d.Storage.MaxByteSize,
		"storage.max_slots":           d.Storage.MaxSlots,
		"storage.wide_char_cost":      d.Storage.WideCharCost,
		"storage.badger.gc_interval":  d.Storage.Badger.GCInterval.String(),
		"storage.badger.gc_threshold": d.Storage.Badger.GCThreshold,
		"output":                      d.Output,
	}
}

// Verify checks the configuration and returns every problem found.
func (c *Config) Verify() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	switch c.Storage.Backend {
	case BackendSQLite, BackendBadger:
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for backend %s", c.Storage.Backend))
		}
	case BackendMemory:
	case "cookie":
		// cookieslot needs a jar owned by an embedding process.
		errs = append(errs, fmt.Errorf("storage.backend: the cookie medium is library-only, use %s or %s for a durable store",
			BackendSQLite, BackendBadger))
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if err := domain.Location(c.Storage.Location).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("storage.location: %w", err))
	}
	if c.Storage.MaxByteSize <= 0 {
		errs = append(errs, fmt.Errorf("storage.max_byte_size must be positive, got %d", c.Storage.MaxByteSize))
	}
	if c.Storage.MaxSlots <= 0 {
		errs = append(errs, fmt.Errorf("storage.max_slots must be positive, got %d", c.Storage.MaxSlots))
	}
	if c.Storage.WideCharCost < 1 {
		errs = append(errs, fmt.Errorf("storage.wide_char_cost must be at least 1, got %d", c.Storage.WideCharCost))
	}
	if c.Storage.Badger.GCThreshold <= 0 || c.Storage.Badger.GCThreshold >= 1 {
		errs = append(errs, fmt.Errorf("storage.badger.gc_threshold must be in (0, 1), got %v", c.Storage.Badger.GCThreshold))
	}

	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		errs = append(errs, fmt.Errorf("output: unknown format %q", c.Output))
	}

	return errors.Join(errs...)
}
