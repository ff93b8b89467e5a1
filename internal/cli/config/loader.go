package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/slotkv/internal/infra/confloader"
)

// DefaultDir returns the per-user SlotKV directory.
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".slotkv")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultDataPath returns the default medium path for backend.
func DefaultDataPath(backend string) string {
	if backend == BackendBadger {
		return filepath.Join(DefaultDir(), "badger")
	}
	return filepath.Join(DefaultDir(), "slots.db")
}

// Load builds the configuration from defaults, the config file at path,
// SLOTKV_ environment variables and flags, in increasing priority. An
// empty path uses DefaultConfigPath when that file exists; an explicit path
// must exist.
func Load(path string, flags map[string]any) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath()); err == nil {
			path = DefaultConfigPath()
		}
	}

	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithDefaults(DefaultMap()),
	)

	cfg := &Config{}
	if err := l.Load(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(flags) > 0 {
		if err := l.LoadMap(flags); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal flags: %w", err)
		}
	}

	// A backend switch without an explicit path follows the backend.
	if cfg.Storage.Path == DefaultDataPath(BackendSQLite) && cfg.Storage.Backend == BackendBadger {
		cfg.Storage.Path = DefaultDataPath(BackendBadger)
	}

	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML with 0600 permissions.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// MarshalYAML writes durations in their string form so Load can read them back.
func (b BadgerConfig) MarshalYAML() (any, error) {
	return struct {
		GCInterval  string  `yaml:"gc_interval"`
		GCThreshold float64 `yaml:"gc_threshold"`
	}{
		GCInterval:  b.GCInterval.String(),
		GCThreshold: b.GCThreshold,
	}, nil
}
