package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
	Storage struct {
		Backend     string `koanf:"backend"`
		MaxByteSize int    `koanf:"max_byte_size"`
		MaxSlots    int    `koanf:"max_slots"`
	} `koanf:"storage"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
		WithDefaults(map[string]any{"log.level": "info"}),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
	if l.defaults["log.level"] != "info" {
		t.Errorf("defaults not applied: %v", l.defaults)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: badger
  max_byte_size: 4096
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.GetString("storage.backend"); got != "badger" {
		t.Errorf("storage.backend = %q, want badger", got)
	}
	if got := l.GetInt("storage.max_byte_size"); got != 4096 {
		t.Errorf("storage.max_byte_size = %d, want 4096", got)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	if err := NewLoader().LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_EnvKey(t *testing.T) {
	l := NewLoader()
	tests := []struct {
		in   string
		want string
	}{
		{"SLOTKV_STORAGE__MAX_BYTE_SIZE", "storage.max_byte_size"},
		{"SLOTKV_LOG__LEVEL", "log.level"},
		{"SLOTKV_STORAGE__BADGER__GC_INTERVAL", "storage.badger.gc_interval"},
		{"SLOTKV_DEBUG", "debug"},
	}
	for _, tt := range tests {
		if got := l.EnvKey(tt.in); got != tt.want {
			t.Errorf("EnvKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("SLOTKV_STORAGE__MAX_BYTE_SIZE", "1234")
	t.Setenv("SLOTKV_LOG__LEVEL", "debug")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetInt("storage.max_byte_size"); got != 1234 {
		t.Errorf("storage.max_byte_size = %d, want 1234", got)
	}
	if got := l.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug", got)
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_STORAGE__PATH", "/tmp/x")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetString("storage.path"); got != "/tmp/x" {
		t.Errorf("storage.path = %q, want /tmp/x", got)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"storage.location": "persistent",
		"debug":            true,
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := l.GetString("storage.location"); got != "persistent" {
		t.Errorf("storage.location = %q, want persistent", got)
	}
	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
log:
  level: warn
storage:
  backend: badger
  max_byte_size: 2000
`)
	t.Setenv("SLOTKV_STORAGE__MAX_BYTE_SIZE", "3000")

	l := NewLoader(
		WithConfigFile(path),
		WithDefaults(map[string]any{
			"log.level":             "info",
			"storage.backend":       "sqlite",
			"storage.max_byte_size": 4000,
			"storage.max_slots":     20,
		}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.MaxSlots != 20 {
		t.Errorf("MaxSlots = %d, want default 20", cfg.Storage.MaxSlots)
	}
	if cfg.Storage.Backend != "badger" || cfg.Log.Level != "warn" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Storage.MaxByteSize != 3000 {
		t.Errorf("MaxByteSize = %d, want 3000 (env should override file)", cfg.Storage.MaxByteSize)
	}

	// Flags come last.
	if err := l.LoadMap(map[string]any{"storage.backend": "sqlite"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite (flag should override file)", cfg.Storage.Backend)
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()
	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_AllAndKeys(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"key1":   "value1",
		"a.key2": "value2",
	}); err != nil {
		t.Fatal(err)
	}

	if all := l.All(); len(all) != 2 {
		t.Errorf("All() returned %d keys, want 2", len(all))
	}
	if keys := l.Keys(); len(keys) != 2 {
		t.Errorf("Keys() returned %d keys, want 2", len(keys))
	}
	if l.Get("a.key2") != "value2" {
		t.Errorf("Get(a.key2) = %v", l.Get("a.key2"))
	}
}

func TestProvider_ReadBytes(t *testing.T) {
	if _, err := mapProvider(nil).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v", err)
	}
}
