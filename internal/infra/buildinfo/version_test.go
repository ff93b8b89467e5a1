package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
	if info.BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	defer func(v, c, b string) { Version, Commit, BuildTime = v, c, b }(Version, Commit, BuildTime)
	Version, Commit, BuildTime = "v1.2.3", "abc123", "2026-01-01T00:00:00Z"

	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc123" || info.BuildTime != "2026-01-01T00:00:00Z" {
		t.Errorf("ldflags values overridden: %+v", info)
	}
}

func TestString(t *testing.T) {
	s := String()
	info := Get()
	expected := info.Version + " (" + info.Commit + ") built at " + info.BuildTime + " with " + info.GoVersion
	if s != expected {
		t.Errorf("String() = %q, want %q", s, expected)
	}
	if !strings.Contains(s, "built at") {
		t.Error("String() should mention the build time")
	}
}
