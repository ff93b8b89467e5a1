package confloader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// watchFile starts a watcher on path and returns the channel its callback
// feeds. The watcher is stopped when the test ends.
func watchFile(t *testing.T, path string, opts ...WatcherOption) <-chan string {
	t.Helper()

	w, err := NewWatcher(opts...)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch(%s): %v", path, err)
	}

	events := make(chan string, 16)
	w.OnChange(func(p string) {
		select {
		case events <- p:
		default:
		}
	})
	w.StartAsync()

	// fsnotify needs a moment before the first event is delivered reliably.
	time.Sleep(100 * time.Millisecond)
	return events
}

func waitEvent(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case p := <-events:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification within 2s")
		return ""
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestNewWatcher_Options(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	filter := MatchBase("slots.db")

	w, err := NewWatcher(WithWatcherLogger(custom), WithWatcherFilter(filter))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if w.logger != custom {
		t.Error("logger option not applied")
	}
	if w.filter == nil {
		t.Error("filter option not applied")
	}

	plain, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer plain.Stop()
	if plain.logger == nil || plain.filter != nil {
		t.Errorf("defaults: logger=%v filter set=%v", plain.logger, plain.filter != nil)
	}
}

func TestWatcher_WatchMissingDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(t.TempDir(), "gone", "slots.db")); err == nil {
		t.Error("Watch on a missing directory succeeded")
	}
}

func TestWatcher_CallbacksFanOut(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	var calls atomic.Int64
	for i := 0; i < 3; i++ {
		w.OnChange(func(string) { calls.Add(1) })
	}

	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		go func() {
			w.notifyCallbacks("/data/slots.db")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 50; i++ {
		<-done
	}

	if got := calls.Load(); got != 150 {
		t.Errorf("callbacks ran %d times, want 150", got)
	}
}

func TestWatcher_SlotFileWrite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "slots.db")
	writeFile(t, db, "v1")

	events := watchFile(t, db)
	writeFile(t, db, "v2")

	if p := waitEvent(t, events); filepath.Base(p) != "slots.db" {
		t.Errorf("notified for %s, want slots.db", p)
	}
}

func TestWatcher_ConfigCreatedLater(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "slots.db")
	writeFile(t, db, "")

	events := watchFile(t, db)
	writeFile(t, filepath.Join(dir, "config.yaml"), "log:\n  level: debug\n")

	if p := waitEvent(t, events); p == "" {
		t.Error("empty path in notification")
	}
}

func TestWatcher_FilterSkipsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "slots.db")
	writeFile(t, db, "x")

	events := watchFile(t, db, WithWatcherFilter(MatchBase(db)))
	writeFile(t, filepath.Join(dir, "other.txt"), "y")
	writeFile(t, db+"-wal", "z")

	if p := waitEvent(t, events); filepath.Base(p) != "slots.db-wal" {
		t.Errorf("notified for %s, want slots.db-wal", p)
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestMatchBase(t *testing.T) {
	match := MatchBase("/data/slots.db", "config.yaml")
	tests := []struct {
		path string
		want bool
	}{
		{"/data/slots.db", true},
		{"/data/slots.db-wal", true},
		{"/data/slots.db-shm", true},
		{"/elsewhere/config.yaml", true},
		{"/data/other.db", false},
		{"/data/slots", false},
	}
	for _, tt := range tests {
		if got := match(tt.path); got != tt.want {
			t.Errorf("MatchBase(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
