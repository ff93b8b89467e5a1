package syncmon

import (
	"context"
	"errors"
	"testing"
)

type fakeSource struct {
	fp  string
	err error
}

func (f *fakeSource) Fingerprint(context.Context) (string, error) {
	return f.fp, f.err
}

func TestMonitor_Changed(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{fp: "a=1"}
	m := New(src)

	steps := []struct {
		name string
		fp   string
		want bool
	}{
		{"first call", "a=1", true},
		{"unchanged", "a=1", false},
		{"external write", "a=2", true},
		{"settled", "a=2", false},
		{"cleared", "", true},
		{"still empty", "", false},
	}
	for _, s := range steps {
		src.fp = s.fp
		got, err := m.Changed(ctx)
		if err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got != s.want {
			t.Errorf("%s: Changed = %v, want %v", s.name, got, s.want)
		}
	}
}

func TestMonitor_ObserveSuppressesOwnWrites(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{fp: "a=1"}
	m := New(src)

	if _, err := m.Changed(ctx); err != nil {
		t.Fatal(err)
	}
	src.fp = "a=1&b=2"
	if err := m.Observe(ctx); err != nil {
		t.Fatal(err)
	}
	if changed, _ := m.Changed(ctx); changed {
		t.Error("own write reported as change")
	}
}

func TestMonitor_Reset(t *testing.T) {
	ctx := context.Background()
	m := New(&fakeSource{fp: "x"})
	if _, err := m.Changed(ctx); err != nil {
		t.Fatal(err)
	}
	m.Reset()
	if changed, _ := m.Changed(ctx); !changed {
		t.Error("Changed after Reset = false, want true")
	}
}

func TestMonitor_SourceError(t *testing.T) {
	boom := errors.New("boom")
	m := New(&fakeSource{err: boom})

	if _, err := m.Changed(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Changed error = %v, want wrapping %v", err, boom)
	}
	if err := m.Observe(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Observe error = %v, want wrapping %v", err, boom)
	}
}
