package sqliteslot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/internal/storage/slot"
)

var _ slot.Rewriter = (*Medium)(nil)

func openTestMedium(t *testing.T) (*Medium, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slots.db")
	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, path
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestMedium_StoreLoadRemove(t *testing.T) {
	m, _ := openTestMedium(t)
	ctx := context.Background()

	if err := m.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := m.Store(ctx, "session", 0, "a=1"); err != nil {
		t.Fatal(err)
	}
	if err := m.Store(ctx, "session", 0, "a=2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	blob, ok, err := m.Load(ctx, "session", 0)
	if err != nil || !ok || blob != "a=2" {
		t.Fatalf("Load = (%q, %v, %v), want (a=2, true, nil)", blob, ok, err)
	}
	if _, ok, err := m.Load(ctx, "session", 1); err != nil || ok {
		t.Errorf("Load missing = (%v, %v), want absent", ok, err)
	}

	if err := m.Remove(ctx, "session", 0); err != nil {
		t.Fatal(err)
	}
	if n, err := m.CountOccupied(ctx); err != nil || n != 0 {
		t.Errorf("CountOccupied = (%d, %v), want 0", n, err)
	}
}

func TestMedium_Rewrite(t *testing.T) {
	m, _ := openTestMedium(t)
	ctx := context.Background()

	if err := m.Rewrite(ctx, "session", []string{"a=1", "a=2", "a=3"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Rewrite(ctx, "persistent", []string{"p=1"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Rewrite(ctx, "session", []string{"b=1"}); err != nil {
		t.Fatal(err)
	}

	got, err := slot.LoadAll(ctx, m, "session")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b=1"}, got); diff != "" {
		t.Errorf("session slots mismatch (-want +got):\n%s", diff)
	}
	if n, _ := m.CountOccupied(ctx); n != 2 {
		t.Errorf("CountOccupied = %d, want 2", n)
	}
}

func TestMedium_SeesWritesFromAnotherHandle(t *testing.T) {
	m, path := openTestMedium(t)
	ctx := context.Background()

	other, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()

	before, err := m.Fingerprint(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Store(ctx, "session", 0, "x=external"); err != nil {
		t.Fatal(err)
	}
	after, err := m.Fingerprint(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Error("fingerprint unchanged after write through another handle")
	}

	blob, ok, err := m.Load(ctx, "session", 0)
	if err != nil || !ok || blob != "x=external" {
		t.Errorf("Load = (%q, %v, %v)", blob, ok, err)
	}
}

func TestMedium_ClosedIsUnavailable(t *testing.T) {
	m, _ := openTestMedium(t)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Ping(context.Background()); !errors.Is(err, domain.ErrMediumUnavailable) {
		t.Errorf("Ping after Close = %v, want ErrMediumUnavailable", err)
	}
	var nilMedium *Medium
	if err := nilMedium.Ping(context.Background()); !errors.Is(err, domain.ErrMediumUnavailable) {
		t.Errorf("Ping on nil medium = %v, want ErrMediumUnavailable", err)
	}
}
