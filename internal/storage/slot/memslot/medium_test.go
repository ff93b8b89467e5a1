package memslot

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/internal/storage/slot"
)

var _ slot.Rewriter = (*Medium)(nil)

func TestMedium_StoreLoadRemove(t *testing.T) {
	ctx := context.Background()
	m := New()

	if _, ok, err := m.Load(ctx, "session", 0); err != nil || ok {
		t.Fatalf("Load on empty = (ok=%v, err=%v), want absent", ok, err)
	}

	if err := m.Store(ctx, "session", 0, "a=1"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := m.Store(ctx, "persistent", 0, "b=2"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	blob, ok, err := m.Load(ctx, "session", 0)
	if err != nil || !ok || blob != "a=1" {
		t.Fatalf("Load = (%q, %v, %v), want (a=1, true, nil)", blob, ok, err)
	}

	n, err := m.CountOccupied(ctx)
	if err != nil || n != 2 {
		t.Fatalf("CountOccupied = (%d, %v), want 2", n, err)
	}

	if err := m.Remove(ctx, "session", 0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := m.Remove(ctx, "nowhere", 3); err != nil {
		t.Fatalf("Remove on empty location: %v", err)
	}
	if _, ok, _ := m.Load(ctx, "session", 0); ok {
		t.Error("slot still present after Remove")
	}
	if n, _ := m.CountOccupied(ctx); n != 1 {
		t.Errorf("CountOccupied = %d, want 1", n)
	}
}

func TestMedium_FingerprintChangesOnMutation(t *testing.T) {
	ctx := context.Background()
	m := New()

	before, _ := m.Fingerprint(ctx)
	if again, _ := m.Fingerprint(ctx); again != before {
		t.Fatalf("fingerprint changed without mutation: %q -> %q", before, again)
	}

	_ = m.Store(ctx, "session", 0, "a=1")
	after, _ := m.Fingerprint(ctx)
	if after == before {
		t.Error("fingerprint unchanged after Store")
	}

	_ = m.Rewrite(ctx, "session", nil)
	if last, _ := m.Fingerprint(ctx); last == after {
		t.Error("fingerprint unchanged after Rewrite")
	}
}

func TestMedium_Rewrite(t *testing.T) {
	ctx := context.Background()
	m := New()

	for i, b := range []string{"a=1", "a=2", "a=3"} {
		_ = m.Store(ctx, "session", i, b)
	}
	if err := m.Rewrite(ctx, "session", []string{"b=1"}); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	blobs, err := slot.LoadAll(ctx, m, "session")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(blobs) != 1 || blobs[0] != "b=1" {
		t.Errorf("LoadAll = %q, want [b=1]", blobs)
	}
}

func TestMedium_Unavailable(t *testing.T) {
	ctx := context.Background()
	m := New()
	m.SetAvailable(false)

	if err := m.Ping(ctx); !errors.Is(err, domain.ErrMediumUnavailable) {
		t.Errorf("Ping = %v, want ErrMediumUnavailable", err)
	}
	if err := m.Store(ctx, "session", 0, "x=1"); !errors.Is(err, domain.ErrMediumUnavailable) {
		t.Errorf("Store = %v, want ErrMediumUnavailable", err)
	}

	m.SetAvailable(true)
	if err := m.Ping(ctx); err != nil {
		t.Errorf("Ping after re-enable = %v", err)
	}
}
