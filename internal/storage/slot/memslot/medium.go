// Package memslot implements a process-local slot medium.
//
// Slots of one location are kept together in a copy-on-write map, so a
// location rewrite is a single atomic swap. The fingerprint is a change
// counter bumped on every mutation.
package memslot

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/pkg/cmap"
)

// Medium is an in-memory slot.Medium. It is safe for concurrent use.
type Medium struct {
	locations *cmap.Map[map[int]string]
	version   atomic.Uint64
	disabled  atomic.Bool
}

// New returns an empty medium.
func New() *Medium {
	return &Medium{locations: cmap.New[map[int]string]()}
}

// SetAvailable toggles the medium on or off. A disabled medium fails every
// call with domain.ErrMediumUnavailable, like a browser with cookies turned off.
func (m *Medium) SetAvailable(available bool) {
	m.disabled.Store(!available)
}

func (m *Medium) check() error {
	if m.disabled.Load() {
		return domain.ErrMediumUnavailable.WithDetails("memory medium disabled")
	}
	return nil
}

// Store implements slot.Medium.
func (m *Medium) Store(_ context.Context, location string, index int, blob string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.locations.Update(location, func(slots map[int]string, _ bool) (map[int]string, bool) {
		next := cloneSlots(slots, 1)
		next[index] = blob
		return next, false
	})
	m.version.Add(1)
	return nil
}

// Load implements slot.Medium.
func (m *Medium) Load(_ context.Context, location string, index int) (string, bool, error) {
	if err := m.check(); err != nil {
		return "", false, err
	}
	slots, ok := m.locations.Get(location)
	if !ok {
		return "", false, nil
	}
	blob, ok := slots[index]
	return blob, ok, nil
}

// Remove implements slot.Medium.
func (m *Medium) Remove(_ context.Context, location string, index int) error {
	if err := m.check(); err != nil {
		return err
	}
	m.locations.Update(location, func(slots map[int]string, exists bool) (map[int]string, bool) {
		if !exists {
			return nil, true
		}
		next := cloneSlots(slots, 0)
		delete(next, index)
		return next, len(next) == 0
	})
	m.version.Add(1)
	return nil
}

// Rewrite implements slot.Rewriter.
func (m *Medium) Rewrite(_ context.Context, location string, blobs []string) error {
	if err := m.check(); err != nil {
		return err
	}
	if len(blobs) == 0 {
		m.locations.Delete(location)
	} else {
		next := make(map[int]string, len(blobs))
		for i, b := range blobs {
			next[i] = b
		}
		m.locations.Set(location, next)
	}
	m.version.Add(1)
	return nil
}

// CountOccupied implements slot.Medium.
func (m *Medium) CountOccupied(_ context.Context) (int, error) {
	if err := m.check(); err != nil {
		return 0, err
	}
	n := 0
	m.locations.Range(func(_ string, slots map[int]string) bool {
		n += len(slots)
		return true
	})
	return n, nil
}

// Fingerprint implements slot.Medium.
func (m *Medium) Fingerprint(_ context.Context) (string, error) {
	if err := m.check(); err != nil {
		return "", err
	}
	return strconv.FormatUint(m.version.Load(), 10), nil
}

// Ping implements slot.Medium.
func (m *Medium) Ping(_ context.Context) error {
	return m.check()
}

func cloneSlots(slots map[int]string, extra int) map[int]string {
	next := make(map[int]string, len(slots)+extra)
	for k, v := range slots {
		next[k] = v
	}
	return next
}
