package slot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Medium is a raw slot store.
type Medium interface {
	// Store writes blob at the given slot, replacing any previous blob.
	Store(ctx context.Context, location string, index int, blob string) error

	// Load returns the blob at the given slot. ok is false when the slot is empty.
	Load(ctx context.Context, location string, index int) (blob string, ok bool, err error)

	// Remove deletes the slot. Removing an empty slot is not an error.
	Remove(ctx context.Context, location string, index int) error

	// CountOccupied returns the number of occupied slots across all locations.
	CountOccupied(ctx context.Context) (int, error)

	// Fingerprint returns a raw signal of the current contents. Any change to
	// any slot must change it; it may also change without a slot changing.
	Fingerprint(ctx context.Context) (string, error)

	// Ping reports whether the medium is usable. It returns an error wrapping
	// domain.ErrMediumUnavailable when it is not.
	Ping(ctx context.Context) error
}

// Rewriter is implemented by media that can replace every slot of a
// location in one atomic step.
type Rewriter interface {
	Rewrite(ctx context.Context, location string, blobs []string) error
}

// Rewrite replaces the slots of location with blobs. previous holds the
// blobs the location had before; slots past len(blobs) are removed.
// Media without Rewriter get a store-then-remove sequence. When a step of
// that sequence fails, the previous blobs are written back and slots added
// past them are removed, so a failed rewrite leaves the old contents.
func Rewrite(ctx context.Context, m Medium, location string, blobs, previous []string) error {
	if rw, ok := m.(Rewriter); ok {
		return rw.Rewrite(ctx, location, blobs)
	}

	for i, blob := range blobs {
		if err := m.Store(ctx, location, i, blob); err != nil {
			return rollback(ctx, m, location, previous, i, fmt.Errorf("store slot %d: %w", i, err))
		}
	}
	for i := len(blobs); i < len(previous); i++ {
		if err := m.Remove(ctx, location, i); err != nil {
			return rollback(ctx, m, location, previous, len(blobs), fmt.Errorf("remove slot %d: %w", i, err))
		}
	}
	return nil
}

// rollback restores previous after a failed rewrite that may have written
// slots 0 through touched. It returns cause, joined with any restore error.
func rollback(ctx context.Context, m Medium, location string, previous []string, touched int, cause error) error {
	var errs []error
	for i, blob := range previous {
		if err := m.Store(ctx, location, i, blob); err != nil {
			errs = append(errs, fmt.Errorf("restore slot %d: %w", i, err))
		}
	}
	for i := len(previous); i <= touched; i++ {
		if err := m.Remove(ctx, location, i); err != nil {
			errs = append(errs, fmt.Errorf("rollback slot %d: %w", i, err))
		}
	}
	if len(errs) == 0 {
		return cause
	}
	return errors.Join(append([]error{cause}, errs...)...)
}

// LoadAll reads slots 0, 1, ... until the first empty one.
func LoadAll(ctx context.Context, m Medium, location string) ([]string, error) {
	var blobs []string
	for i := 0; ; i++ {
		blob, ok, err := m.Load(ctx, location, i)
		if err != nil {
			return nil, fmt.Errorf("load slot %d: %w", i, err)
		}
		if !ok {
			return blobs, nil
		}
		blobs = append(blobs, blob)
	}
}

// Name returns the canonical slot name "<location>_<index>" used by media
// that address slots by a flat name.
func Name(location string, index int) string {
	return location + "_" + strconv.Itoa(index)
}

// ParseName splits a slot name produced by Name.
func ParseName(name string) (location string, index int, ok bool) {
	i := strings.LastIndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return "", 0, false
	}
	index, err := strconv.Atoi(name[i+1:])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return name[:i], index, true
}
