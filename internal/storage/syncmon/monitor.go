// Package syncmon detects changes to a slot medium made outside the engine.
//
// The monitor keeps a digest of the last fingerprint it saw rather than the
// fingerprint itself, which for some media is the full slot contents.
package syncmon

import (
	"context"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Source provides the raw change signal. slot.Medium satisfies it.
type Source interface {
	Fingerprint(ctx context.Context) (string, error)
}

type digest struct {
	h1, h2 uint64
	n      int
}

func digestOf(fingerprint string) digest {
	h1, h2 := murmur3.Sum128([]byte(fingerprint))
	return digest{h1: h1, h2: h2, n: len(fingerprint)}
}

// Monitor compares successive fingerprints of a Source.
type Monitor struct {
	src      Source
	last     digest
	observed bool
}

// New returns a monitor that has not observed anything yet; its first
// Changed call reports a change.
func New(src Source) *Monitor {
	return &Monitor{src: src}
}

// Changed reads the current fingerprint, records it and reports whether it
// differs from the previously recorded one.
func (m *Monitor) Changed(ctx context.Context) (bool, error) {
	fp, err := m.src.Fingerprint(ctx)
	if err != nil {
		return false, fmt.Errorf("syncmon: fingerprint: %w", err)
	}
	d := digestOf(fp)
	changed := !m.observed || d != m.last
	m.last = d
	m.observed = true
	return changed, nil
}

// Observe records the current fingerprint as seen. The engine calls it
// after its own writes so they are not reported as external changes.
func (m *Monitor) Observe(ctx context.Context) error {
	fp, err := m.src.Fingerprint(ctx)
	if err != nil {
		return fmt.Errorf("syncmon: fingerprint: %w", err)
	}
	m.last = digestOf(fp)
	m.observed = true
	return nil
}

// Reset forgets the recorded fingerprint so the next Changed reports a change.
func (m *Monitor) Reset() {
	m.observed = false
	m.last = digest{}
}
