package codec

import "github.com/yndnr/slotkv/internal/core/domain"

// Mirror is the in-memory view of a location: ordered keys plus values.
// It is not safe for concurrent use.
type Mirror struct {
	keys   []string
	values map[string]string
}

// NewMirror returns an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{values: make(map[string]string)}
}

// MirrorFromEntries builds a mirror from entries in order. Later duplicates
// replace earlier values without moving the key.
func MirrorFromEntries(entries []domain.Entry) *Mirror {
	m := NewMirror()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Get returns the value stored under key.
func (m *Mirror) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mirror) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set inserts or replaces key. A new key goes to the end of the order.
func (m *Mirror) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key and reports whether it was present.
func (m *Mirror) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Key returns the key at index in insertion order.
func (m *Mirror) Key(index int) (string, bool) {
	if index < 0 || index >= len(m.keys) {
		return "", false
	}
	return m.keys[index], true
}

// Len returns the number of keys.
func (m *Mirror) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the ordered key list.
func (m *Mirror) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns the entries in key order.
func (m *Mirror) Entries() []domain.Entry {
	out := make([]domain.Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = domain.Entry{Key: k, Value: m.values[k]}
	}
	return out
}

// Clone returns a deep copy.
func (m *Mirror) Clone() *Mirror {
	c := &Mirror{
		keys:   m.Keys(),
		values: make(map[string]string, len(m.values)),
	}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// appendFragment extends the value of key, inserting the key if needed.
func (m *Mirror) appendFragment(key, fragment string) {
	if v, ok := m.values[key]; ok {
		m.values[key] = v + fragment
		return
	}
	m.keys = append(m.keys, key)
	m.values[key] = fragment
}
