package domain

import "strings"

// Reserved characters of the slot record format.
const (
	RecordSeparator = "&"
	KeyValueDelim   = "="
)

// Well-known locations, mirroring browser session and persistent storage.
const (
	LocationSession    Location = "session"
	LocationPersistent Location = "persistent"
)

// Location names an independent slot partition.
type Location string

// String implements fmt.Stringer.
func (l Location) String() string {
	return string(l)
}

// Validate checks that the location can be embedded in slot names.
// Letters, digits, '-' and '_' are allowed.
func (l Location) Validate() error {
	if l == "" {
		return ErrInvalidLocation.WithDetails("empty location")
	}
	for _, r := range l {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidLocation.WithDetailsf("location %q contains %q", string(l), r)
		}
	}
	return nil
}

// Entry is one key/value pair of a location.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// ValidateKey rejects keys the record format cannot carry.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidRecord.WithDetails("empty key")
	}
	if strings.ContainsAny(key, RecordSeparator+KeyValueDelim) {
		return ErrInvalidRecord.WithDetailsf("key %q contains a reserved character", key)
	}
	return nil
}

// ValidateValue rejects values the record format cannot carry.
// '=' is allowed because records split on the first delimiter only.
func ValidateValue(value string) error {
	if strings.Contains(value, RecordSeparator) {
		return ErrInvalidRecord.WithDetails("value contains the record separator")
	}
	return nil
}
