package codec

import (
	"strings"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/pkg/bytesize"
)

// EncodeRecord returns the wire form of one record.
func EncodeRecord(key, fragment string) string {
	return key + domain.KeyValueDelim + fragment
}

// DecodeRecord splits a record on its first '='. A record without '=' is a
// key with an empty fragment.
func DecodeRecord(record string) (key, fragment string) {
	key, fragment, _ = strings.Cut(record, domain.KeyValueDelim)
	return key, fragment
}

// Decode rebuilds a mirror from a location's blobs in slot order.
func Decode(blobs []string) *Mirror {
	m := NewMirror()
	for _, blob := range blobs {
		if blob == "" {
			continue
		}
		for _, record := range strings.Split(blob, domain.RecordSeparator) {
			if record == "" {
				continue
			}
			m.appendFragment(DecodeRecord(record))
		}
	}
	return m
}

// RecordCost is the estimated cost of key=value appended after other
// records, separator included.
func RecordCost(est bytesize.Estimator, key, value string) int {
	return est.Estimate(domain.RecordSeparator+key+domain.KeyValueDelim) + est.Estimate(value)
}
