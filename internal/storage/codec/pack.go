package codec

import (
	"strings"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/pkg/bytesize"
)

// Packer lays out entries into slot blobs of at most MaxBytes estimated bytes.
type Packer struct {
	Estimator bytesize.Estimator
	MaxBytes  int
}

// Pack greedily appends records to the current slot. A record whose value
// overflows the slot is trimmed to fill it, and the remainder of the same
// key continues in the next slot. The result is deterministic for a given
// entry order, which is what makes Decode followed by Pack reproduce the
// original blobs.
func (p Packer) Pack(entries []domain.Entry) ([]string, error) {
	var (
		blobs   []string
		cur     strings.Builder
		curSize int
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		blobs = append(blobs, cur.String())
		cur.Reset()
		curSize = 0
	}

	for _, e := range entries {
		remaining := e.Value
		for {
			head := e.Key + domain.KeyValueDelim
			if cur.Len() > 0 {
				head = domain.RecordSeparator + head
			}
			overhead := p.Estimator.Estimate(head)
			valueSize := p.Estimator.Estimate(remaining)

			if curSize+overhead+valueSize <= p.MaxBytes {
				cur.WriteString(head)
				cur.WriteString(remaining)
				curSize += overhead + valueSize
				break
			}

			available := p.MaxBytes - curSize - overhead
			if available <= 0 {
				if cur.Len() == 0 {
					return nil, domain.ErrRecordTooLarge.WithDetailsf("key %q needs %d bytes of %d", e.Key, overhead, p.MaxBytes)
				}
				flush()
				continue
			}

			fit, rest, err := Trim(p.Estimator, remaining, available)
			if err != nil {
				return nil, err
			}
			if fit == "" {
				if cur.Len() == 0 {
					return nil, domain.ErrRecordTooLarge.WithDetailsf("key %q: first rune exceeds %d free bytes", e.Key, available)
				}
				flush()
				continue
			}

			cur.WriteString(head)
			cur.WriteString(fit)
			curSize += overhead + p.Estimator.Estimate(fit)
			flush()
			remaining = rest
		}
	}
	flush()

	return blobs, nil
}
