package codec

import (
	"math"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/pkg/bytesize"
)

// MaxTrimIterations bounds the correction rounds of Trim.
const MaxTrimIterations = 10

// Trim splits s into prefix and suffix so that the estimated cost of prefix
// is the largest value not above budget. The split always falls on a rune
// boundary and prefix+suffix == s.
//
// The first cut is taken from the cost ratio. Each following round measures
// the prefix and moves the cut by as many runes as the discrepancy requires,
// so clusters of wide runes near the boundary are crossed in one step. An
// estimator whose prefix costs disagree with its per-rune costs can keep the
// cut oscillating; after MaxTrimIterations rounds that yields
// ErrTrimNonConvergent.
func Trim(est bytesize.Estimator, s string, budget int) (prefix, suffix string, err error) {
	total := est.Estimate(s)
	if total <= budget {
		return s, "", nil
	}
	if budget <= 0 {
		return "", s, nil
	}

	offsets := runeOffsets(s)
	runes := len(offsets) - 1
	runeCost := func(i int) int {
		return est.Estimate(s[offsets[i]:offsets[i+1]])
	}

	cut := int(math.Ceil(float64(budget) / float64(total) * float64(runes)))
	cut = min(max(cut, 0), runes)

	for round := 0; round < MaxTrimIterations; round++ {
		size := est.Estimate(s[:offsets[cut]])

		if size > budget {
			excess := size - budget
			for excess > 0 && cut > 0 {
				cut--
				excess -= runeCost(cut)
			}
			continue
		}

		if cut < runes && runeCost(cut) <= budget-size {
			gap := budget - size
			for cut < runes {
				c := runeCost(cut)
				if c > gap {
					break
				}
				gap -= c
				cut++
			}
			continue
		}

		return s[:offsets[cut]], s[offsets[cut]:], nil
	}

	return "", "", domain.ErrTrimNonConvergent.WithDetailsf(
		"budget %d, cost %d, %d runes after %d rounds", budget, total, runes, MaxTrimIterations)
}

// runeOffsets returns the byte offset of every rune start plus len(s).
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
