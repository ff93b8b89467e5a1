package bytesize

import "unicode/utf8"

// DefaultWideCost is the cost charged for every non-ASCII rune.
const DefaultWideCost = 3

// Estimator returns the estimated byte cost of a string.
type Estimator interface {
	Estimate(s string) int
}

// Conservative charges one byte per ASCII rune and WideCost per other rune.
type Conservative struct {
	WideCost int
}

// New returns a Conservative estimator. A non-positive wideCost falls back
// to DefaultWideCost.
func New(wideCost int) Conservative {
	if wideCost <= 0 {
		wideCost = DefaultWideCost
	}
	return Conservative{WideCost: wideCost}
}

// Estimate implements Estimator.
func (c Conservative) Estimate(s string) int {
	wide := c.WideCost
	if wide <= 0 {
		wide = DefaultWideCost
	}

	size := 0
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			size++
			i++
			continue
		}
		_, n := utf8.DecodeRuneInString(s[i:])
		size += wide
		i += n
	}
	return size
}

// RuneCost returns the cost of a single rune.
func (c Conservative) RuneCost(r rune) int {
	if r < utf8.RuneSelf {
		return 1
	}
	if c.WideCost <= 0 {
		return DefaultWideCost
	}
	return c.WideCost
}

// Func adapts a plain function to the Estimator interface.
type Func func(s string) int

// Estimate implements Estimator.
func (f Func) Estimate(s string) int {
	return f(s)
}

// Estimate is a shortcut for the default Conservative estimator.
func Estimate(s string) int {
	return Conservative{WideCost: DefaultWideCost}.Estimate(s)
}
