package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// UsageBar draws a fixed-width bar showing used out of total.
type UsageBar struct {
	Label string
	Used  int
	Total int
	Unit  string // e.g. "slots", "bytes"
	Width int
}

// Render writes the bar and a trailing newline.
func (b UsageBar) Render(w io.Writer) error {
	width := b.Width
	if width <= 0 {
		width = 30
	}

	ratio := 0.0
	if b.Total > 0 {
		ratio = float64(b.Used) / float64(b.Total)
	}
	ratio = min(max(ratio, 0), 1)

	filled := int(float64(width) * ratio)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	_, err := fmt.Fprintf(w, "%-12s [%s] %3.0f%% (%s/%s %s)\n",
		b.Label,
		bar,
		ratio*100,
		humanize.Comma(int64(b.Used)),
		humanize.Comma(int64(b.Total)),
		b.Unit,
	)
	return err
}
