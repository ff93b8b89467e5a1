package command

import (
	"fmt"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/slotkv/internal/cli/output"
	"github.com/yndnr/slotkv/internal/storage/slot"
	"github.com/yndnr/slotkv/pkg/bytesize"
)

// RemainingCommand returns the remaining command.
func RemainingCommand() *cli.Command {
	return &cli.Command{
		Name:   "remaining",
		Usage:  "Show the estimated bytes still writable",
		Action: inspectRemaining,
	}
}

type capacityReport struct {
	Location       string `json:"location" yaml:"location"`
	BytesRemaining int    `json:"bytes_remaining" yaml:"bytes_remaining"`
	Entries        int    `json:"entries" yaml:"entries"`
	OwnSlots       int    `json:"own_slots" yaml:"own_slots"`
	OccupiedSlots  int    `json:"occupied_slots" yaml:"occupied_slots"`
	MaxSlots       int    `json:"max_slots" yaml:"max_slots"`
	MaxByteSize    int    `json:"max_byte_size" yaml:"max_byte_size"`
}

func inspectRemaining(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		remaining, err := s.Engine.SizeRemaining(rt.Ctx)
		if err != nil {
			return err
		}
		n, err := s.Engine.Len(rt.Ctx)
		if err != nil {
			return err
		}
		blobs, err := s.Engine.Slots(rt.Ctx)
		if err != nil {
			return err
		}
		occupied, err := s.Medium.CountOccupied(rt.Ctx)
		if err != nil {
			return err
		}

		sc := rt.Config.Storage
		report := capacityReport{
			Location:       sc.Location,
			BytesRemaining: remaining,
			Entries:        n,
			OwnSlots:       len(blobs),
			OccupiedSlots:  occupied,
			MaxSlots:       sc.MaxSlots,
			MaxByteSize:    sc.MaxByteSize,
		}
		if !tableOutput(rt) {
			return render(c, rt, report)
		}

		if err := render(c, rt, report); err != nil {
			return err
		}
		fmt.Fprintln(out(c))
		total := sc.MaxSlots * sc.MaxByteSize
		bars := []output.UsageBar{
			{Label: "slots", Used: occupied, Total: sc.MaxSlots, Unit: "slots"},
			{Label: "bytes", Used: max(total-remaining, 0), Total: total, Unit: "bytes"},
		}
		for _, b := range bars {
			if err := b.Render(out(c)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SlotsCommand returns the slots command.
func SlotsCommand() *cli.Command {
	return &cli.Command{
		Name:   "slots",
		Usage:  "Show the raw slot blobs of the location",
		Action: inspectSlots,
	}
}

type slotRow struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
	Size  int    `json:"size" yaml:"size"`
	Blob  string `json:"blob" yaml:"blob"`
}

func inspectSlots(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	sc := rt.Config.Storage
	est := bytesize.New(sc.WideCharCost)

	return withStore(rt, func(s *Store) error {
		blobs, err := s.Engine.Slots(rt.Ctx)
		if err != nil {
			return err
		}
		rows := make([]slotRow, len(blobs))
		for i, b := range blobs {
			rows[i] = slotRow{
				Index: i,
				Name:  slot.Name(sc.Location, i),
				Size:  est.Estimate(b),
				Blob:  b,
			}
		}
		return render(c, rt, rows)
	})
}

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show storage metrics after one sync",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Include Go runtime and process metrics",
			},
		},
		Action: inspectStats,
	}
}

type statRow struct {
	Name   string  `json:"name" yaml:"name"`
	Labels string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Value  float64 `json:"value" yaml:"value"`
}

func inspectStats(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		// Len forces the initial sync so the storage gauges are populated.
		if _, err := s.Engine.Len(rt.Ctx); err != nil {
			return err
		}
		families, err := rt.Metrics.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		return render(c, rt, statRows(families, c.Bool("all")))
	})
}

func statRows(families []*dto.MetricFamily, all bool) []statRow {
	var rows []statRow
	for _, mf := range families {
		if !all && !strings.HasPrefix(mf.GetName(), "slotkv_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			value, ok := metricValue(mf.GetType(), m)
			if !ok {
				continue
			}
			rows = append(rows, statRow{
				Name:   mf.GetName(),
				Labels: formatLabels(m.GetLabel()),
				Value:  value,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Labels < rows[j].Labels
	})
	return rows
}

func metricValue(t dto.MetricType, m *dto.Metric) (float64, bool) {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue(), true
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue(), true
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue(), true
	case dto.MetricType_SUMMARY:
		return m.GetSummary().GetSampleSum(), true
	case dto.MetricType_HISTOGRAM:
		return m.GetHistogram().GetSampleSum(), true
	default:
		return 0, false
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}
