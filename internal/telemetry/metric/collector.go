package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OccupancySource reports how many slots are in use. slot.Medium satisfies it.
type OccupancySource interface {
	CountOccupied(ctx context.Context) (int, error)
}

// Collector reads slot occupancy from a medium at scrape time.
type Collector struct {
	src      OccupancySource
	capacity int
	timeout  time.Duration

	occupied *prometheus.Desc
	total    *prometheus.Desc
	up       *prometheus.Desc
}

// NewCollector creates a collector for src. capacity is the configured
// slot limit and is exported alongside the occupancy.
func NewCollector(src OccupancySource, capacity int) *Collector {
	return &Collector{
		src:      src,
		capacity: capacity,
		timeout:  2 * time.Second,
		occupied: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "medium", "slots_occupied"),
			"Occupied slots across all locations", nil, nil),
		total: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "medium", "slots_capacity"),
			"Configured slot limit", nil, nil),
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "medium", "up"),
			"Whether the last occupancy read succeeded", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.occupied
	ch <- c.total
	ch <- c.up
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(c.capacity))

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.src.CountOccupied(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.occupied, prometheus.GaugeValue, float64(n))
}
