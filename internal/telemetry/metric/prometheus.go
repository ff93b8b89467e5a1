package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "slotkv"

// Write results recorded by RecordWrite.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Storage engine metrics
	Resyncs        *prometheus.CounterVec
	Writes         *prometheus.CounterVec
	SlotsUsed      *prometheus.GaugeVec
	BytesRemaining *prometheus.GaugeVec
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// NewRegistry creates a registry with the engine metrics plus Go runtime and
// process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		Resyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "resyncs_total",
			Help:      "Mirror rebuilds from slot contents",
		}, []string{"location"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "writes_total",
			Help:      "Engine write operations by result",
		}, []string{"location", "result"}),
		SlotsUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "slots_used",
			Help:      "Slots held by a location",
		}, []string{"location"}),
		BytesRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "bytes_remaining",
			Help:      "Estimated bytes still writable from a location",
		}, []string{"location"}),
	}
	reg.MustRegister(r.Resyncs, r.Writes, r.SlotsUsed, r.BytesRemaining)
	return r
}

// Registerer exposes the underlying registry for additional collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gather collects the current metric families.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// IncResync counts a mirror rebuild.
func (r *Registry) IncResync(location string) {
	if r == nil {
		return
	}
	r.Resyncs.WithLabelValues(location).Inc()
}

// RecordWrite counts a write with one of the Result* values.
func (r *Registry) RecordWrite(location, result string) {
	if r == nil {
		return
	}
	r.Writes.WithLabelValues(location, result).Inc()
}

// SetSlotsUsed records the slot count of a location.
func (r *Registry) SetSlotsUsed(location string, n int) {
	if r == nil {
		return
	}
	r.SlotsUsed.WithLabelValues(location).Set(float64(n))
}

// SetBytesRemaining records the remaining byte estimate of a location.
func (r *Registry) SetBytesRemaining(location string, n int) {
	if r == nil {
		return
	}
	r.BytesRemaining.WithLabelValues(location).Set(float64(n))
}
