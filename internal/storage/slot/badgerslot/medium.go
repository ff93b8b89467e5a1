// Package badgerslot stores slots in a Badger database.
//
// Keys are "slot/<location>/<index>" with a zero-padded index so that a
// prefix scan returns a location's slots in order. Location rewrites run in
// one Badger transaction.
package badgerslot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/slotkv/internal/core/domain"
)

const keyPrefix = "slot/"

// Medium is a slot.Medium backed by Badger.
type Medium struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger
	closed atomic.Bool

	lastGCTime atomic.Int64 // Unix milliseconds
	gcRuns     atomic.Uint64

	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsGCRuns       prometheus.CounterFunc

	stopCh chan struct{}
	doneCh chan struct{}
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config, logger *slog.Logger) (*Medium, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badgerslot: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.ErrMediumUnavailable.WithCause(fmt.Errorf("badger open %s: %w", cfg.Dir, err))
	}

	m := &Medium{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		go m.gcLoop()
	} else {
		close(m.doneCh)
	}

	logger.Debug("badger slot medium opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"gc_interval", cfg.GCInterval)

	return m, nil
}

func slotKey(location string, index int) []byte {
	return []byte(fmt.Sprintf("%s%s/%08d", keyPrefix, location, index))
}

func locationPrefix(location string) []byte {
	return []byte(keyPrefix + location + "/")
}

// Ping implements slot.Medium.
func (m *Medium) Ping(_ context.Context) error {
	if m.closed.Load() || m.db.IsClosed() {
		return domain.ErrMediumUnavailable.WithDetails("badger medium closed")
	}
	return nil
}

// Store implements slot.Medium.
func (m *Medium) Store(ctx context.Context, location string, index int, blob string) error {
	if err := m.Ping(ctx); err != nil {
		return err
	}
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(slotKey(location, index), []byte(blob))
	})
	if err != nil {
		return domain.ErrMediumIO.WithCause(err)
	}
	return nil
}

// Load implements slot.Medium.
func (m *Medium) Load(ctx context.Context, location string, index int) (string, bool, error) {
	if err := m.Ping(ctx); err != nil {
		return "", false, err
	}

	var value []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey(location, index))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.ErrMediumIO.WithCause(err)
	}
	return string(value), true, nil
}

// Remove implements slot.Medium.
func (m *Medium) Remove(ctx context.Context, location string, index int) error {
	if err := m.Ping(ctx); err != nil {
		return err
	}
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(slotKey(location, index))
	})
	if err != nil {
		return domain.ErrMediumIO.WithCause(err)
	}
	return nil
}

// Rewrite implements slot.Rewriter.
func (m *Medium) Rewrite(ctx context.Context, location string, blobs []string) error {
	if err := m.Ping(ctx); err != nil {
		return err
	}
	err := m.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = locationPrefix(location)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for i, blob := range blobs {
			if err := txn.Set(slotKey(location, i), []byte(blob)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.ErrMediumIO.WithCause(fmt.Errorf("rewrite %s: %w", location, err))
	}
	return nil
}

// CountOccupied implements slot.Medium.
func (m *Medium) CountOccupied(ctx context.Context) (int, error) {
	if err := m.Ping(ctx); err != nil {
		return 0, err
	}
	n := 0
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, domain.ErrMediumIO.WithCause(err)
	}
	return n, nil
}

// Fingerprint implements slot.Medium. It concatenates every slot key and
// blob in key order.
func (m *Medium) Fingerprint(ctx context.Context) (string, error) {
	if err := m.Ping(ctx); err != nil {
		return "", err
	}
	var sb strings.Builder
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			sb.Write(item.Key())
			sb.WriteByte('\x00')
			if err := item.Value(func(v []byte) error {
				sb.Write(v)
				return nil
			}); err != nil {
				return err
			}
			sb.WriteByte('\n')
		}
		return nil
	})
	if err != nil {
		return "", domain.ErrMediumIO.WithCause(err)
	}
	return sb.String(), nil
}

// GC runs value log garbage collection until Badger reports nothing left
// to rewrite.
func (m *Medium) GC() error {
	start := time.Now()
	runs := 0
	for {
		err := m.db.RunValueLogGC(m.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return fmt.Errorf("badgerslot: gc: %w", err)
		}
		runs++
	}

	m.lastGCTime.Store(time.Now().UnixMilli())
	m.gcRuns.Add(uint64(runs))
	m.logger.Debug("badger gc completed", "rewrites", runs, "elapsed", time.Since(start))
	return nil
}

// Close stops the GC loop and closes the database.
func (m *Medium) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(m.stopCh)
	<-m.doneCh

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("badgerslot: close db: %w", err)
	}
	return nil
}

// RegisterMetrics registers size gauges and a GC counter with reg.
// Gauges are refreshed on every scrape.
func (m *Medium) RegisterMetrics(reg prometheus.Registerer) error {
	m.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "slotkv",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	m.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "slotkv",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	m.metricsGCRuns = prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "slotkv",
		Subsystem: "badger",
		Name:      "gc_rewrites_total",
		Help:      "Value log files rewritten by Badger garbage collection",
	}, func() float64 {
		return float64(m.gcRuns.Load())
	})

	for _, c := range []prometheus.Collector{m.metricsLSMSize, m.metricsValueLogSize, m.metricsGCRuns} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("badgerslot: register metrics: %w", err)
		}
	}
	m.refreshSizeMetrics()
	return nil
}

func (m *Medium) refreshSizeMetrics() {
	if m.metricsLSMSize == nil || m.closed.Load() {
		return
	}
	lsm, vlog := m.db.Size()
	m.metricsLSMSize.Set(float64(lsm))
	m.metricsValueLogSize.Set(float64(vlog))
}

func (m *Medium) gcLoop() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.GC(); err != nil {
				m.logger.Error("auto gc failed", "error", err)
			}
			m.refreshSizeMetrics()
		case <-m.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
