package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/internal/storage/codec"
	"github.com/yndnr/slotkv/internal/storage/slot"
	"github.com/yndnr/slotkv/internal/storage/syncmon"
	"github.com/yndnr/slotkv/internal/telemetry/metric"
	"github.com/yndnr/slotkv/pkg/bytesize"
)

// Default configuration values.
const (
	DefaultMaxByteSize = 4000
	DefaultMaxSlots    = 20
)

// Config configures the storage engine.
type Config struct {
	// Location is the slot partition this engine owns.
	Location domain.Location

	// MaxByteSize is the estimated byte budget of one slot.
	MaxByteSize int

	// MaxSlots is the slot limit across all locations of the medium.
	MaxSlots int

	// Estimator prices strings. Default: bytesize.New(bytesize.DefaultWideCost).
	Estimator bytesize.Estimator

	// Metrics is optional.
	Metrics *metric.Registry

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration for location.
func DefaultConfig(location domain.Location) Config {
	return Config{
		Location:    location,
		MaxByteSize: DefaultMaxByteSize,
		MaxSlots:    DefaultMaxSlots,
		Estimator:   bytesize.New(bytesize.DefaultWideCost),
		Logger:      slog.Default(),
	}
}

type state int

const (
	stateUninitialized state = iota
	stateSynced
	stateStale
)

func (s state) String() string {
	switch s {
	case stateSynced:
		return "synced"
	case stateStale:
		return "stale"
	default:
		return "uninitialized"
	}
}

// Engine is a key/value facade over one location of a slot medium.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	location string
	id       ulid.ULID

	medium  slot.Medium
	monitor *syncmon.Monitor
	packer  codec.Packer

	state       state
	mirror      *codec.Mirror
	blobs       []string // slot contents of this location, in order
	globalSlots int      // occupied slots across all locations at last sync

	logger *slog.Logger
}

// New creates an engine over medium. It fails with a fatal
// domain.ErrMediumUnavailable when the medium cannot be used. The mirror is
// loaded lazily by the first call.
func New(ctx context.Context, medium slot.Medium, cfg Config) (*Engine, error) {
	if medium == nil {
		return nil, domain.ErrMediumUnavailable.WithDetails("no medium")
	}
	if err := cfg.Location.Validate(); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if cfg.MaxByteSize <= 0 {
		return nil, fmt.Errorf("storage: max_byte_size must be positive, got %d", cfg.MaxByteSize)
	}
	if cfg.MaxSlots <= 0 {
		return nil, fmt.Errorf("storage: max_slots must be positive, got %d", cfg.MaxSlots)
	}
	if cfg.Estimator == nil {
		cfg.Estimator = bytesize.New(bytesize.DefaultWideCost)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if err := medium.Ping(ctx); err != nil {
		if domain.IsDomainError(err, domain.ErrMediumUnavailable.Code) {
			return nil, err
		}
		return nil, domain.ErrMediumUnavailable.WithCause(err)
	}

	id := ulid.Make()
	e := &Engine{
		cfg:      cfg,
		location: string(cfg.Location),
		id:       id,
		medium:   medium,
		monitor:  syncmon.New(medium),
		packer:   codec.Packer{Estimator: cfg.Estimator, MaxBytes: cfg.MaxByteSize},
		mirror:   codec.NewMirror(),
		logger: cfg.Logger.With(
			"component", "storage",
			"location", string(cfg.Location),
			"engine_id", id.String(),
		),
	}

	e.logger.Debug("storage engine created",
		"max_byte_size", cfg.MaxByteSize,
		"max_slots", cfg.MaxSlots)

	return e, nil
}

// ID returns the engine instance ID.
func (e *Engine) ID() string {
	return e.id.String()
}

// Location returns the location this engine owns.
func (e *Engine) Location() domain.Location {
	return e.cfg.Location
}

// Get returns the value stored under key.
func (e *Engine) Get(ctx context.Context, key string) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return "", false, err
	}
	v, ok := e.mirror.Get(key)
	return v, ok, nil
}

// HasKey reports whether key is present.
func (e *Engine) HasKey(ctx context.Context, key string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return false, err
	}
	return e.mirror.Has(key), nil
}

// Key returns the key at index in insertion order.
func (e *Engine) Key(ctx context.Context, index int) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return "", false, err
	}
	k, ok := e.mirror.Key(index)
	return k, ok, nil
}

// Len returns the number of keys.
func (e *Engine) Len(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return 0, err
	}
	return e.mirror.Len(), nil
}

// Keys returns the ordered key list.
func (e *Engine) Keys(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return nil, err
	}
	return e.mirror.Keys(), nil
}

// Entries returns all entries in key order.
func (e *Engine) Entries(ctx context.Context) ([]domain.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return nil, err
	}
	return e.mirror.Entries(), nil
}

// Slots returns the raw slot blobs of the location.
func (e *Engine) Slots(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return nil, err
	}
	out := make([]string, len(e.blobs))
	copy(out, e.blobs)
	return out, nil
}

// SizeRemaining returns an upper bound of the bytes still writable: free
// slots times MaxByteSize plus the room left in the last slot. Values that
// continue into a new slot repeat their key, so the real room can be less.
func (e *Engine) SizeRemaining(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return 0, err
	}
	return e.sizeRemaining(), nil
}

// Set stores value under key. It returns false without error when the
// entry set would no longer fit the medium; the stored state is then
// unchanged. Keys must be non-empty and free of '&' and '='; values must
// be free of '&'.
func (e *Engine) Set(ctx context.Context, key, value string) (bool, error) {
	if err := domain.ValidateKey(key); err != nil {
		return false, err
	}
	if err := domain.ValidateValue(value); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return false, err
	}

	cost := codec.RecordCost(e.cfg.Estimator, key, value)
	if old, ok := e.mirror.Get(key); ok {
		cost -= codec.RecordCost(e.cfg.Estimator, key, old)
	}
	if remaining := e.sizeRemaining(); cost > remaining {
		e.logger.Debug("set rejected by size precheck", "key", key, "cost", cost, "remaining", remaining)
		e.cfg.Metrics.RecordWrite(e.location, metric.ResultRejected)
		return false, nil
	}

	next := e.mirror.Clone()
	next.Set(key, value)

	err := e.commit(ctx, next)
	switch {
	case err == nil:
		return true, nil
	case isCapacityError(err):
		e.logger.Debug("set rejected", "key", key, "reason", err)
		return false, nil
	default:
		return false, err
	}
}

// Remove deletes key. Removing an absent key is a no-op.
func (e *Engine) Remove(ctx context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return err
	}
	if !e.mirror.Has(key) {
		return nil
	}

	next := e.mirror.Clone()
	next.Delete(key)
	return e.commit(ctx, next)
}

// Clear removes every entry of the location.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sync(ctx); err != nil {
		return err
	}
	return e.commit(ctx, codec.NewMirror())
}

// sync brings the mirror up to date with the medium.
func (e *Engine) sync(ctx context.Context) error {
	if e.state == stateSynced {
		changed, err := e.monitor.Changed(ctx)
		if err != nil {
			e.state = stateStale
			return fmt.Errorf("storage: check medium: %w", err)
		}
		if !changed {
			return nil
		}
		e.logger.Debug("external change detected")
	}
	return e.resync(ctx)
}

// resync rebuilds the mirror from slot contents. The fingerprint is taken
// first so a write racing the load shows up as a change on the next call.
func (e *Engine) resync(ctx context.Context) error {
	if err := e.monitor.Observe(ctx); err != nil {
		e.state = stateStale
		return fmt.Errorf("storage: resync: %w", err)
	}
	blobs, err := slot.LoadAll(ctx, e.medium, e.location)
	if err != nil {
		e.state = stateStale
		return fmt.Errorf("storage: resync: %w", err)
	}
	global, err := e.medium.CountOccupied(ctx)
	if err != nil {
		e.state = stateStale
		return fmt.Errorf("storage: resync: count slots: %w", err)
	}

	prev := e.state
	e.mirror = codec.Decode(blobs)
	e.blobs = blobs
	e.globalSlots = global
	e.state = stateSynced

	e.cfg.Metrics.IncResync(e.location)
	e.updateGauges()
	e.logger.Debug("mirror rebuilt",
		"from_state", prev.String(),
		"slots", len(blobs),
		"global_slots", global,
		"keys", e.mirror.Len())
	return nil
}

// commit packs next, rewrites the location and adopts next as the mirror.
// Capacity failures leave medium and mirror untouched. A failed rewrite
// leaves the previous slots in place and marks the mirror stale.
func (e *Engine) commit(ctx context.Context, next *codec.Mirror) error {
	blobs, err := e.packer.Pack(next.Entries())
	if err != nil {
		if domain.IsFatal(err) {
			e.logger.Error("packing failed", "error", err)
			e.cfg.Metrics.RecordWrite(e.location, metric.ResultError)
			return fmt.Errorf("storage: pack: %w", err)
		}
		e.cfg.Metrics.RecordWrite(e.location, metric.ResultRejected)
		return err
	}

	others := e.globalSlots - len(e.blobs)
	if others < 0 {
		others = 0
	}
	if others+len(blobs) > e.cfg.MaxSlots {
		e.cfg.Metrics.RecordWrite(e.location, metric.ResultRejected)
		return domain.ErrCapacityExhausted.WithDetailsf("need %d slots, %d held by other locations, limit %d",
			len(blobs), others, e.cfg.MaxSlots)
	}

	if err := slot.Rewrite(ctx, e.medium, e.location, blobs, e.blobs); err != nil {
		e.state = stateStale
		e.cfg.Metrics.RecordWrite(e.location, metric.ResultError)
		e.logger.Warn("slot rewrite failed, mirror marked stale", "error", err)
		return fmt.Errorf("storage: rewrite: %w", err)
	}

	e.mirror = next
	e.blobs = blobs
	e.globalSlots = others + len(blobs)
	e.cfg.Metrics.RecordWrite(e.location, metric.ResultOK)
	e.updateGauges()

	if err := e.monitor.Observe(ctx); err != nil {
		// The write landed; re-read it next time instead of failing it.
		e.state = stateStale
		e.logger.Warn("fingerprint after write failed", "error", err)
	}
	return nil
}

func (e *Engine) sizeRemaining() int {
	free := (e.cfg.MaxSlots - e.globalSlots) * e.cfg.MaxByteSize
	if n := len(e.blobs); n > 0 {
		free += e.cfg.MaxByteSize - e.cfg.Estimator.Estimate(e.blobs[n-1])
	}
	if free < 0 {
		return 0
	}
	return free
}

func (e *Engine) updateGauges() {
	if e.cfg.Metrics == nil {
		return
	}
	e.cfg.Metrics.SetSlotsUsed(e.location, len(e.blobs))
	e.cfg.Metrics.SetBytesRemaining(e.location, e.sizeRemaining())
}

func isCapacityError(err error) bool {
	return errors.Is(err, domain.ErrCapacityExhausted) || errors.Is(err, domain.ErrRecordTooLarge)
}
