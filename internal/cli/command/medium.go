package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yndnr/slotkv/internal/cli/config"
	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/internal/storage"
	"github.com/yndnr/slotkv/internal/storage/slot"
	"github.com/yndnr/slotkv/internal/storage/slot/badgerslot"
	"github.com/yndnr/slotkv/internal/storage/slot/memslot"
	"github.com/yndnr/slotkv/internal/storage/slot/sqliteslot"
	"github.com/yndnr/slotkv/internal/telemetry/logger"
	"github.com/yndnr/slotkv/internal/telemetry/metric"
	"github.com/yndnr/slotkv/pkg/bytesize"
)

// Store is an engine bound to an open medium.
type Store struct {
	Engine *storage.Engine
	Medium slot.Medium
	close  func() error
}

// Close releases the medium.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// openMedium opens the medium selected by cfg.
func openMedium(rt *Runtime) (slot.Medium, func() error, error) {
	sc := rt.Config.Storage
	log := logger.L(rt.Ctx)

	switch sc.Backend {
	case config.BackendMemory:
		return memslot.New(), func() error { return nil }, nil

	case config.BackendBadger:
		m, err := badgerslot.Open(badgerslot.Config{
			Dir:         sc.Path,
			GCInterval:  sc.Badger.GCInterval,
			GCThreshold: sc.Badger.GCThreshold,
			SyncWrites:  true,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		if err := m.RegisterMetrics(rt.Metrics.Registerer()); err != nil {
			_ = m.Close()
			return nil, nil, err
		}
		return m, m.Close, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.Path), 0700); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		m, err := sqliteslot.Open(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", sc.Backend)
	}
}

// openStore opens the configured medium and an engine over it.
func openStore(rt *Runtime) (*Store, error) {
	medium, closeFn, err := openMedium(rt)
	if err != nil {
		return nil, err
	}

	sc := rt.Config.Storage
	if err := rt.Metrics.Registerer().Register(metric.NewCollector(medium, sc.MaxSlots)); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("register medium collector: %w", err)
	}

	engine, err := storage.New(rt.Ctx, medium, storage.Config{
		Location:    domain.Location(sc.Location),
		MaxByteSize: sc.MaxByteSize,
		MaxSlots:    sc.MaxSlots,
		Estimator:   bytesize.New(sc.WideCharCost),
		Metrics:     rt.Metrics,
		Logger:      logger.L(rt.Ctx),
	})
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	logger.L(rt.Ctx).Debug("store opened",
		"backend", sc.Backend,
		"path", sc.Path,
		"location", sc.Location,
		"engine_id", engine.ID())

	return &Store{Engine: engine, Medium: medium, close: closeFn}, nil
}

// withStore runs fn against a freshly opened store and closes it afterwards.
func withStore(rt *Runtime, fn func(*Store) error) (err error) {
	s, err := openStore(rt)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
