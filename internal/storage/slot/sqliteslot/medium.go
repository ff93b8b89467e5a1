// Package sqliteslot stores slots in a SQLite table, one row per slot.
//
// The layout mirrors a browser cookie database: a single table keyed by
// (location, idx). Several processes may open the same file; writes from
// one are seen by the others through the fingerprint.
package sqliteslot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/yndnr/slotkv/internal/core/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS slots (
	location TEXT NOT NULL,
	idx      INTEGER NOT NULL,
	blob     TEXT NOT NULL,
	PRIMARY KEY (location, idx)
)`

// Medium is a slot.Medium backed by SQLite.
type Medium struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the slot database at path.
func Open(path string) (*Medium, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqliteslot: path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, domain.ErrMediumUnavailable.WithCause(fmt.Errorf("open sqlite db: %w", err))
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, domain.ErrMediumUnavailable.WithCause(fmt.Errorf("ping sqlite db: %w", err))
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, domain.ErrMediumUnavailable.WithCause(fmt.Errorf("create schema: %w", err))
	}
	return &Medium{sqlDB: sqlDB}, nil
}

// Close releases the underlying connection pool.
func (m *Medium) Close() error {
	if m == nil || m.sqlDB == nil {
		return nil
	}
	return m.sqlDB.Close()
}

// Ping implements slot.Medium.
func (m *Medium) Ping(ctx context.Context) error {
	if m == nil || m.sqlDB == nil {
		return domain.ErrMediumUnavailable.WithDetails("sqlite medium not configured")
	}
	if err := m.sqlDB.PingContext(ctx); err != nil {
		return domain.ErrMediumUnavailable.WithCause(err)
	}
	return nil
}

// Store implements slot.Medium.
func (m *Medium) Store(ctx context.Context, location string, index int, blob string) error {
	_, err := m.sqlDB.ExecContext(ctx,
		`INSERT INTO slots (location, idx, blob) VALUES (?, ?, ?)
		 ON CONFLICT(location, idx) DO UPDATE SET blob = excluded.blob`,
		location, index, blob,
	)
	if err != nil {
		return ioError("store slot", err)
	}
	return nil
}

// Load implements slot.Medium.
func (m *Medium) Load(ctx context.Context, location string, index int) (string, bool, error) {
	var blob string
	err := m.sqlDB.QueryRowContext(ctx,
		`SELECT blob FROM slots WHERE location = ? AND idx = ?`,
		location, index,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ioError("load slot", err)
	}
	return blob, true, nil
}

// Remove implements slot.Medium.
func (m *Medium) Remove(ctx context.Context, location string, index int) error {
	_, err := m.sqlDB.ExecContext(ctx,
		`DELETE FROM slots WHERE location = ? AND idx = ?`,
		location, index,
	)
	if err != nil {
		return ioError("remove slot", err)
	}
	return nil
}

// Rewrite implements slot.Rewriter in a single transaction.
func (m *Medium) Rewrite(ctx context.Context, location string, blobs []string) (err error) {
	tx, err := m.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return ioError("begin rewrite", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM slots WHERE location = ?`, location); err != nil {
		return ioError("clear location", err)
	}
	for i, blob := range blobs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO slots (location, idx, blob) VALUES (?, ?, ?)`,
			location, i, blob,
		); err != nil {
			return ioError("insert slot", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return ioError("commit rewrite", err)
	}
	return nil
}

// CountOccupied implements slot.Medium.
func (m *Medium) CountOccupied(ctx context.Context) (int, error) {
	var n int
	if err := m.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&n); err != nil {
		return 0, ioError("count slots", err)
	}
	return n, nil
}

// Fingerprint implements slot.Medium. It serializes every row in key order.
func (m *Medium) Fingerprint(ctx context.Context) (string, error) {
	rows, err := m.sqlDB.QueryContext(ctx, `SELECT location, idx, blob FROM slots ORDER BY location, idx`)
	if err != nil {
		return "", ioError("fingerprint", err)
	}
	defer rows.Close()

	var sb strings.Builder
	for rows.Next() {
		var (
			location string
			idx      int
			blob     string
		)
		if err := rows.Scan(&location, &idx, &blob); err != nil {
			return "", ioError("fingerprint scan", err)
		}
		fmt.Fprintf(&sb, "%s\x00%d\x00%s\n", location, idx, blob)
	}
	if err := rows.Err(); err != nil {
		return "", ioError("fingerprint rows", err)
	}
	return sb.String(), nil
}

func ioError(op string, err error) error {
	return domain.ErrMediumIO.WithCause(fmt.Errorf("%s: %w", op, err))
}
