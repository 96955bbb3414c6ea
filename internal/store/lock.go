package store

import (
	"context"
	"database/sql"
	"errors"
)

// importLockKey is the advisory lock key guarding the import pipeline.
// Staging and production are single-writer resources: two imports racing on
// clear/load/swap would corrupt each other.
const importLockKey = 0x68697031 // "hip1"

// ErrImportInProgress is returned when another import holds the lock.
var ErrImportInProgress = errors.New("an import is already in progress")

// ImportLock provides system-wide mutual exclusion for the import pipeline
// via a Postgres advisory lock, so the guarantee holds across processes, not
// just within one.
type ImportLock struct {
	db *sql.DB
}

func NewImportLock(db *sql.DB) *ImportLock {
	return &ImportLock{db: db}
}

// Acquire takes the advisory lock without waiting. It returns a release
// function on success and ErrImportInProgress when the lock is held
// elsewhere. The lock is tied to a dedicated connection so it survives for
// exactly as long as the import does.
func (l *ImportLock) Acquire(ctx context.Context) (func(), error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, importLockKey).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if !acquired {
		_ = conn.Close()
		return nil, ErrImportInProgress
	}

	release := func() {
		// Unlock on a background context: release must work even when the
		// request context is already cancelled.
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, importLockKey)
		_ = conn.Close()
	}
	return release, nil
}
