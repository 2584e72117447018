package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Compile-time interface checks.
var (
	_ Store  = (*SQLiteStore)(nil)
	_ Purger = (*SQLiteStore)(nil)
)

// SQLiteStore is a durable local Store backed by SQLite. It trades the
// MemoryStore's restart amnesia for disk persistence, which keeps rate
// windows and issued tokens alive across deploys of a single-instance site.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path and
// initialises the schema. Use ":memory:" for an in-memory SQLite database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ephemeral/store: open sqlite: %w", err)
	}

	// A single connection serialises transactions and keeps ":memory:"
	// databases from being opened once per pooled connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ephemeral_entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("ephemeral/store: create table: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Get returns the value stored under key, applying lazy expiry.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM ephemeral_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ephemeral/store: sqlite get: %w", err)
	}

	if s.now().UnixMilli() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// SetWithTTL stores value under key, overwriting any existing entry.
func (s *SQLiteStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl).UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO ephemeral_entries (key, value, expires_at) VALUES (?, ?, ?)`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("ephemeral/store: sqlite set: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Absent keys are a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ephemeral_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("ephemeral/store: sqlite delete: %w", err)
	}
	return nil
}

// Increment atomically adds amount to the counter stored under key inside a
// transaction. An absent or expired key starts a fresh counter with expiry
// ttlIfAbsent from now; a live key keeps its existing expiry.
func (s *SQLiteStore) Increment(ctx context.Context, key string, amount int64, ttlIfAbsent time.Duration) (int64, time.Time, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ephemeral/store: sqlite increment: %w", err)
	}
	defer tx.Rollback()

	now := s.now()

	var value []byte
	var expiresAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT value, expires_at FROM ephemeral_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)

	if err == sql.ErrNoRows || (err == nil && now.UnixMilli() >= expiresAt) {
		exp := now.Add(ttlIfAbsent)
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO ephemeral_entries (key, value, expires_at) VALUES (?, ?, ?)`,
			key, []byte(strconv.FormatInt(amount, 10)), exp.UnixMilli(),
		)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("ephemeral/store: sqlite increment: %w", err)
		}
		return amount, exp, tx.Commit()
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ephemeral/store: sqlite increment: %w", err)
	}

	current, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ephemeral/store: increment %q: non-numeric value: %w", key, err)
	}
	current += amount

	_, err = tx.ExecContext(ctx,
		`UPDATE ephemeral_entries SET value = ? WHERE key = ?`,
		[]byte(strconv.FormatInt(current, 10)), key,
	)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ephemeral/store: sqlite increment: %w", err)
	}
	return current, time.UnixMilli(expiresAt), tx.Commit()
}

// GetDelete atomically returns and removes the value stored under key
// inside a transaction.
func (s *SQLiteStore) GetDelete(ctx context.Context, key string) ([]byte, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("ephemeral/store: sqlite getdel: %w", err)
	}
	defer tx.Rollback()

	var value []byte
	var expiresAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT value, expires_at FROM ephemeral_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ephemeral/store: sqlite getdel: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ephemeral_entries WHERE key = ?`, key); err != nil {
		return nil, false, fmt.Errorf("ephemeral/store: sqlite getdel: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("ephemeral/store: sqlite getdel: %w", err)
	}

	if s.now().UnixMilli() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// PurgeExpired removes entries whose expiry has passed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ephemeral_entries WHERE expires_at <= ?`, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("ephemeral/store: sqlite purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ephemeral/store: sqlite purge: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
