package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BradenHooton/lockbox/internal/database"
)

// SQLStore persists entries in the kv_entries table of a SQLite or Postgres database
type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := s.db.Rebind(`SELECT value FROM kv_entries WHERE key = ?`)

	var value string
	err := s.db.SQL.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, database.MapError(err)
	}

	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query := s.db.Rebind(`
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`)

	if _, err := s.db.SQL.ExecContext(ctx, query, key, value); err != nil {
		return database.MapError(fmt.Errorf("set %q: %w", key, err))
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM kv_entries WHERE key = ?`)

	if _, err := s.db.SQL.ExecContext(ctx, query, key); err != nil {
		return database.MapError(fmt.Errorf("remove %q: %w", key, err))
	}
	return nil
}

// RemoveMany deletes all keys in one transaction
func (s *SQLStore) RemoveMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	query := s.db.Rebind(`DELETE FROM kv_entries WHERE key = ?`)
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, query, key); err != nil {
				return fmt.Errorf("remove %q: %w", key, err)
			}
		}
		return nil
	})
	return database.MapError(err)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return database.MapError(s.db.HealthCheck(ctx))
}
