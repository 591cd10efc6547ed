package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BradenHooton/lockbox/internal/models"
)

// MapError converts driver errors into model sentinels.
// Missing rows become ErrNotFound; everything else is storage unavailability.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}

	if errors.Is(err, models.ErrStorageUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
}

// WithTransaction runs fn inside a transaction, rolling back on error or panic
func (db *DB) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}
