package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/lockbox/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB wraps a database/sql handle together with the SQL dialect it speaks
type DB struct {
	SQL     *sql.DB
	dialect goose.Dialect
	logger  *slog.Logger
}

// OpenSQLite opens (or creates) a SQLite database file and applies migrations.
// path may be ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}

	// SQLite allows a single writer; a single connection also keeps :memory: databases shared
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("unable to configure sqlite: %w", err)
	}

	db := &DB{SQL: sqlDB, dialect: goose.DialectSQLite3, logger: logger}
	if err := db.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("sqlite store opened", slog.String("path", path))
	return db, nil
}

// OpenPostgres connects to Postgres through the pgx stdlib driver and applies migrations
func OpenPostgres(ctx context.Context, cfg *config.PostgresConfig, logger *slog.Logger) (*DB, error) {
	return OpenPostgresDSN(ctx, cfg.DSN(), cfg.MaxOpenConns, cfg.MaxConnLifetime, logger)
}

// OpenPostgresDSN is OpenPostgres for an already assembled connection string
func OpenPostgresDSN(ctx context.Context, dsn string, maxConns int, lifetime time.Duration, logger *slog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open postgres database: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetConnMaxLifetime(lifetime)

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	db := &DB{SQL: sqlDB, dialect: goose.DialectPostgres, logger: logger}
	if err := db.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("postgres store opened", slog.Int("max_conns", maxConns))
	return db, nil
}

// Migrate applies the embedded goose migrations
func (db *DB) Migrate(ctx context.Context) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("unable to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(db.dialect, db.SQL, migrations)
	if err != nil {
		return fmt.Errorf("unable to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	for _, r := range results {
		db.logger.Info("migration applied",
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}

// Rebind rewrites '?' placeholders into the dialect's positional form
func (db *DB) Rebind(query string) string {
	if db.dialect != goose.DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) Close() {
	db.logger.Info("closing database")
	db.SQL.Close()
}

func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.SQL.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
