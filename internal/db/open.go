package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/BrandonDHaskell/timekeep/internal/logging"
)

const pingTimeout = 3 * time.Second

type Config struct {
	Path string // e.g. "./data/timekeep.db"
	Env  string // "dev" | "prod"
}

// Open opens the local SQLite store and applies migrations.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		cfg.Path = "./data/timekeep.db"
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	// Per-connection PRAGMAs: foreign keys, WAL, NORMAL sync, busy timeout.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		cfg.Path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// Single writer connection; all writes go through Worker.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.Info().Str("component", "db").Str("path", cfg.Path).Str("env", cfg.Env).Msg("local store opened")
	return db, nil
}

// VendorConfig selects the vendor attendance database.
type VendorConfig struct {
	Driver string // "sqlite" | "pgx"
	DSN    string
}

// OpenVendor opens the vendor database read path. For the sqlite driver a
// bare file path is accepted and expanded to a DSN with a busy timeout.
func OpenVendor(ctx context.Context, cfg VendorConfig) (*sql.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("vendor dsn is empty")
	}

	switch driver {
	case "sqlite":
		if !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("mkdir vendor dir: %w", err)
			}
			dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dsn)
		}
	case "pgx":
	default:
		return nil, fmt.Errorf("unsupported vendor driver %q", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open vendor: %w", err)
	}

	if driver == "sqlite" {
		db.SetMaxOpenConns(4)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("vendor %w", err)
	}

	logging.Info().Str("component", "db").Str("driver", driver).Msg("vendor database opened")
	return db, nil
}

func ping(ctx context.Context, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
