package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
)

// PoolOptions tunes the connection pool. Zero values fall back to the
// defaults used in production (25/25/5m).
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 25
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 25
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = 5 * time.Minute
	}
	return o
}

// NormalizeDSN forces the driver flags the repositories depend on:
// parseTime for DATETIME scanning and clientFoundRows so an UPDATE that
// matches a row reports it as affected even when nothing changed.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// OpenDBWithDSN creates and configures a MySQL connection pool for the
// given DSN and verifies it with a ping.
func OpenDBWithDSN(ctx context.Context, dsn string, opts PoolOptions, log *slog.Logger) (*sql.DB, error) {
	// 1. Open a new connection pool.
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// 2. Configure the connection pool settings.
	opts = opts.withDefaults()
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	// 3. Ping the database to verify the connection.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Error("database ping failed", "error", err)
		db.Close()
		return nil, err
	}

	log.Info("database connection pool established",
		"max_open", opts.MaxOpenConns,
		"max_idle", opts.MaxIdleConns,
		"conn_max_lifetime", opts.ConnMaxLifetime,
	)
	return db, nil
}
