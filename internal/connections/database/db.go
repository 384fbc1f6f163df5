package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restaurant-queue/internal/common/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

// DSN builds the driver name and data source for cfg.
func DSN(cfg config.DB) (driver, dsn string, err error) {
	switch cfg.Driver {
	case "pgx":
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return "pgx", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Pass, cfg.Name, sslmode), nil
	case "sqlite3":
		return "sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", cfg.Path), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// ConnectDB opens and pings the database, retrying while it comes up.
func ConnectDB(ctx context.Context, cfg config.DB) (*sql.DB, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	for i := 1; i <= maxRetries; i++ {
		db, err = sql.Open(driver, dsn)
		if err != nil {
			select {
			case <-time.After(retryDelay):
				continue
			case <-ctx.Done():
				return nil, fmt.Errorf("db open canceled: %w", ctx.Err())
			}
		}
		if driver == "sqlite3" {
			// one writer at a time; sqlite serialises anyway
			db.SetMaxOpenConns(1)
		}

		pctx, cancel := context.WithTimeout(ctx, pingTTL)
		err = db.PingContext(pctx)
		cancel()
		if err == nil {
			return db, nil
		}

		_ = db.Close()

		select {
		case <-time.After(retryDelay):
			continue
		case <-ctx.Done():
			return nil, fmt.Errorf("db ping canceled: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, err)
}
