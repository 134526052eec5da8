package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Config struct {
	DSN            string
	MaxConns       int
	Timeout        time.Duration
	TimeZone       string
	ClientEncoding string
}

// Connect opens a pooled *sqlx.DB on the postgres driver and verifies
// connectivity with a ping. Session settings travel as startup parameters,
// so every connection in the pool carries them.
func Connect(cfg Config) (*sqlx.DB, error) {
	dsn, err := sessionDSN(cfg)
	if err != nil {
		return nil, err
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := sql.OpenDB(connector)

	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return sqlx.NewDb(db, "postgres"), nil
}

// sessionDSN appends timezone and client_encoding to the DSN in key=value
// form. URL DSNs are converted first.
func sessionDSN(cfg Config) (string, error) {
	if cfg.TimeZone == "" && cfg.ClientEncoding == "" {
		return cfg.DSN, nil
	}
	dsn := cfg.DSN
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		kv, err := pq.ParseURL(dsn)
		if err != nil {
			return "", fmt.Errorf("parse db url: %w", err)
		}
		dsn = kv
	}
	if cfg.TimeZone != "" {
		dsn += " timezone=" + quoteOption(cfg.TimeZone)
	}
	if cfg.ClientEncoding != "" {
		dsn += " client_encoding=" + quoteOption(cfg.ClientEncoding)
	}
	return strings.TrimSpace(dsn), nil
}

// quoteOption quotes a key=value connection option value.
func quoteOption(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
