package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/agendahub/agenda-api/config"
)

// DB wraps the sqlx handle so the tier satisfies repository.Pinger.
type DB struct {
	*sqlx.DB
}

func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	dsn := cfg.ConnString()
	if dsn == "" {
		return nil, fmt.Errorf("no database connection configured")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &DB{DB: db}, nil
}

// Ping probes the connection within the caller's deadline.
func (d *DB) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}
