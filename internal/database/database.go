package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"storefront/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service wraps the catalog's Postgres connection pool
type Service interface {
	DB() *sql.DB
	Health() map[string]string
	Close() error
}

type service struct {
	db *sql.DB
}

// DSN builds the pgx connection string for the configured database
func DSN(cfg config.DatabaseConfig) string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}, "search_path": {cfg.Schema}}.Encode(),
	}
	return u.String()
}

// New opens the connection pool and verifies it with a ping
func New(cfg config.DatabaseConfig) (Service, error) {
	db, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &service{db: db}, nil
}

func (s *service) DB() *sql.DB {
	return s.db
}

// Health returns pool statistics and the ping outcome
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)

	return stats
}

func (s *service) Close() error {
	return s.db.Close()
}
