package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/taskboardhq/taskboard/pkg/config"
)

// Store handles relational persistence for users, profiles, permissions,
// teams, boards, and board shares.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an existing database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks and migrations
func (s *Store) DB() *sql.DB {
	return s.db
}

// Connect opens a PostgreSQL connection pool and verifies it
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)

	pingDeadline := time.Now().Add(10 * time.Second)
	for {
		err = db.Ping()
		if err == nil {
			break
		}
		if time.Now().After(pingDeadline) {
			db.Close()
			return nil, fmt.Errorf("database not reachable: %w", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	return db, nil
}
