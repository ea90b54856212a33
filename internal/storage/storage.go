package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/deadline-server/internal/config"
	"github.com/carson-networks/deadline-server/internal/storage/delivery"
)

type Storage struct {
	DB         *sql.DB
	db         bob.DB
	Reader     *Reader
	Deliveries *delivery.Ledger
}

// ConnectionString builds the lib/pq DSN from the environment config.
func ConnectionString(env *config.Config) string {
	return "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"
}

func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", ConnectionString(env))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return NewStorageFromDB(db), nil
}

func NewStorageFromDB(db *sql.DB) *Storage {
	bobDB := bob.NewDB(db)
	return &Storage{
		DB:         db,
		db:         bobDB,
		Reader:     NewReader(bobDB),
		Deliveries: delivery.NewLedger(bobDB),
	}
}

// Write opens a database transaction and returns a Writer bound to it. The caller must
// Commit or Rollback.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewWriter(tx), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
