package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mberna113/WNV-ETL-Lab2/internal/models"
)

// Database is the slice of pgxpool.Pool the postgres sink needs. Keeping it
// narrow lets tests substitute a pgxmock pool.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewDatabase opens a pgx connection pool for the given DSN and verifies it
// with a ping.
func NewDatabase(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// PostgresSink materializes point records as a table inside a PostgreSQL
// database.
type PostgresSink struct {
	db  Database
	log *slog.Logger
}

// NewPostgresSink creates a sink writing through the given database handle.
func NewPostgresSink(db Database, log *slog.Logger) *PostgresSink {
	return &PostgresSink{db: db, log: log}
}

// Load replaces the contents of the feature-class table with the given
// points, then reads the stored row count back for the run log.
func (s *PostgresSink) Load(ctx context.Context, points []models.PointRecord) error {
	s.log.InfoContext(ctx, "Loading points into PostgreSQL workspace")

	createQuery := `
		CREATE TABLE IF NOT EXISTS opt_out_address_points (
			x DOUBLE PRECISION NOT NULL,
			y DOUBLE PRECISION NOT NULL,
			type TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(ctx, createQuery); err != nil {
		return fmt.Errorf("failed to create points table: %w", err)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM opt_out_address_points;`); err != nil {
		return fmt.Errorf("failed to clear points table: %w", err)
	}

	insertQuery := `INSERT INTO opt_out_address_points (x, y, type) VALUES ($1, $2, $3);`
	for _, point := range points {
		if _, err := s.db.Exec(ctx, insertQuery, point.X, point.Y, point.Category); err != nil {
			return fmt.Errorf("failed to insert point: %w", err)
		}
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM opt_out_address_points;`
	if err := s.db.QueryRow(ctx, countQuery).Scan(&count); err != nil {
		return fmt.Errorf("failed to count loaded points: %w", err)
	}

	s.log.InfoContext(ctx, "PostgreSQL load complete", "points", count)
	return nil
}
