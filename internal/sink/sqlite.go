package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/mberna113/WNV-ETL-Lab2/internal/models"
)

// SQLiteSink materializes point records as a table inside a SQLite database
// file, a file-based workspace that needs no running server.
type SQLiteSink struct {
	path string       // Database file path
	log  *slog.Logger // Logger for logging operations
}

// NewSQLiteSink creates a sink writing into the given database file.
func NewSQLiteSink(path string, log *slog.Logger) *SQLiteSink {
	return &SQLiteSink{path: path, log: log}
}

// Load replaces the contents of the feature-class table with the given
// points inside a single transaction.
func (s *SQLiteSink) Load(ctx context.Context, points []models.PointRecord) error {
	s.log.InfoContext(ctx, "Loading points into SQLite workspace", "path", s.path)

	dtb, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite workspace %s: %w", s.path, err)
	}
	defer dtb.Close()

	if _, err = dtb.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS opt_out_address_points (
			x REAL NOT NULL,
			y REAL NOT NULL,
			type TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("failed to create points table: %w", err)
	}

	tx, err := dtb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err = tx.ExecContext(ctx, `DELETE FROM opt_out_address_points;`); err != nil {
		return fmt.Errorf("failed to clear points table: %w", err)
	}

	for _, point := range points {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO opt_out_address_points (x, y, type) VALUES (?, ?, ?);`,
			point.X, point.Y, point.Category,
		); err != nil {
			return fmt.Errorf("failed to insert point: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit point load: %w", err)
	}

	s.log.InfoContext(ctx, "SQLite load complete", "points", len(points))
	return nil
}
