// Package sink materializes transformed point records into a destination
// workspace: a shapefile directory, a SQLite file, or a PostgreSQL database.
package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mberna113/WNV-ETL-Lab2/internal/models"
)

// FeatureClass is the name of the point feature class created in the
// destination workspace.
const FeatureClass = "Opt_Out_Address_Points"

// Sink loads point records into a destination workspace, replacing any
// previous contents of the feature class (overwrite-output semantics).
type Sink interface {
	Load(ctx context.Context, points []models.PointRecord) error
}

// Format identifies the destination workspace kind.
type Format string

const (
	// FormatCSV means the transformed CSV is the deliverable; no sink is built.
	FormatCSV Format = "csv"
	// FormatShapefile writes an ESRI shapefile into a workspace directory.
	FormatShapefile Format = "shapefile"
	// FormatSQLite writes a table into a SQLite database file.
	FormatSQLite Format = "sqlite"
	// FormatPostgres writes a table into a PostgreSQL database.
	FormatPostgres Format = "postgres"
)

// Config holds configuration for creating a sink.
type Config struct {
	Format    Format       // Destination workspace kind
	Workspace string       // Directory, database file, or DSN depending on Format
	Logger    *slog.Logger // Logger for the sink
}

// New creates a sink for the configured destination format. FormatCSV yields
// a nil sink: the caller skips the load stage. Unknown formats are rejected.
func New(ctx context.Context, config Config) (Sink, error) {
	switch config.Format {
	case FormatCSV:
		return nil, nil
	case FormatShapefile:
		return NewShapefileSink(config.Workspace, config.Logger), nil
	case FormatSQLite:
		return NewSQLiteSink(config.Workspace, config.Logger), nil
	case FormatPostgres:
		dtb, err := NewDatabase(ctx, config.Workspace)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres workspace: %w", err)
		}
		return NewPostgresSink(dtb, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported workspace format: %s", config.Format)
	}
}
