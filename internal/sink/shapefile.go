package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	shp "github.com/jonas-p/go-shp"

	"github.com/mberna113/WNV-ETL-Lab2/internal/models"
)

// ShapefileSink materializes point records as an ESRI shapefile inside a
// workspace directory, the closest open equivalent of the original
// XY-table-to-point load.
type ShapefileSink struct {
	workspace string       // Directory the .shp/.shx/.dbf files are created in
	log       *slog.Logger // Logger for logging operations
}

// NewShapefileSink creates a sink writing into the given workspace directory.
func NewShapefileSink(workspace string, log *slog.Logger) *ShapefileSink {
	return &ShapefileSink{workspace: workspace, log: log}
}

// Path returns the .shp file the sink writes.
func (s *ShapefileSink) Path() string {
	return filepath.Join(s.workspace, FeatureClass+".shp")
}

// Load writes all points into a fresh point shapefile with a single "Type"
// string attribute, replacing any previous feature class of the same name.
func (s *ShapefileSink) Load(ctx context.Context, points []models.PointRecord) error {
	s.log.InfoContext(ctx, "Loading points into shapefile workspace", "workspace", s.workspace)

	if err := os.MkdirAll(s.workspace, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace directory %s: %w", s.workspace, err)
	}

	writer, err := shp.Create(s.Path(), shp.POINT)
	if err != nil {
		return fmt.Errorf("failed to create shapefile %s: %w", s.Path(), err)
	}
	defer writer.Close()

	const typeFieldLen = 25
	writer.SetFields([]shp.Field{shp.StringField("Type", typeFieldLen)})

	for i, point := range points {
		writer.Write(&shp.Point{X: point.X, Y: point.Y})
		if err := writer.WriteAttribute(i, 0, point.Category); err != nil {
			return fmt.Errorf("failed to write attribute for point %d: %w", i, err)
		}
	}

	s.log.InfoContext(ctx, "Shapefile load complete", "feature_class", FeatureClass, "points", len(points))
	return nil
}
