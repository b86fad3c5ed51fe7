package sink_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/Flaque/filet"
	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberna113/WNV-ETL-Lab2/internal/models"
	"github.com/mberna113/WNV-ETL-Lab2/internal/sink"
)

func TestShapefileSink_Load(t *testing.T) {
	defer filet.CleanUp(t)
	ctx := context.Background()
	logger := slog.Default()

	points := []models.PointRecord{
		{X: -105.27, Y: 40.01, Category: "Residential"},
		{X: -105.3, Y: 40.05, Category: "Residential"},
	}

	t.Run("writes a readable point shapefile", func(t *testing.T) {
		workspace := filet.TmpDir(t, "")
		shapeSink := sink.NewShapefileSink(workspace, logger)

		require.NoError(t, shapeSink.Load(ctx, points))
		require.FileExists(t, shapeSink.Path())

		reader, err := shp.Open(shapeSink.Path())
		require.NoError(t, err)
		defer reader.Close()

		var got []models.PointRecord
		for reader.Next() {
			_, shape := reader.Shape()
			point, ok := shape.(*shp.Point)
			require.True(t, ok, "expected point geometry")
			got = append(got, models.PointRecord{
				X:        point.X,
				Y:        point.Y,
				Category: strings.Trim(reader.Attribute(0), "\x00 "),
			})
		}
		require.NoError(t, reader.Err())
		assert.Equal(t, points, got)
	})

	t.Run("replaces a previous feature class", func(t *testing.T) {
		workspace := filet.TmpDir(t, "")
		shapeSink := sink.NewShapefileSink(workspace, logger)

		require.NoError(t, shapeSink.Load(ctx, points))
		require.NoError(t, shapeSink.Load(ctx, points[:1]))

		reader, err := shp.Open(shapeSink.Path())
		require.NoError(t, err)
		defer reader.Close()

		count := 0
		for reader.Next() {
			count++
		}
		assert.Equal(t, 1, count)
	})

	t.Run("creates the workspace directory", func(t *testing.T) {
		workspace := filet.TmpDir(t, "") + "/nested/workspace"
		shapeSink := sink.NewShapefileSink(workspace, logger)

		require.NoError(t, shapeSink.Load(ctx, nil))
		assert.FileExists(t, shapeSink.Path())
	})
}
