package etl

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/mberna113/WNV-ETL-Lab2/internal/geocoding"
	"github.com/mberna113/WNV-ETL-Lab2/internal/metrics"
)

// addressColumn is the required header of the input CSV.
const addressColumn = "Street Address"

// Common errors for the transform step.
var (
	// ErrMissingAddressColumn is returned when the input CSV has no
	// "Street Address" column.
	ErrMissingAddressColumn = errors.New("input CSV is missing the Street Address column")
	// ErrOutputLocked is returned when an existing output file cannot be
	// removed, typically because another process (Excel) holds it open.
	// The transform aborts before writing any row.
	ErrOutputLocked = errors.New("output file exists and cannot be removed")
)

// TransformStats summarizes one transform pass.
type TransformStats struct {
	Rows     int // Rows is the number of input data rows read.
	Geocoded int // Geocoded is the number of output rows written.
	NotFound int // NotFound is the number of rows the geocoder had no result for.
	Failed   int // Failed is the number of rows dropped due to transport or data errors.
}

// Transformer streams the fetched CSV row by row, appends a fixed locality
// suffix to each street address, geocodes it through the provider behind the
// throttle, and writes an output CSV of coordinate pairs tagged with a fixed
// category label. Rows that fail to geocode are dropped, never defaulted.
type Transformer struct {
	log          *slog.Logger       // Logger for logging transform activities
	provider     geocoding.Provider // Geocoding provider for external lookups
	providerName string             // Name of the provider for metrics labeling
	throttle     Throttle           // Request gate applied before every lookup
	metrics      *metrics.Metrics   // Metrics for tracking transform performance
	addrSuffix   string             // Locality suffix appended to each street address
	category     string             // Category label written with every output row
}

// NewTransformer creates a Transformer. The throttle is waited on for every
// input row, successful or not.
func NewTransformer(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	throttle Throttle,
	appMetrics *metrics.Metrics,
	addrSuffix string,
	category string,
) *Transformer {
	return &Transformer{
		log:          log,
		provider:     provider,
		providerName: providerName,
		throttle:     throttle,
		metrics:      appMetrics,
		addrSuffix:   addrSuffix,
		category:     category,
	}
}

// Run reads inputPath and writes the transformed CSV to outputPath in a
// single forward pass. If outputPath already exists it is deleted first; a
// locked file aborts the whole step before any row is written. The output
// always starts with the "x,y,Type" header, even for an empty input.
func (t *Transformer) Run(ctx context.Context, inputPath, outputPath string) (TransformStats, error) {
	var stats TransformStats

	t.log.InfoContext(ctx, "Transforming: adding locality suffix and geocoding addresses",
		"input", inputPath, "output", outputPath)

	if err := clearOutput(outputPath); err != nil {
		return stats, err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return stats, fmt.Errorf("failed to open input CSV %s: %w", inputPath, err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return stats, fmt.Errorf("failed to read input CSV header: %w", err)
	}
	addrIdx := columnIndex(header, addressColumn)
	if addrIdx < 0 {
		return stats, fmt.Errorf("%w: header %v", ErrMissingAddressColumn, header)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return stats, fmt.Errorf("failed to create output CSV %s: %w", outputPath, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err = writer.Write([]string{"x", "y", "Type"}); err != nil {
		return stats, fmt.Errorf("failed to write output header: %w", err)
	}

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return stats, fmt.Errorf("failed to read input CSV row: %w", readErr)
		}
		stats.Rows++

		if addrIdx >= len(record) {
			t.log.WarnContext(ctx, "Skipping short row without address field", "row", stats.Rows)
			stats.Failed++
			t.metrics.RowsProcessed.WithLabelValues(metrics.StatusFailed).Inc()
			continue
		}

		address := record[addrIdx] + t.addrSuffix
		if err = t.geocodeRow(ctx, address, writer, &stats); err != nil {
			return stats, err
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return stats, fmt.Errorf("failed to flush output CSV: %w", err)
	}

	t.log.InfoContext(ctx, "Transform complete",
		"rows", stats.Rows,
		"geocoded", stats.Geocoded,
		"not_found", stats.NotFound,
		"failed", stats.Failed,
	)
	return stats, nil
}

// geocodeRow waits on the throttle, looks up one address, and writes the
// output row when a usable coordinate pair comes back. Lookup failures only
// drop the row; a throttle failure means the context is gone and the whole
// pass stops.
func (t *Transformer) geocodeRow(
	ctx context.Context,
	address string,
	writer *csv.Writer,
	stats *TransformStats,
) error {
	if err := t.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait interrupted: %w", err)
	}

	t.log.DebugContext(ctx, "Geocoding", "address", address)

	startTime := time.Now()
	coords, err := t.provider.Geocode(ctx, address)
	t.metrics.RequestSeconds.WithLabelValues(t.providerName).Observe(time.Since(startTime).Seconds())

	switch {
	case errors.Is(err, geocoding.ErrNoResult):
		t.log.InfoContext(ctx, "No geocoding result, dropping row", "address", address)
		stats.NotFound++
		t.metrics.RowsProcessed.WithLabelValues(metrics.StatusNotFound).Inc()
		return nil
	case err != nil:
		t.log.WarnContext(ctx, "Geocoding failed, dropping row", "address", address, "error", err)
		stats.Failed++
		t.metrics.RowsProcessed.WithLabelValues(metrics.StatusFailed).Inc()
		t.metrics.APIErrors.Inc()
		return nil
	}

	if !isFinite(coords.Longitude) || !isFinite(coords.Latitude) {
		t.log.WarnContext(ctx, "Provider returned non-finite coordinates, dropping row",
			"address", address, "lon", coords.Longitude, "lat", coords.Latitude)
		stats.Failed++
		t.metrics.RowsProcessed.WithLabelValues(metrics.StatusFailed).Inc()
		return nil
	}

	row := []string{formatCoordinate(coords.Longitude), formatCoordinate(coords.Latitude), t.category}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write output row: %w", err)
	}
	stats.Geocoded++
	t.metrics.RowsProcessed.WithLabelValues(metrics.StatusGeocoded).Inc()
	return nil
}

// clearOutput removes a pre-existing output file. Any removal failure other
// than "does not exist" is reported as the locked-output condition.
func clearOutput(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrOutputLocked, path, err)
}

// columnIndex returns the index of name in header, or -1.
func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}

// formatCoordinate renders a coordinate with the shortest representation
// that round-trips exactly, keeping repeated runs byte-identical.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
