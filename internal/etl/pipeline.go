package etl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mberna113/WNV-ETL-Lab2/internal/metrics"
	"github.com/mberna113/WNV-ETL-Lab2/internal/sink"
)

// Stage names accepted by the pipeline configuration.
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

// Working file names inside the local directory.
const (
	downloadedCSV  = "Opt_Out_Addresses.csv"
	transformedCSV = "Opt_Out_Addresses_transformed.csv"
)

// Pipeline runs the extract -> transform -> load sequence. Stage selection
// comes from configuration, collapsing the assignment's script variants into
// one parameterized run. A failed stage aborts the run: downstream stages
// never execute against missing prerequisite data.
type Pipeline struct {
	log         *slog.Logger
	fetcher     *Fetcher
	transformer *Transformer
	pointSink   sink.Sink // nil disables the load stage (csv is the terminal format)
	metrics     *metrics.Metrics
	remoteURL   string
	localDir    string
	stages      map[string]bool
}

// NewPipeline assembles a pipeline. stages lists the enabled stage names;
// an empty list enables all of them. pointSink may be nil when the
// transformed CSV itself is the deliverable.
func NewPipeline(
	log *slog.Logger,
	fetcher *Fetcher,
	transformer *Transformer,
	pointSink sink.Sink,
	appMetrics *metrics.Metrics,
	remoteURL string,
	localDir string,
	stages []string,
) (*Pipeline, error) {
	enabled := make(map[string]bool, len(stages))
	if len(stages) == 0 {
		stages = []string{StageExtract, StageTransform, StageLoad}
	}
	for _, stage := range stages {
		switch stage {
		case StageExtract, StageTransform, StageLoad:
			enabled[stage] = true
		default:
			return nil, fmt.Errorf("unknown pipeline stage %q", stage)
		}
	}

	return &Pipeline{
		log:         log,
		fetcher:     fetcher,
		transformer: transformer,
		pointSink:   pointSink,
		metrics:     appMetrics,
		remoteURL:   remoteURL,
		localDir:    localDir,
		stages:      enabled,
	}, nil
}

// DownloadedPath is where the extract stage writes the raw spreadsheet CSV.
func (p *Pipeline) DownloadedPath() string {
	return filepath.Join(p.localDir, downloadedCSV)
}

// TransformedPath is where the transform stage writes the point CSV.
func (p *Pipeline) TransformedPath() string {
	return filepath.Join(p.localDir, transformedCSV)
}

// Run executes the enabled stages in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	p.log.InfoContext(ctx, "Starting ETL process", "local_dir", p.localDir)

	if err := os.MkdirAll(p.localDir, 0o755); err != nil {
		return fmt.Errorf("failed to create local directory %s: %w", p.localDir, err)
	}

	if p.stages[StageExtract] {
		written, err := p.fetcher.Download(ctx, p.remoteURL, p.DownloadedPath())
		if err != nil {
			return fmt.Errorf("extract stage failed: %w", err)
		}
		p.metrics.FetchBytes.Add(float64(written))
	}

	if p.stages[StageTransform] {
		stats, err := p.transformer.Run(ctx, p.DownloadedPath(), p.TransformedPath())
		if err != nil {
			return fmt.Errorf("transform stage failed: %w", err)
		}
		p.log.InfoContext(ctx, "Transform stage finished",
			"rows", stats.Rows, "geocoded", stats.Geocoded)
	}

	if p.stages[StageLoad] && p.pointSink != nil {
		points, err := ReadPoints(p.TransformedPath())
		if err != nil {
			return fmt.Errorf("load stage failed: %w", err)
		}
		if err := p.pointSink.Load(ctx, points); err != nil {
			return fmt.Errorf("load stage failed: %w", err)
		}
		p.metrics.PointsLoaded.Add(float64(len(points)))
		p.log.InfoContext(ctx, "Load complete", "points", len(points))
	}

	p.log.InfoContext(ctx, "ETL process complete")
	return nil
}
