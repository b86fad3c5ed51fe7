package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mberna113/WNV-ETL-Lab2/internal/etl"
	"github.com/mberna113/WNV-ETL-Lab2/internal/geocoding"
	"github.com/mberna113/WNV-ETL-Lab2/internal/metrics"
	"github.com/mberna113/WNV-ETL-Lab2/internal/sink"
)

var runStages []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL pipeline",
	Long: `Runs the enabled pipeline stages in order: extract, transform, load.
A failed stage aborts the run so later stages never operate on missing
prerequisite data. Stage selection comes from the configuration file and can
be overridden with --stages.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Cancel in-flight fetch and geocode calls on Ctrl+C.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appMetrics := metrics.NewMetrics(reg)

		if cfg.MetricsPort > 0 {
			go startMonitoringServer(ctx, logger, reg, cfg.MetricsPort)
		}

		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:      geocoding.ProviderType(cfg.Geocoder.Provider),
			APIKey:    cfg.Geocoder.APIKey,
			UserAgent: cfg.Geocoder.UserAgent,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("create geocoding provider: %w", err)
		}
		logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Geocoder.Provider)

		fetcher := etl.NewFetcher(cfg.Geocoder.UserAgent, logger)
		transformer := etl.NewTransformer(
			logger,
			provider,
			cfg.Geocoder.Provider,
			etl.NewIntervalThrottle(cfg.Geocoder.Interval),
			appMetrics,
			cfg.Transform.AddrSuffix,
			cfg.Transform.Category,
		)

		pointSink, err := sink.New(ctx, sink.Config{
			Format:    sink.Format(cfg.DataFormat),
			Workspace: cfg.GDBPath,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("create workspace sink: %w", err)
		}

		stages := cfg.Stages
		if len(runStages) > 0 {
			stages = runStages
		}

		pipeline, err := etl.NewPipeline(
			logger, fetcher, transformer, pointSink, appMetrics,
			cfg.RemoteURL, cfg.LocalDir, stages,
		)
		if err != nil {
			return fmt.Errorf("assemble pipeline: %w", err)
		}

		if err := pipeline.Run(ctx); err != nil {
			logger.ErrorContext(ctx, "Pipeline failed", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runStages, "stages", nil,
		"comma-separated stages to run (extract,transform,load); overrides the config file")
	rootCmd.AddCommand(runCmd)
}

// startMonitoringServer starts an HTTP server that provides health check and
// metrics endpoints while the pipeline runs.
func startMonitoringServer(ctx context.Context, log *slog.Logger, reg *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
		if _, err := writer.Write([]byte("OK")); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	const (
		readTimeout  = 5
		writeTimeout = 10
	)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  readTimeout * time.Second,
		WriteTimeout: writeTimeout * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
