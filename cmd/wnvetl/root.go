package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mberna113/WNV-ETL-Lab2/internal/config"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wnvetl",
	Short: "West Nile Virus opt-out address ETL pipeline",
	Long: `Downloads the opt-out address spreadsheet, geocodes each address
through a public geocoding API, writes a normalized point CSV, and loads the
points into a destination workspace (shapefile, SQLite, or PostgreSQL).`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		logger, err = setupLogger(cfg.Env, cfg.ProjDir)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the YAML settings file")
}

// setupLogger initializes a logger based on the environment. When projDir is
// set, log output is teed into a wnvoutbreak.log file there.
func setupLogger(env, projDir string) (*slog.Logger, error) {
	var out io.Writer = os.Stdout
	if projDir != "" {
		if err := os.MkdirAll(projDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", projDir, err)
		}
		logPath := filepath.Join(projDir, "wnvoutbreak.log")
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	switch env {
	case envLocal:
		return slog.New(
			slog.NewTextHandler(out, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		), nil
	case envDev:
		return slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		), nil
	case envProd:
		return slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}),
		), nil
	default:
		log := slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)
		log.Error("The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
		return log, nil
	}
}
