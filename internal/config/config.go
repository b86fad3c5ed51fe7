package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the pipeline settings. It is constructed once at process
// entry and passed by parameter to each component; there is no ambient
// global configuration state.
//
// Fields:
// - Env: The current environment (local, development, production).
// - RemoteURL: The published spreadsheet export URL to extract from.
// - LocalDir: The working directory for downloaded and transformed CSVs.
// - DataFormat: The destination workspace format (csv, shapefile, sqlite, postgres).
// - GDBPath: The destination workspace: directory, database file, or DSN.
// - ProjDir: Optional directory for the run log file.
// - MetricsPort: Optional port for the monitoring server; 0 disables it.
// - Stages: The pipeline stages to run; empty means all.
type Config struct {
	Env         string          `mapstructure:"env"`
	RemoteURL   string          `mapstructure:"remote_url"`
	LocalDir    string          `mapstructure:"local_dir"`
	DataFormat  string          `mapstructure:"data_format"`
	GDBPath     string          `mapstructure:"gdb_path"`
	ProjDir     string          `mapstructure:"proj_dir"`
	MetricsPort int             `mapstructure:"metrics_port"`
	Stages      []string        `mapstructure:"stages"`
	Geocoder    GeocoderConfig  `mapstructure:"geocoder"`
	Transform   TransformConfig `mapstructure:"transform"`
}

// GeocoderConfig selects and parameterizes the geocoding provider.
type GeocoderConfig struct {
	Provider  string        `mapstructure:"provider"`   // Provider is the geocoder backend: nominatim or google.
	APIKey    string        `mapstructure:"api_key"`    // APIKey is required by the Google provider.
	UserAgent string        `mapstructure:"user_agent"` // UserAgent identifies the pipeline to Nominatim.
	Interval  time.Duration `mapstructure:"interval"`   // Interval is the minimum gap between geocode requests.
}

// TransformConfig parameterizes the row transform.
type TransformConfig struct {
	AddrSuffix string `mapstructure:"addr_suffix"` // AddrSuffix is appended to every street address before geocoding.
	Category   string `mapstructure:"category"`    // Category is the label written with every output point.
}

// ErrMissingSetting is returned when a required configuration key is absent.
var ErrMissingSetting = errors.New("missing required configuration setting")

// Load reads the YAML settings file and applies .env plus WNV_* environment
// overrides. An empty path falls back to config/wnvoutbreak.yaml relative to
// the working directory.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	vpr := viper.New()
	if path != "" {
		vpr.SetConfigFile(path)
	} else {
		vpr.SetConfigName("wnvoutbreak")
		vpr.SetConfigType("yaml")
		vpr.AddConfigPath("config")
		vpr.AddConfigPath(".")
	}

	vpr.SetEnvPrefix("WNV")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	vpr.SetDefault("env", "local")
	vpr.SetDefault("data_format", "csv")
	vpr.SetDefault("metrics_port", 0)
	vpr.SetDefault("geocoder.provider", "nominatim")
	vpr.SetDefault("geocoder.interval", time.Second)
	vpr.SetDefault("transform.addr_suffix", " Boulder CO")
	vpr.SetDefault("transform.category", "Residential")

	if err := vpr.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var cfg Config
	if err := vpr.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if cfg.RemoteURL == "" {
		return nil, fmt.Errorf("%w: remote_url", ErrMissingSetting)
	}
	if cfg.LocalDir == "" {
		return nil, fmt.Errorf("%w: local_dir", ErrMissingSetting)
	}

	return &cfg, nil
}
