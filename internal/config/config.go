package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config struct for environment variables.
type Config struct {
	PlanPath  string `envconfig:"PLAN_PATH" default:"/etc/modelfetch/plan.yaml"`
	TargetDir string `envconfig:"TARGET_DIR" required:"true"`

	MaxParallel      int  `envconfig:"MAX_PARALLEL" default:"6"`
	Aria2Connections int  `envconfig:"ARIA2_CONNECTIONS" default:"16"`
	StrictSizeCheck  bool `envconfig:"STRICT_SIZE_CHECK" default:"false"`

	// MaxFailedJobs controls the exit-code policy for download
	// failures: -1 means failed downloads never fail the run (the
	// bootstrap decides later stages on its own), N >= 0 means exit
	// non-zero when more than N jobs fail.
	MaxFailedJobs int `envconfig:"MAX_FAILED_JOBS" default:"-1"`

	ManifestPath     string `envconfig:"MANIFEST_PATH" default:"modelfetch.db"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"INFO"`
	WebhookURL       string `envconfig:"WEBHOOK_URL"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"true"`

	Web struct {
		Enabled         bool          `split_words:"true" default:"true"`
		BindAddress     string        `split_words:"true" default:"0.0.0.0:8188"`
		ReadTimeout     time.Duration `split_words:"true" default:"30s"`
		WriteTimeout    time.Duration `split_words:"true" default:"30s"`
		IdleTimeout     time.Duration `split_words:"true" default:"5s"`
		ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	}
}

// LoadConfig reads MF_-prefixed environment variables into the Config.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("mf", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	return &cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RunFailed applies the exit-code policy to a run's failed-job count.
func (c *Config) RunFailed(failedJobs int) bool {
	if c.MaxFailedJobs < 0 {
		return false
	}

	return failedJobs > c.MaxFailedJobs
}
