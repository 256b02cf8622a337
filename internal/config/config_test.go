package config_test

import (
	"log/slog"
	"testing"

	"github.com/modelfetch/modelfetch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MF_TARGET_DIR", "/workspace/models")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/workspace/models", cfg.TargetDir)
	assert.Equal(t, 6, cfg.MaxParallel)
	assert.Equal(t, -1, cfg.MaxFailedJobs)
	assert.False(t, cfg.StrictSizeCheck)
	assert.True(t, cfg.Web.Enabled)
}

func TestLoadConfig_MissingTargetDir(t *testing.T) {
	t.Setenv("MF_TARGET_DIR", "")

	_, err := config.LoadConfig()
	require.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &config.Config{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.SlogLevel())
		})
	}
}

func TestRunFailed_Policy(t *testing.T) {
	tests := []struct {
		name          string
		maxFailedJobs int
		failed        int
		fatal         bool
	}{
		{"downloads never fatal by default", -1, 10, false},
		{"fail fast on any failure", 0, 1, true},
		{"zero failures under fail fast", 0, 0, false},
		{"tolerate up to N", 2, 2, false},
		{"exceed tolerance", 2, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{MaxFailedJobs: tt.maxFailedJobs}
			assert.Equal(t, tt.fatal, cfg.RunFailed(tt.failed))
		})
	}
}
