package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("PHASESPACE_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, dir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 250, cfg.DefaultSteps)
	assert.Equal(t, 1000, cfg.MaxSteps)
	assert.Equal(t, 400, cfg.MaxHilbertDim)
	assert.Equal(t, 24*time.Hour, cfg.SnapshotTTL)
	assert.Equal(t, 0.0, cfg.WignerG)
	assert.False(t, cfg.DevMode)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PHASESPACE_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9001")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("DEFAULT_STEPS", "101")
	t.Setenv("MAX_TRUNCATION", "40")
	t.Setenv("WIGNER_G", "2")
	t.Setenv("SNAPSHOT_TTL_HOURS", "0")
	t.Setenv("CLEANUP_SCHEDULE", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 101, cfg.DefaultSteps)
	assert.Equal(t, 40, cfg.MaxTruncation)
	assert.Equal(t, 2.0, cfg.WignerG)
	assert.Zero(t, cfg.SnapshotTTL)
	assert.Equal(t, "@hourly", cfg.CleanupSchedule)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PHASESPACE_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "not-a-port")
	t.Setenv("WIGNER_G", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.0, cfg.WignerG)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, DefaultSteps: 250, MaxSteps: 1000, MaxTruncation: 100, MaxHilbertDim: 400}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"steps", func(c *Config) { c.DefaultSteps = 1 }},
		{"max steps", func(c *Config) { c.MaxSteps = 100 }},
		{"truncation", func(c *Config) { c.MaxTruncation = 0 }},
		{"hilbert dim below truncation", func(c *Config) { c.MaxHilbertDim = 50 }},
		{"negative g", func(c *Config) { c.WignerG = -1 }},
		{"negative ttl", func(c *Config) { c.SnapshotTTL = -time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
