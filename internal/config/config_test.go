package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Edward-Lombe/besix/internal/config"
)

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, config.Defaults().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "empty data file",
			mutate:  func(c *config.Config) { c.Data.File = "" },
			wantErr: "data.file",
		},
		{
			name:    "non-positive debounce with watch enabled",
			mutate:  func(c *config.Config) { c.Watch.Debounce = 0 },
			wantErr: "watch.debounce",
		},
		{
			name: "debounce irrelevant when watch disabled",
			mutate: func(c *config.Config) {
				c.Watch.Enabled = false
				c.Watch.Debounce = 0
			},
		},
		{
			name: "binding without trigger",
			mutate: func(c *config.Config) {
				c.Bindings = []config.BindingConfig{{Destination: "out"}}
			},
			wantErr: "trigger",
		},
		{
			name: "binding without destination",
			mutate: func(c *config.Config) {
				c.Bindings = []config.BindingConfig{{Trigger: "in"}}
			},
			wantErr: "destination",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWriteDefaultConfigRoundTripsThroughViper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var cfg config.Config
	require.NoError(t, v.Unmarshal(&cfg))

	want := config.Defaults()
	assert.Equal(t, want.LogFile, cfg.LogFile)
	assert.Equal(t, want.Data.File, cfg.Data.File)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 30*time.Second, cfg.Fetch.TTL)
	assert.Equal(t, want.Theme, cfg.Theme)
	require.Len(t, cfg.Bindings, 1)
	assert.Equal(t, want.Bindings[0], cfg.Bindings[0])
	assert.NoError(t, cfg.Validate())
}

func TestWriteDataFileDoesNotClobber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")

	require.NoError(t, config.WriteDataFile(path, map[string]any{"count": 1}))
	existing, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, config.WriteDataFile(path, map[string]any{"count": 999}))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, existing, after, "an existing data file must be left alone")
}
