// Package config provides configuration types, defaults, and persistence
// for besix.
package config

import (
	"fmt"
	"time"

	"github.com/Edward-Lombe/besix/internal/log"
)

// DataConfig locates the watched data file feeding the source store.
type DataConfig struct {
	// File is a YAML file whose top-level scalar keys are written into
	// the source store on every change.
	File string `mapstructure:"file"`
}

// WatchConfig controls the file watcher.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// FetchConfig controls the HTTP fetch helper.
type FetchConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TracingConfig controls the per-run pipeline spans.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	FilePath string `mapstructure:"file_path"`
}

// ThemeConfig holds the UI color tokens (hex colors).
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight"`
	Subtle    string `mapstructure:"subtle"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

// BindingConfig declares one demo binding: when Trigger's key event fires
// on the source store, sample Sources, fold Modifiers, and write the result
// to Destination on the sink store. Modifier names resolve against the
// demo's modifier registry.
type BindingConfig struct {
	Trigger     string   `mapstructure:"trigger"`
	Sources     []string `mapstructure:"sources"`
	Modifiers   []string `mapstructure:"modifiers"`
	Destination string   `mapstructure:"destination"`
}

// Config holds all configuration options for besix.
type Config struct {
	Debug    bool            `mapstructure:"debug"`
	LogFile  string          `mapstructure:"log_file"`
	Data     DataConfig      `mapstructure:"data"`
	Watch    WatchConfig     `mapstructure:"watch"`
	Fetch    FetchConfig     `mapstructure:"fetch"`
	Tracing  TracingConfig   `mapstructure:"tracing"`
	Theme    ThemeConfig     `mapstructure:"theme"`
	Bindings []BindingConfig `mapstructure:"bindings"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Debug:   false,
		LogFile: ".besix/besix.log",
		Data:    DataConfig{File: ".besix/data.yaml"},
		Watch:   WatchConfig{Enabled: true, Debounce: 250 * time.Millisecond},
		Fetch:   FetchConfig{TTL: 30 * time.Second, Timeout: 10 * time.Second},
		Tracing: TracingConfig{Enabled: false, FilePath: ".besix/traces.jsonl"},
		Theme: ThemeConfig{
			Highlight: "#7D56F4",
			Subtle:    "#6B6B6B",
			Error:     "#EF4444",
			Success:   "#10B981",
		},
		Bindings: []BindingConfig{
			{
				Trigger:     "count",
				Sources:     []string{"count"},
				Modifiers:   []string{"first", "double"},
				Destination: "doubled",
			},
		},
	}
}

// Validate rejects configurations the runtime cannot start with.
func (c Config) Validate() error {
	if c.Data.File == "" {
		return fmt.Errorf("data.file must not be empty")
	}
	if c.Watch.Enabled && c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got %v", c.Watch.Debounce)
	}
	for i, b := range c.Bindings {
		if b.Trigger == "" {
			return fmt.Errorf("bindings[%d]: trigger must not be empty", i)
		}
		if b.Destination == "" {
			return fmt.Errorf("bindings[%d]: destination must not be empty", i)
		}
	}
	log.Debug(log.CatConfig, "config validated", "bindings", len(c.Bindings))
	return nil
}
