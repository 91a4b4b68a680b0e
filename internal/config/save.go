package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Edward-Lombe/besix/internal/log"
)

// DefaultConfigTemplate returns the commented YAML written for new
// installs.
func DefaultConfigTemplate() string {
	return `# besix configuration

# Write debug-level entries to the log file.
debug: false
log_file: .besix/besix.log

data:
  # YAML file whose top-level keys feed the source store.
  file: .besix/data.yaml

watch:
  enabled: true
  debounce: 250ms

fetch:
  ttl: 30s
  timeout: 10s

tracing:
  enabled: false
  file_path: .besix/traces.jsonl

theme:
  highlight: "#7D56F4"
  subtle: "#6B6B6B"
  error: "#EF4444"
  success: "#10B981"

# Demo bindings: when the trigger key changes on the source store, sample
# the source keys, fold the named modifiers, and write the result to the
# destination key on the sink store.
bindings:
  - trigger: count
    sources: [count]
    modifiers: [first, double]
    destination: doubled
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}

// WriteDataFile writes a starter data file for the demo if none exists.
func WriteDataFile(path string, data map[string]any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	return nil
}
