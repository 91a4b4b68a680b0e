// Package cmd wires configuration, logging, tracing, the reactive graph,
// and the UI into the besix binary.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Edward-Lombe/besix/internal/app"
	"github.com/Edward-Lombe/besix/internal/config"
	"github.com/Edward-Lombe/besix/internal/fetch"
	"github.com/Edward-Lombe/besix/internal/log"
	"github.com/Edward-Lombe/besix/internal/tracing"
	"github.com/Edward-Lombe/besix/internal/ui"
	"github.com/Edward-Lombe/besix/internal/watcher"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "besix",
	Short:   "A reactive data-binding playground",
	Long:    `besix runs a small reactive graph: a data file feeds a source store, declarative bindings transform values into a sink store, and the terminal UI renders the whole graph live.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/besix/config.yaml)")
	rootCmd.Flags().Bool("debug", false,
		"log debug-level entries")
	rootCmd.Flags().Bool("no-watch", false,
		"disable the data-file watcher")

	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("log_file", defaults.LogFile)
	viper.SetDefault("data.file", defaults.Data.File)
	viper.SetDefault("watch.enabled", defaults.Watch.Enabled)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("fetch.ttl", defaults.Fetch.TTL)
	viper.SetDefault("fetch.timeout", defaults.Fetch.Timeout)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)
	viper.SetDefault("bindings", defaults.Bindings)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .besix/config.yaml (current directory)
		// 2. ~/.config/besix/config.yaml (user config)
		if _, err := os.Stat(".besix/config.yaml"); err == nil {
			viper.SetConfigFile(".besix/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "besix"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".besix/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := log.Init(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	defer cleanup()
	if cfg.Debug {
		log.SetMinLevel(log.LevelDebug)
	}

	provider, err := tracing.NewProvider(cfg.Tracing.Enabled, cfg.Tracing.FilePath)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	var opts []app.Option
	if provider.Enabled() {
		opts = append(opts, app.WithTracer(provider.Tracer()))
	}
	graph, err := app.BuildGraph(cfg, opts...)
	if err != nil {
		return fmt.Errorf("assembling graph: %w", err)
	}
	defer graph.Close()

	graph.Source.SetFetcher(fetch.New(
		fetch.WithTTL(cfg.Fetch.TTL),
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.Fetch.Timeout}),
	))

	// Seed the data file on first run, then load it into the source store
	// before any listener beyond the graph's own bindings exists.
	if err := config.WriteDataFile(cfg.Data.File, map[string]any{"count": 0, "name": "widget"}); err != nil {
		return err
	}
	if err := watcher.LoadInto(cfg.Data.File, graph.Source); err != nil {
		return fmt.Errorf("loading data file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watchCh <-chan struct{}
	noWatch, _ := cmd.Flags().GetBool("no-watch")
	if cfg.Watch.Enabled && !noWatch {
		w, err := watcher.New(watcher.Config{Path: cfg.Data.File, Debounce: cfg.Watch.Debounce})
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer func() { _ = w.Stop() }()
		watchCh, err = w.Start()
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
	}

	model := ui.New(ctx, graph, cfg, watchCh)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
