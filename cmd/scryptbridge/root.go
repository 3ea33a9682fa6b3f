package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/TheMichaelB/scryptbridge/internal/bridge"
	"github.com/TheMichaelB/scryptbridge/internal/config"
	"github.com/TheMichaelB/scryptbridge/internal/crypto"
	"github.com/TheMichaelB/scryptbridge/internal/dispatch"
	"github.com/TheMichaelB/scryptbridge/internal/events"
	"github.com/TheMichaelB/scryptbridge/internal/metrics"
	"github.com/TheMichaelB/scryptbridge/internal/services/kdf"
)

var (
	cfgFile    string
	jsonOutput bool
	logLevel   string

	cfg      *config.Config
	logger   *events.Logger
	registry *prometheus.Registry
	pool     *dispatch.AntsPool
	service  *kdf.Service
	plugin   *bridge.Plugin
)

var rootCmd = &cobra.Command{
	Use:   "scryptbridge",
	Short: "Asynchronous scrypt key derivation",
	Long: `scryptbridge derives scrypt keys off the calling goroutine and reports
exactly one outcome per request: the key as lowercase hex, or a message
naming the error kind.`,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: ./scryptbridge.json, ~/.config/scryptbridge/)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)

	var err error
	cfg, err = loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if jsonOutput {
		color.NoColor = true
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	events.SetDefault(logger)

	if used := loader.ConfigFileUsed(); used != "" {
		logger.WithField("path", used).Debug("Loaded config file")
	}

	pool, err = dispatch.NewAntsPool(logger)
	if err != nil {
		return err
	}

	registry = prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry, cfg.Metrics.Namespace)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	dispatcher := dispatch.NewDispatcher(pool, logger)
	service = kdf.NewService(dispatcher, crypto.NewScryptDeriver(), logger,
		kdf.WithMetrics(recorder),
		kdf.WithTracer(otel.Tracer("github.com/TheMichaelB/scryptbridge")),
	)
	plugin = bridge.NewPlugin(service, logger)

	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if pool != nil {
		pool.Release()
	}
}

// Output helpers

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stderr, "✓ "+format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "! "+format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(os.Stderr, format+"\n", args...)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
