package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/devilmonastery/biniq/internal/api"
	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/localstore"
	"github.com/devilmonastery/biniq/internal/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config      *Config
	ContextName string
	Context     *Context
	Store       localstore.Store
	Client      *client.Client
	API         *api.API
	Logger      *slog.Logger
	Output      string

	stdin *bufio.Reader
}

// Global flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
	contextFlag   string
	outputFormat  string
	metricsFile   string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "biniq",
		Short:         "CLI for the BinIQ API",
		Long:          `A command line interface for BinIQ: products, stores, promotions and the admin dashboard.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging first
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = logger.WithCommand(slog.Default().With("component", "cli"), cmd.CommandPath())
			ctx.Logger.Debug("CLI started")

			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				ctx.Logger.Warn("failed to load .env", slog.String("error", err.Error()))
			}

			switch outputFormat {
			case "text", "json":
			default:
				return fmt.Errorf("unknown output format %q (want text or json)", outputFormat)
			}
			ctx.Output = outputFormat

			// Config commands manage the file themselves
			if isConfigCommand(cmd) {
				cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
				return nil
			}

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = config

			ctx.ContextName = config.CurrentContext
			if contextFlag != "" {
				ctx.ContextName = contextFlag
			}
			ctx.Context, err = config.GetContext(ctx.ContextName)
			if err != nil {
				return err
			}
			ctx.Logger = logger.WithContext(ctx.Logger, ctx.ContextName)

			store, err := NewStateStore(ctx.ContextName)
			if err != nil {
				return fmt.Errorf("failed to open local state: %w", err)
			}
			ctx.Store = store
			ctx.Client = NewAPIClient(ctx.Context, store, slog.Default())
			ctx.API = api.New(ctx.Client, slog.Default())

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newProfileCommand())
	rootCmd.AddCommand(newUsersCommand())
	rootCmd.AddCommand(newFeedbackCommand())
	rootCmd.AddCommand(newProductsCommand())
	rootCmd.AddCommand(newCategoriesCommand())
	rootCmd.AddCommand(newStoresCommand())
	rootCmd.AddCommand(newPromotionsCommand())
	rootCmd.AddCommand(newSubscriptionsCommand())
	rootCmd.AddCommand(newNotificationsCommand())
	rootCmd.AddCommand(newFAQsCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newEndpointsCommand())
	rootCmd.AddCommand(newConfigCommand())

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path, or \"auto\" for the default location (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json, pretty)")

	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "",
		"Write request metrics in Prometheus text format to this file on exit")

	rootCmd.PersistentFlags().StringVar(&contextFlag, "context", "",
		"Config context to use (default: current context)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"Output format (text, json)")

	return rootCmd
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	if logFile == "auto" {
		logFile = logger.GetDefaultLogFile("cli")
	}

	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger
	slog.SetDefault(globalLogger)
	return nil
}

// WriteMetrics writes the metrics gathered during the run to --metrics-file, if set.
// The file can be picked up by the node_exporter textfile collector.
func WriteMetrics() error {
	if metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	slog.Debug("metrics written", slog.String("component", "cli"), slog.String("path", metricsFile))
	return nil
}

// isConfigCommand reports whether cmd is "config" or one of its subcommands
func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
