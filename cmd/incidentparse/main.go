package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"incidentparse/internal/config"
	"incidentparse/internal/logging"
	"incidentparse/internal/pipeline"
	"incidentparse/internal/server"
)

const version = "1.0.0"

var (
	// Global flags
	verbose    bool
	configPath string
	filePath   string
	jsonOutput bool
	serveAddr  string

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "incidentparse",
	Short: "incidentparse - structured incident extraction from free text",
	Long: `incidentparse converts free-text incident reports into a fixed
five-field record (Severity, Component, Timestamp, Suspected_Cause,
Impact_Count) by prompting a hosted LLM and repairing the returned JSON.

When the model is unreachable or returns nothing parseable, a regex-only
heuristic extractor still produces a complete record, tagged as degraded.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logging.Initialize(cfg.Logging.Dir, logging.Options{
			DebugMode:  cfg.Logging.DebugMode || verbose,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("incidentparse %s starting, model=%s", version, cfg.LLM.Model)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// parseCmd runs the pipeline once over a single report.
var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Parse one incident report from an argument, --file, or stdin",
	RunE:  runParse,
}

// serveCmd exposes the pipeline over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parse API over HTTP",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("incidentparse %s\n", version)
	},
}

func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", filePath, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	pipe := pipeline.NewFromConfig(cfg)
	result := pipe.Parse(cmd.Context(), text)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.IsError() {
		logger.Error("parse failed",
			zap.String("kind", string(result.Err.Kind)),
			zap.String("message", result.Err.Message))
		return fmt.Errorf("%s", result.Err.Message)
	}

	rec := result.Record
	fmt.Printf("Severity:        %s\n", rec.Severity)
	fmt.Printf("Component:       %s\n", rec.Component)
	fmt.Printf("Timestamp:       %s\n", rec.Timestamp)
	fmt.Printf("Suspected cause: %s\n", rec.SuspectedCause)
	fmt.Printf("Users affected:  %d\n", rec.ImpactCount)
	if result.Degraded() {
		fmt.Println("(degraded: heuristic extraction, no model response)")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	pipe := pipeline.NewFromConfig(cfg)
	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(pipe).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("parse API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "incidentparse.yaml", "path to config file")

	parseCmd.Flags().StringVarP(&filePath, "file", "f", "", "read the incident report from a file")
	parseCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the raw result as JSON")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
