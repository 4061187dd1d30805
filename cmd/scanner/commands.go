package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gphotos321sync/mediascanner/internal/config"
	"github.com/gphotos321sync/mediascanner/internal/logging"
	"github.com/gphotos321sync/mediascanner/internal/orchestrator"
	"github.com/gphotos321sync/mediascanner/internal/toolcheck"
)

var configPath string

var rootCommand = &cobra.Command{
	Use:   "scanner",
	Short: "Scans a Google Takeout export into a local media catalog",
}

func init() {
	rootCommand.PersistentFlags().StringVar(&configPath, "config", "scanner.yaml", "path to the scanner configuration document")
	rootCommand.AddCommand(scanCommand)
	rootCommand.AddCommand(rescanCommand)
	rootCommand.AddCommand(checkToolsCommand)
}

var scanCommand = &cobra.Command{
	Use:   "scan",
	Short: "Walk the configured media path and update the catalog",
	RunE:  runScan,
}

// rescan is scan by another name: the pipeline is incremental by design
// (C3's content fingerprinting decides unchanged vs. update on every
// run), so there is nothing a dedicated rescan code path would do
// differently. The separate verb exists because operators expect it.
var rescanCommand = &cobra.Command{
	Use:   "rescan",
	Short: "Alias for scan: incremental re-ingestion is always on",
	RunE:  runScan,
}

var checkToolsCommand = &cobra.Command{
	Use:   "check-tools",
	Short: "Report whether exiftool and ffprobe are available on PATH",
	RunE:  runCheckTools,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = logging.WithContext(ctx, logger)

	summary, runErr := orchestrator.Run(ctx, cfg)
	if runErr != nil {
		logger.Error().Err(runErr).Msg("scan failed")
		return runErr
	}

	if cfg.Scanner.Strict && summary.TotalErrors() > 0 {
		return fmt.Errorf("%d file(s) failed during scan (scanner.strict)", summary.TotalErrors())
	}
	return nil
}

func runCheckTools(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	ctx := logging.WithContext(context.Background(), logger)

	availability := toolcheck.Probe(ctx)
	fmt.Printf("exiftool: %v\n", availability.ExiftoolAvailable)
	fmt.Printf("ffprobe:  %v\n", availability.FFprobeAvailable)

	return toolcheck.RequireConfigured(availability, cfg.Scanner.UseExiftool, cfg.Scanner.UseFFprobe)
}
