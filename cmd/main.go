package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photodup/config"
	"photodup/logger"
	"photodup/output"
	"photodup/scanner"
	"photodup/systeminfo"
	"photodup/tracing"
)

func main() {
	if err := tracing.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start trace: %v\n", err)
	} else {
		defer tracing.Stop()
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.LogLevel)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg, os.Stdout); err != nil {
		tracing.Stop()
		if errors.Is(err, context.Canceled) {
			logger.Warn("Scan interrupted; no report written.")
			os.Exit(130)
		}
		logger.Fatalf("Scan failed: %v", err)
	}
}

// run scans the archive and publishes the report. Nothing is written when the
// context is cancelled before the report is complete.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	startTime := time.Now()
	metrics := output.Metrics{
		StartTime: startTime.Format(time.RFC3339),
	}

	writer, err := output.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize output: %w", err)
	}

	sysInfo, err := systeminfo.GetSystemInfo(cfg)
	if err != nil {
		logger.Errorf("Failed to gather system information: %v", err)
	}

	res, err := scanner.ScanFiles(ctx, cfg, &metrics)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	metrics.EndTime = time.Now().Format(time.RFC3339)
	rep := output.Build(output.Input{
		Root:        res.Root,
		Strategy:    res.Strategy,
		Algorithm:   res.Algorithm,
		Verified:    res.Verified,
		Groups:      res.Groups,
		Diagnostics: res.Diagnostics,
		Census:      res.Census,
		Metrics:     metrics,
		SystemInfo:  sysInfo,
	})
	if err := writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Infof("Report written to %s in %s", writer.Path(), time.Since(startTime).Round(time.Millisecond))
	return output.PrintSummary(stdout, rep, writer.Path())
}

func handleSignals(cancelFunc context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	handleSignalEvent(cancelFunc, sigChan)
}

func handleSignalEvent(cancelFunc context.CancelFunc, sigChan <-chan os.Signal) {
	<-sigChan
	logger.Info("Interrupt signal received. Shutting down...")
	cancelFunc()
}
