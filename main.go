package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/vetref/config"
	"github.com/giygas/vetref/data"
	"github.com/giygas/vetref/datasetparser"
	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/report"
	"github.com/giygas/vetref/scheduler"
	"github.com/giygas/vetref/server"
)

func main() {
	// .env next to the binary when started from elsewhere
	if err := godotenv.Load(); err != nil {
		if ex, err := os.Executable(); err == nil {
			_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.InitLoggerWithRetention(cfg.LogDir, cfg.Env, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	source, err := datasetparser.NewSourceFromConfig(ctx, cfg)
	cancel()
	if err != nil {
		logging.Error("Failed to configure data source", "driver", cfg.DataDriver, "error", err)
		os.Exit(1)
	}

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	parser := datasetparser.NewDatasetParser(source, datasetparser.PathsFromConfig(cfg))
	sched := scheduler.NewScheduler(dataContainer, parser, cfg.RefreshAt)
	if err := sched.Start(); err != nil {
		// the service still answers, with 503 until a load succeeds
		logging.Warn("Serving without data until a reload succeeds", "error", err)
	}
	defer sched.Stop()

	sender := report.NewHTTPSender(cfg.ReportURL, cfg.ReportLinkBase, cfg.ReportTimeout)
	srv := server.NewServer(cfg, dataContainer, sender)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		logging.Error("Server failed to start", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}
