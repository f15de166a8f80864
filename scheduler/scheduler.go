// Package scheduler runs the initial dataset load and, when REFRESH_AT is set, the
// scheduled reloads that replace the whole snapshot.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/interfaces"
	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/metrics"
	"github.com/giygas/vetref/monograph"
	"github.com/giygas/vetref/validation"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler loads data into the store using the injected parser
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.Parser
	refreshAt string
	scheduler *gocron.Scheduler

	stopOnce sync.Once
	stop     chan struct{}
}

// NewScheduler creates a scheduler. An empty refreshAt disables scheduled reloads.
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser, refreshAt string) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		refreshAt: refreshAt,
		scheduler: gocron.NewScheduler(time.Local),
		stop:      make(chan struct{}),
	}
}

// Start performs the initial load, then schedules the reloads. A failed initial
// load is returned; scheduled reloads still run so the service can recover.
func (s *Scheduler) Start() error {
	loadErr := s.Refresh(context.Background())
	if loadErr != nil {
		logging.Error("Failed to perform initial data load", "error", loadErr)
	}

	if s.refreshAt == "" {
		logging.Info("Scheduled reloads disabled")
		return loadErr
	}

	_, err := s.scheduler.Every(1).Days().At(s.refreshAt).Do(func() {
		if err := s.Refresh(context.Background()); err != nil {
			logging.Error("Failed to reload data", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	if loadErr != nil {
		return fmt.Errorf("initial data load failed: %w", loadErr)
	}
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.scheduler.Stop()
	})
}

// Refresh loads both datasets and installs them with a fresh monograph index.
// It is a no-op while another refresh is running.
func (s *Scheduler) Refresh(ctx context.Context) error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting dataset load", "at", time.Now().Format(time.RFC3339))
	start := time.Now()

	vetlek, vidal, err := s.parser.ParseAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load datasets: %w", err)
	}

	report := validation.NewDataValidator().ReportDataQuality(vetlek, vidal)
	validation.LogReport(report)

	metrics.DatasetRecords.WithLabelValues(string(entities.SourceVetLek)).Set(float64(len(vetlek)))
	metrics.DatasetRecords.WithLabelValues(string(entities.SourceVidal)).Set(float64(len(vidal)))

	s.dataStore.UpdateData(vetlek, vidal, monograph.NewLoader(s.parser.FetchMonographs))

	logging.Info("Dataset load completed",
		"duration", time.Since(start).String(),
		"vetlek", len(vetlek),
		"vidal", len(vidal))
	return nil
}

// startHealthMonitoring warns when scheduled reloads stop succeeding
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if time.Since(s.dataStore.GetLastUpdated()) > 25*time.Hour {
					logging.Warn("Data hasn't been reloaded in over 25 hours")
				}
			}
		}
	}()
}
