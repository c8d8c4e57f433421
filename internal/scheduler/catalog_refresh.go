package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/events"
	"github.com/mrlokans/wordmark/internal/providers"
)

// DefaultSchedule refreshes remote catalogs every six hours.
const DefaultSchedule = "0 */6 * * *"

// RefreshRecorder persists when the last refresh finished.
type RefreshRecorder interface {
	SetLastCatalogRefresh(ctx context.Context, at time.Time) error
}

// RefreshSummary is published with events.CatalogRefreshed.
type RefreshSummary struct {
	Refreshed map[entities.ProviderName]int `json:"refreshed"`
	Skipped   []entities.ProviderName       `json:"skipped"`
	At        time.Time                     `json:"at"`
}

// CatalogRefreshScheduler periodically re-fetches remote font catalogs whose
// TTL has passed.
type CatalogRefreshScheduler struct {
	providers []providers.Provider
	bus       *events.Bus
	recorder  RefreshRecorder
	schedule  string
	timeout   time.Duration

	cron         *cron.Cron
	entryID      cron.EntryID
	mu           sync.RWMutex
	isRunning    bool
	isRefreshing bool
	cancelFunc   context.CancelFunc
}

// NewCatalogRefreshScheduler creates a scheduler over ps. Providers that do
// not implement providers.Refresher are ignored. recorder may be nil.
func NewCatalogRefreshScheduler(schedule string, bus *events.Bus, recorder RefreshRecorder, ps ...providers.Provider) *CatalogRefreshScheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &CatalogRefreshScheduler{
		providers: ps,
		bus:       bus,
		recorder:  recorder,
		schedule:  schedule,
		timeout:   5 * time.Minute,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *CatalogRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runRefresh(false)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule catalog refresh: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule)
	logrus.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"next_run": nextRun,
	}).Info("Catalog refresh scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *CatalogRefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// Waiting happens unlocked: a running refresh takes the lock to finish.
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)
	if cancel != nil {
		cancel()
	}

	logrus.Info("Catalog refresh scheduler stopped")
}

// RunNow refreshes every remote catalog immediately, expired or not.
func (s *CatalogRefreshScheduler) RunNow() {
	go s.runRefresh(true)
}

// IsRunning returns whether the scheduler is active.
func (s *CatalogRefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsRefreshing returns whether a refresh is in progress.
func (s *CatalogRefreshScheduler) IsRefreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRefreshing
}

// NextRunTime returns when the next refresh will occur, or nil when stopped.
func (s *CatalogRefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *CatalogRefreshScheduler) runRefresh(force bool) {
	s.mu.Lock()
	if s.isRefreshing {
		s.mu.Unlock()
		logrus.Info("Catalog refresh skipped, already refreshing")
		return
	}
	s.isRefreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRefreshing = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	summary := s.refresh(ctx, force)

	if s.recorder != nil {
		if err := s.recorder.SetLastCatalogRefresh(ctx, summary.At); err != nil {
			logrus.WithError(err).Warn("Failed to record catalog refresh time")
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.CatalogRefreshed, summary)
	}
}

func (s *CatalogRefreshScheduler) refresh(ctx context.Context, force bool) RefreshSummary {
	summary := RefreshSummary{Refreshed: make(map[entities.ProviderName]int)}
	for _, p := range s.providers {
		r, ok := p.(providers.Refresher)
		if !ok {
			continue
		}
		if !force && !r.Expired() {
			summary.Skipped = append(summary.Skipped, p.Name())
			continue
		}

		start := time.Now()
		records := r.Refresh(ctx)
		summary.Refreshed[p.Name()] = len(records)

		logrus.WithFields(logrus.Fields{
			"provider": p.Name(),
			"count":    len(records),
			"duration": time.Since(start).Round(time.Millisecond),
		}).Info("Catalog refreshed")
	}
	summary.At = time.Now()
	return summary
}

// ValidateCronSchedule validates a five-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime calculates when schedule fires next.
func NextRunTime(schedule string) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
