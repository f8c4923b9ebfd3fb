// Package scheduler runs configured template crawls on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/crawl"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CrawlRunner runs one template crawl.
type CrawlRunner interface {
	Run(ctx context.Context, opts crawl.Options) (crawl.Result, error)
}

// CrawlScheduler crawls the configured templates one after another on every
// tick. A tick that fires while the previous one is still crawling is skipped.
type CrawlScheduler struct {
	cfg    config.Schedule
	runner CrawlRunner

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isCrawling bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func NewCrawlScheduler(cfg config.Schedule, runner CrawlRunner) *CrawlScheduler {
	return &CrawlScheduler{
		cfg:    cfg,
		runner: runner,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if scheduling is enabled.
func (s *CrawlScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		slog.Info("crawl scheduler disabled")
		return nil
	}

	if len(s.cfg.Templates) == 0 {
		slog.Warn("crawl scheduler enabled without templates, skipping")
		return nil
	}

	if err := ValidateSchedule(s.cfg.Cron); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Cron, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Cron, s.runCrawls)
	if err != nil {
		return fmt.Errorf("failed to schedule crawl job: %w", err)
	}
	s.entryID = entryID

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRun(s.cfg.Cron, time.Now())
	slog.Info("crawl scheduler started",
		"schedule", s.cfg.Cron,
		"templates", s.cfg.Templates,
		"next_run", nextRun)

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop cancels an in-flight crawl and waits for it to return.
func (s *CrawlScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()

	slog.Info("crawl scheduler stopped")
}

// RunNow triggers an immediate round of crawls.
func (s *CrawlScheduler) RunNow() {
	go s.runCrawls()
}

func (s *CrawlScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *CrawlScheduler) IsCrawling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isCrawling
}

// NextRunTime returns when the next round will start, or nil when stopped.
func (s *CrawlScheduler) NextRunTime() *time.Time {
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

func (s *CrawlScheduler) runCrawls() {
	s.mu.Lock()
	if s.isCrawling {
		s.mu.Unlock()
		slog.Info("scheduled crawl skipped, previous round still running")
		return
	}
	s.isCrawling = true
	ctx := s.ctx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isCrawling = false
		s.mu.Unlock()
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	for _, name := range s.cfg.Templates {
		if ctx.Err() != nil {
			return
		}
		// each template is independent; one failure does not stop the round
		if _, err := s.runner.Run(ctx, crawl.Options{Template: name, Trigger: crawl.TriggerSchedule}); err != nil {
			slog.Error("scheduled crawl failed", "template", name, "error", err)
		}
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRun returns the first activation of schedule after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}
