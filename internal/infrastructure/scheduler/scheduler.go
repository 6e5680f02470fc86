// Package scheduler runs maintenance jobs once a day at a configured wall-clock time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Config holds scheduler configuration
type Config struct {
	Enabled bool
	// Hour and Minute of the daily run, local time
	Hour   int
	Minute int
	// CheckInterval is how often the clock is checked
	CheckInterval time.Duration
	// JobTimeout bounds a single job run
	JobTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Hour:          1,
		Minute:        0,
		CheckInterval: time.Minute,
		JobTimeout:    10 * time.Minute,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, c.Minute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ParseCronSchedule reads the minute and hour fields of a daily cron expression
// such as "30 1 * * *". An empty expression yields the 01:00 default.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = 1, 0

	parts := strings.Fields(cronExpr)
	if len(parts) == 0 {
		return hour, minute, nil
	}
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: cron expression %q needs minute and hour fields", ErrInvalidConfig, cronExpr)
	}

	if parts[0] != "*" {
		if minute, err = strconv.Atoi(parts[0]); err != nil {
			return 0, 0, fmt.Errorf("%w: bad minute %q", ErrInvalidConfig, parts[0])
		}
	}
	if parts[1] != "*" {
		if hour, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, fmt.Errorf("%w: bad hour %q", ErrInvalidConfig, parts[1])
		}
	}

	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, minute)
	}
	if hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, hour)
	}
	return hour, minute, nil
}

// Status is a snapshot of the scheduler state
type Status struct {
	Running   bool
	LastRunAt *time.Time
	NextRunAt time.Time
	LastError string
}

// DailyScheduler runs its jobs, in order, once per calendar day at or after the
// configured time. A process started after that time runs them on its first check.
type DailyScheduler struct {
	config Config
	jobs   []Job
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	inProgress  bool
	lastRunDate string
	lastRunAt   *time.Time
	lastErr     error
}

// NewDailyScheduler creates a new scheduler instance
func NewDailyScheduler(cfg Config, logger *zap.Logger, jobs ...Job) (*DailyScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyScheduler{
		config: cfg,
		jobs:   jobs,
		logger: logger.Named("scheduler"),
		now:    time.Now,
	}, nil
}

// Start starts the check loop. It is a no-op when disabled or already running.
func (s *DailyScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Int("jobs", len(s.jobs)),
	)
	return nil
}

// Stop stops the check loop and waits for an in-flight run until ctx is done
func (s *DailyScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DailyScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

func (s *DailyScheduler) checkAndRun(ctx context.Context) {
	now := s.now()
	today := now.Format(time.DateOnly)

	s.mu.Lock()
	if s.lastRunDate == today || !s.due(now) {
		s.mu.Unlock()
		return
	}
	s.lastRunDate = today
	s.mu.Unlock()

	if err := s.RunNow(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		s.logger.Error("Scheduled run failed", zap.Error(err))
	}
}

// due reports whether now is at or past today's scheduled time
func (s *DailyScheduler) due(now time.Time) bool {
	return now.Hour() > s.config.Hour ||
		(now.Hour() == s.config.Hour && now.Minute() >= s.config.Minute)
}

// RunNow runs every job immediately. Jobs run in order; a failing job does not
// stop the ones after it, and the failures are joined into the returned error.
func (s *DailyScheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.inProgress = true
	s.mu.Unlock()

	var errs []error
	for _, job := range s.jobs {
		if err := s.runJob(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	err := errors.Join(errs...)

	finished := s.now()
	s.mu.Lock()
	s.inProgress = false
	s.lastRunAt = &finished
	s.lastErr = err
	s.mu.Unlock()
	return err
}

func (s *DailyScheduler) runJob(ctx context.Context, job Job) error {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	started := s.now()
	s.logger.Info("Running scheduled job", zap.String("job", job.Name()))
	if err := job.Run(jobCtx); err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", job.Name()),
			zap.Duration("elapsed", s.now().Sub(started)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("Scheduled job completed",
		zap.String("job", job.Name()),
		zap.Duration("elapsed", s.now().Sub(started)),
	)
	return nil
}

// Status returns the current scheduler state
func (s *DailyScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.isRunning, LastRunAt: s.lastRunAt, NextRunAt: s.nextRunAt()}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// nextRunAt must be called with mu held. Before today's run it is today's slot,
// which may already lie in the past until the next check picks it up.
func (s *DailyScheduler) nextRunAt() time.Time {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, s.config.Minute, 0, 0, now.Location())
	if s.lastRunDate == now.Format(time.DateOnly) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
