package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var ErrSchedulerRunning = errors.New("reminder scheduler already running")

type scanRunner interface {
	Scan(ctx context.Context) (Summary, error)
}

// Scheduler triggers scan passes on a cron schedule. A tick that fires while the previous
// pass is still running is skipped.
type Scheduler struct {
	scanner  scanRunner
	spec     string
	location *time.Location
	logger   *logrus.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

func NewScheduler(scanner scanRunner, spec string, location *time.Location, logger *logrus.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		scanner:  scanner,
		spec:     spec,
		location: location,
		logger:   logger,
	}
}

// Start parses the schedule and begins running passes in the background.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerRunning
	}

	cronLogger := cron.PrintfLogger(s.logger)
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.AddFunc(s.spec, func() { s.tick(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("reminder schedule %q: %w", s.spec, err)
	}

	c.Start()
	s.cron = c
	s.cancel = cancel
	s.running = true
	s.logger.WithField("schedule", s.spec).Info("Reminder.Scheduler.Started")
	return nil
}

// Stop halts the schedule and abandons any in-flight pass. The returned context is done
// once the running job has returned.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	s.running = false
	s.cancel()
	s.logger.Info("Reminder.Scheduler.Stopped")
	return s.cron.Stop()
}

// Running reports whether the automation loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.scanner.Scan(ctx); err != nil {
		s.logger.WithError(err).Error("Reminder.Scheduler.Scan")
	}
}
