package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/robfig/cron/v3"

	"onlinesync/internal/models"
	"onlinesync/internal/providers"
	"onlinesync/internal/scheduler/interfaces"
	"onlinesync/internal/services"
	"onlinesync/internal/structures"
)

var ErrNoInterval = errors.New("schedule interval must be positive")

// cronLogger routes cron's own messages through the app logger.
type cronLogger struct {
	logger providers.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf(providers.TypeApp, "cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorf(providers.TypeApp, "cron: %s: %s %v", msg, err, keysAndValues)
}

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.SyncServiceInterface
	cron    *cron.Cron
	ctx     context.Context
	running sync.WaitGroup

	lastMu  sync.RWMutex
	last    models.Summary
	hasLast bool
}

// Init runs one cycle right away and then one per interval. A tick that
// arrives while a cycle is still running is skipped.
func (s *Scheduler) Init(ctx context.Context) error {
	interval := s.config.Schedule.Interval
	if interval <= 0 {
		return ErrNoInterval
	}
	s.ctx = ctx

	logger := cronLogger{logger: s.logger}
	s.cron = cron.New(cron.WithLogger(logger))
	job := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(s.runCycle))
	s.cron.Schedule(cron.Every(interval), job)

	s.logger.Infof(providers.TypeApp, "Scheduling a sync cycle every %s", interval)
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		job.Run()
	}()
	s.cron.Start()
	return nil
}

func (s *Scheduler) runCycle() {
	summary := s.service.RunCycle(s.ctx)

	s.lastMu.Lock()
	s.last, s.hasLast = summary, true
	s.lastMu.Unlock()

	if summary.Err != nil {
		s.logger.Warnf(providers.TypeApp, "Cycle %s finished with errors, next run in %s", summary.CycleID, s.config.Schedule.Interval)
	}
}

// Stop prevents further runs and waits for the current cycle to return.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.running.Wait()
	s.logger.Infof(providers.TypeApp, "Scheduler stopped")
}

// Last returns the summary of the most recent finished cycle.
func (s *Scheduler) Last() (models.Summary, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last, s.hasLast
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.SyncServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
	}
}
