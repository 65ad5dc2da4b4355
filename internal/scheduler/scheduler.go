package scheduler

import (
	"context"
	"fmt"
	"time"

	"committee-notifier/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is what the scheduler fires.
type Job interface {
	RunScheduled(ctx context.Context) error
}

// Scheduler fires the debt job on a cron expression in a fixed zone.
type Scheduler struct {
	cron *cron.Cron
	job  Job
	loc  *time.Location
	log  zerolog.Logger

	// ctx is handed to every run and canceled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers job under a standard 5-field cron schedule, evaluated in loc.
func New(schedule string, loc *time.Location, job Job) (*Scheduler, error) {
	log := logger.WithComponent("scheduler")
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{job: job, loc: loc, log: log, ctx: ctx, cancel: cancel}

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
	)
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to add cron job %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) run() {
	s.log.Info().Msg("Executing scheduled debt notification...")
	if err := s.job.RunScheduled(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("Scheduled debt notification failed")
	}
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info().Time("next_run", e.Next).Msg("Debt notification scheduled")
	}
}

// Stop stops firing, cancels a running job and waits for it to return or
// for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("Scheduler stop timed out with a job still running")
	}
}

// Next returns the next fire time
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now().In(s.loc))
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
