// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a maintenance task the scheduler can run.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs jobs on cron schedules. Every scheduled job is wrapped so a
// panic is logged instead of crashing the process, and a run is skipped
// while the previous run of the same job is still in progress.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu    sync.Mutex
	names []string
}

// New creates a scheduler whose cron expressions carry a seconds field.
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.Jobs())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job on schedule, e.g. "0 */15 * * * *" or "@every 30s".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if _, err := s.cron.AddJob(schedule, runner{job: job, log: s.log}); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}

	s.mu.Lock()
	s.names = append(s.names, job.Name())
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// Jobs returns the names of the registered jobs in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// RunNow runs job once on the calling goroutine, outside its schedule.
// A panic in the job is returned as an error.
func (s *Scheduler) RunNow(job Job) (err error) {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run()
}

// runner adapts a Job to cron.Job and logs its outcome.
type runner struct {
	job Job
	log zerolog.Logger
}

func (r runner) Run() {
	r.log.Debug().Str("job", r.job.Name()).Msg("Running job")
	if err := r.job.Run(); err != nil {
		r.log.Error().Err(err).Str("job", r.job.Name()).Msg("Job failed")
		return
	}
	r.log.Debug().Str("job", r.job.Name()).Msg("Job completed")
}

// cronLogger routes cron's own messages (skips, recovered panics) to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
