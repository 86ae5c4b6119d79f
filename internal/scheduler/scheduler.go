package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/events"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobInfo describes a registered job for status reporting
type JobInfo struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

// Scheduler manages background jobs.
// Register all jobs before Start; the registry is read without locking
// by the status endpoint afterwards.
type Scheduler struct {
	cron   *cron.Cron
	events *events.Manager
	jobs   []JobInfo
	log    zerolog.Logger
}

// New creates a new scheduler
func New(ev *events.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		events: ev,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// Jobs returns the registered jobs
func (s *Scheduler) Jobs() []JobInfo {
	return s.jobs
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "0 0 3 1 1 *"        - 3 AM on January 1st
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(job)
	})

	if err != nil {
		return err
	}

	s.jobs = append(s.jobs, JobInfo{Name: job.Name(), Schedule: schedule})

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

func (s *Scheduler) run(job Job) {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	start := time.Now()

	if err := job.Run(); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
		s.events.EmitError("scheduler", err, map[string]interface{}{"job": job.Name()})
		return
	}

	s.events.EmitTyped("scheduler", &events.JobCompletedData{
		Job:        job.Name(),
		DurationMS: time.Since(start).Milliseconds(),
	})
	s.log.Debug().Str("job", job.Name()).Msg("Job completed")
}
