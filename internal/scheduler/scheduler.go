package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"rentnest-backend/internal/jobs"
	"rentnest-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner.
// An invalid cron expression in the configuration is returned as an error.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	// Hourly: generate rent applications and pre-due reminders
	if _, err := s.cron.AddFunc(cfg.RentCycle, s.jobs.RunRentCycle); err != nil {
		logger.Error("Failed to register RunRentCycle job", "error", err)
		return fmt.Errorf("register rent cycle job %q: %w", cfg.RentCycle, err)
	}

	// Daily: overdue rent reminders
	if _, err := s.cron.AddFunc(cfg.RentOverdueReminders, s.jobs.SendRentOverdueReminders); err != nil {
		logger.Error("Failed to register SendRentOverdueReminders job", "error", err)
		return fmt.Errorf("register overdue reminder job %q: %w", cfg.RentOverdueReminders, err)
	}

	logger.Info("All cron jobs registered successfully", "jobs", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has jobs registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

// Next returns the next activation time of every registered job
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Schedule.Next(time.Now().UTC()))
	}
	return out
}
