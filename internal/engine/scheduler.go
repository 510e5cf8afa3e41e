package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/rgclark/putterbase/internal/store"
)

// JobAggregation is the job name used for aggregation runs in job_runs
// and scheduler_locks.
const JobAggregation = "aggregation"

// staleRunCutoff is how old a 'running' job_runs row must be before it
// is considered crashed.
const staleRunCutoff = 2 * time.Hour

// Scheduler runs periodic aggregation cycles. Every run takes a TTL
// database lock first, so overlapping schedules and multiple replicas
// never aggregate concurrently.
type Scheduler struct {
	cron    *cron.Cron
	engine  *Engine
	store   store.Store
	lockTTL time.Duration
	holder  string
	log     *slog.Logger
}

// NewScheduler creates a Scheduler running aggregation at the given
// interval.
func NewScheduler(
	eng *Engine,
	s store.Store,
	interval time.Duration,
	lockTTL time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	sched := &Scheduler{
		cron:    cron.New(),
		engine:  eng,
		store:   s,
		lockTTL: lockTTL,
		holder:  hostname + "-" + uuid.NewString()[:8],
		log:     log,
	}

	if _, err := sched.cron.AddFunc(
		"@every "+interval.String(),
		sched.runAggregation,
	); err != nil {
		return nil, fmt.Errorf("registering aggregation schedule: %w", err)
	}

	return sched, nil
}

// Start recovers stale job runs, then begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.RecoverStaleJobRuns(context.Background())
	s.log.Info("scheduler started", "holder", s.holder)
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to
// finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RecoverStaleJobRuns marks long-dead 'running' rows as crashed.
func (s *Scheduler) RecoverStaleJobRuns(ctx context.Context) {
	n, err := s.store.RecoverStaleJobRuns(ctx, staleRunCutoff)
	if err != nil {
		s.log.Error("recovering stale job runs failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Warn("recovered stale job runs", "count", n)
	}
}

func (s *Scheduler) runAggregation() {
	ctx := context.Background()
	err := s.runJob(ctx, JobAggregation, s.lockTTL, s.engine.RunAllAggregations)
	if err != nil {
		s.log.Error("scheduled aggregation failed", "error", err)
	}
}

// runJob wraps one job execution with the scheduler lock and job_runs
// bookkeeping. Returns nil without running when another holder owns the
// lock.
func (s *Scheduler) runJob(
	ctx context.Context,
	jobName string,
	ttl time.Duration,
	fn func(context.Context) (int, error),
) error {
	acquired, err := s.store.AcquireSchedulerLock(ctx, jobName, s.holder, ttl)
	if err != nil {
		return fmt.Errorf("acquiring lock for %s: %w", jobName, err)
	}
	if !acquired {
		s.log.Info("job lock held elsewhere, skipping", "job", jobName)
		return nil
	}
	defer func() {
		if err := s.store.ReleaseSchedulerLock(ctx, jobName, s.holder); err != nil {
			s.log.Error("releasing job lock failed", "job", jobName, "error", err)
		}
	}()

	runID, err := s.store.InsertJobRun(ctx, jobName)
	if err != nil {
		return fmt.Errorf("recording %s run: %w", jobName, err)
	}

	rows, jobErr := fn(ctx)
	if jobErr != nil {
		if err := s.store.CompleteJobRun(ctx, runID, "failed", jobErr.Error(), rows); err != nil {
			s.log.Error("completing failed job run", "job", jobName, "error", err)
		}
		return jobErr
	}

	if err := s.store.CompleteJobRun(ctx, runID, "succeeded", "", rows); err != nil {
		return fmt.Errorf("completing %s run: %w", jobName, err)
	}
	return nil
}
