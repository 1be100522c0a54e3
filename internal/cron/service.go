package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/salon-retail/pkg/logger"
	"github.com/angelmondragon/salon-retail/pkg/metrics"
)

const defaultInterval = time.Hour

// Job is one maintenance task executed by the sweeper loop.
type Job interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// ServiceParams configure the sweeper loop.
type ServiceParams struct {
	Logger   *logger.Logger
	Jobs     []Job
	Lock     Lock
	Metrics  *metrics.JobMetrics
	Interval time.Duration
}

// Service runs its jobs on a fixed cadence while holding the lock.
type Service struct {
	logg     *logger.Logger
	jobs     []Job
	lock     Lock
	metrics  *metrics.JobMetrics
	interval time.Duration
}

// NewService builds a sweeper service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	jobs := make([]Job, 0, len(params.Jobs))
	for _, job := range params.Jobs {
		if job != nil {
			jobs = append(jobs, job)
		}
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("at least one job required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		jobs:     jobs,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run sweeps once immediately and then every interval until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.runCycle(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logg.Error(ctx, "sweep.lock_failed", err)
		return
	}
	if !locked {
		s.logg.Info(ctx, "sweep.skipped")
		for _, job := range s.jobs {
			s.metrics.ObserveRun(job.Name(), metrics.JobResultSkipped, 0)
		}
		return
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "sweep.unlock_failed", err)
		}
	}()

	for _, job := range s.jobs {
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	removed, err := job.Run(jobCtx)
	duration := time.Since(start)

	jobCtx = s.logg.WithFields(jobCtx, map[string]any{
		"duration_ms":  duration.Milliseconds(),
		"rows_removed": removed,
	})
	if err != nil {
		s.logg.Error(jobCtx, "sweep.job_failed", err)
		s.metrics.ObserveRun(job.Name(), metrics.JobResultFailure, duration)
		return
	}
	s.metrics.AddRemoved(job.Name(), removed)
	s.metrics.ObserveRun(job.Name(), metrics.JobResultSuccess, duration)
	s.logg.Info(jobCtx, "sweep.job_completed")
}
