package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/errs"
)

// Job is one recurring task. Run must be idempotent: the scheduler gives
// no delivery guarantee beyond "at most one execution of a job at a time",
// and a tick may be skipped when the worker pool is saturated.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

type job struct {
	Job
	inFlight atomic.Bool
}

// Scheduler ticks each registered job on its own interval and dispatches
// executions through a bounded worker pool, so independent jobs run
// concurrently without an unbounded goroutine count. A job whose previous
// execution is still running skips the tick instead of queueing.
type Scheduler struct {
	jobs  []*job
	limit int
}

// New creates a scheduler whose pool admits at most limit concurrent job
// executions.
func New(limit int) *Scheduler {
	if limit <= 0 {
		limit = 3
	}
	return &Scheduler{limit: limit}
}

func (s *Scheduler) Register(j Job) error {
	if j.Name == "" {
		return errors.New("job name is required")
	}
	if j.Every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", j.Name)
	}
	if j.Run == nil {
		return fmt.Errorf("job %s: run function is required", j.Name)
	}
	for _, existing := range s.jobs {
		if existing.Name == j.Name {
			return fmt.Errorf("job %s already registered", j.Name)
		}
	}
	s.jobs = append(s.jobs, &job{Job: j})
	return nil
}

// Run executes every job once immediately, then on its interval, until ctx
// is cancelled. Job errors are logged and never stop the scheduler; the
// next tick is the retry.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return errors.New("no jobs registered")
	}

	pool, poolCtx := errgroup.WithContext(ctx)
	pool.SetLimit(s.limit)

	logging.Info(ctx, "scheduler started",
		slog.Int("jobs", len(s.jobs)), slog.Int("pool_limit", s.limit))

	var tickers sync.WaitGroup
	for _, j := range s.jobs {
		tickers.Add(1)
		go func(j *job) {
			defer tickers.Done()

			s.dispatch(poolCtx, pool, j)

			ticker := time.NewTicker(j.Every)
			defer ticker.Stop()
			for {
				select {
				case <-poolCtx.Done():
					return
				case <-ticker.C:
					s.dispatch(poolCtx, pool, j)
				}
			}
		}(j)
	}

	tickers.Wait()
	if err := pool.Wait(); err != nil {
		return errs.Wrap(err, "scheduler pool")
	}

	logging.Info(ctx, "scheduler stopped")
	return errs.Wrap(ctx.Err(), "scheduler stopped")
}

func (s *Scheduler) dispatch(ctx context.Context, pool *errgroup.Group, j *job) {
	jobCtx := logging.WithAttrs(ctx, slog.String("job", j.Name))

	if !j.inFlight.CompareAndSwap(false, true) {
		logging.Warn(jobCtx, "previous run still in progress, skipping tick")
		return
	}

	started := pool.TryGo(func() error {
		defer j.inFlight.Store(false)

		start := time.Now()
		if err := j.Run(jobCtx); err != nil {
			logging.Error(jobCtx, "job run failed", slog.Any("err", errs.Loggable(err)))
			return nil
		}
		logging.Info(jobCtx, "job run finished",
			slog.Duration("took", time.Since(start).Round(time.Millisecond)))
		return nil
	})
	if !started {
		j.inFlight.Store(false)
		logging.Warn(jobCtx, "worker pool saturated, skipping tick")
	}
}
