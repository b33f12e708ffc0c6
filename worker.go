package qsim

import (
	"context"
	"fmt"
	"time"

	"github.com/theapemachine/errnie"
)

// Worker processes jobs
type Worker struct {
	pool *Q
	jobs chan Job
}

func (w *Worker) run() {
	ctx := w.pool.ctx

	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			result, err := w.processJob(job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

func (w *Worker) processJob(job Job) (any, error) {
	result, err := w.executeWithRetries(job)
	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)
	return result, err
}

func (w *Worker) executeWithRetries(job Job) (any, error) {
	for job.Attempt = 0; job.Attempt < job.RetryPolicy.MaxAttempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := job.RetryPolicy.Strategy.NextDelay(job.Attempt)
			select {
			case <-w.pool.ctx.Done():
				return nil, w.pool.ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := w.attempt(job)
		if err == nil {
			return result, nil
		}

		job.LastError = err
		errnie.Info("Worker.executeWithRetries - job %s attempt %d failed: %v", job.ID, job.Attempt+1, err)

		if job.RetryPolicy.Filter != nil && !job.RetryPolicy.Filter(err) {
			break
		}
	}
	return nil, fmt.Errorf("all retries failed for job %s: %w", job.ID, job.LastError)
}

/*
attempt runs the job once, giving up when Config.JobTimeout passes. The job
function keeps running after a timeout until it next looks at its context, so
long jobs should check ctx between steps.
*/
func (w *Worker) attempt(job Job) (any, error) {
	ctx, cancel := context.WithTimeout(w.pool.ctx, w.pool.config.JobTimeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		value, err := job.Fn(ctx)
		done <- outcome{value, err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, fmt.Errorf("job %s: %w", job.ID, ctx.Err())
	}
}
