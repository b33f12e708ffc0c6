package qsim

import (
	"math"
	"time"
)

// RetryPolicy defines retry behavior
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Filter      func(error) bool
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay after every failed attempt.
type ExponentialBackoff struct {
	Initial time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
}

// WithRetry configures retry behavior for a job
func WithRetry(attempts int, strategy RetryStrategy) JobOption {
	return func(j *Job) {
		filter := j.RetryPolicy.filter()
		j.RetryPolicy = &RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    strategy,
			Filter:      filter,
		}
	}
}

// WithRetryFilter stops retrying as soon as filter returns false for an error.
func WithRetryFilter(filter func(error) bool) JobOption {
	return func(j *Job) {
		policy := *j.RetryPolicy
		policy.Filter = filter
		j.RetryPolicy = &policy
	}
}

func (p *RetryPolicy) filter() func(error) bool {
	if p == nil {
		return nil
	}
	return p.Filter
}
