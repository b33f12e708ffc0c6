package qsim

import (
	"context"
	"time"
)

// Job is one unit of work for the pool.
type Job struct {
	ID          string
	Fn          func(context.Context) (any, error)
	RetryPolicy *RetryPolicy
	TTL         time.Duration
	Attempt     int
	LastError   error
	StartTime   time.Time
}

// JobOption configures a Job at scheduling time.
type JobOption func(*Job)

// WithTTL keeps the job's result in the space for ttl after it is stored.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}
