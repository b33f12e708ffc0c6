package qsim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/theapemachine/errnie"
)

// shorAttemptError carries a failed run so the last one can be reported.
type shorAttemptError struct {
	result ShorResult
}

func (e *shorAttemptError) Error() string {
	return fmt.Sprintf("a=%d: %s", e.result.A, e.result.Error)
}

// retryable reports whether another run with the same base could succeed.
func (e *shorAttemptError) retryable() bool {
	return e.result.Error == shorOddPeriod || e.result.Error == shorTrivialFactors
}

/*
Factorize runs ShorFactor over the bases 2, 3, ..., n-1 on a worker pool,
Config.MaxWorkers bases at a time, and returns the first success in base
order. Each base gets Config.ShorMaxAttempts runs, since an odd period or
trivial factors only mean an unlucky measurement. A base that shares a factor
with n splits it directly.

If no base works, the last failed run is returned with its Error set.
*/
func Factorize(ctx context.Context, n uint64, opts ...Option) (ShorResult, error) {
	s := applyOptions(opts)
	if s.err != nil {
		return ShorResult{N: n}, s.err
	}

	if n < 4 || n%2 == 0 {
		return ShorFactor(n, 2, s.options()...)
	}

	pool := NewQ(ctx, s.config, s.metrics)
	defer pool.Close()

	last := ShorResult{N: n, Error: "no base produced a factorization"}
	batch := s.config.MaxWorkers

	for start := uint64(2); start < n; start += uint64(batch) {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		end := min(start+uint64(batch), n)

		waits := make([]<-chan JobResult, 0, end-start)
		for a := start; a < end; a++ {
			waits = append(waits, pool.Schedule(
				fmt.Sprintf("shor-%d-%d", n, a),
				factorJob(n, a, s),
				WithRetry(s.config.ShorMaxAttempts, &ExponentialBackoff{Initial: time.Millisecond}),
				WithRetryFilter(func(err error) bool {
					var attempt *shorAttemptError
					return errors.As(err, &attempt) && attempt.retryable()
				}),
			))
		}

		var found *ShorResult
		for _, wait := range waits {
			var out JobResult
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case out = <-wait:
			}

			var attempt *shorAttemptError
			switch {
			case out.Error == nil:
				if res := out.Value.(ShorResult); found == nil {
					found = &res
				}
			case errors.As(out.Error, &attempt):
				last = attempt.result
			default:
				return last, out.Error
			}
		}

		if found != nil {
			slices.Sort(found.Factors)
			errnie.Info("Factorize - %d = %d x %d (a=%d)", n, found.Factors[0], found.Factors[1], found.A)
			return *found, nil
		}
	}

	return last, nil
}

/*
factorJob returns the pool function for base a. The random source is seeded
from the caller's source now, while scheduling is still sequential.
*/
func factorJob(n, a uint64, s *settings) func(context.Context) (any, error) {
	seed := uint64(s.source.Float64()*(1<<53)) + 1
	opts := []Option{WithConfig(s.config), WithSource(NewSource(seed)), WithMetrics(s.metrics)}

	return func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if g := GCD(a, n); g != 1 {
			return ShorResult{N: n, A: a, Factors: []uint64{g, n / g}}, nil
		}

		res, err := ShorFactor(n, a, append(opts, withContext(ctx))...)
		if err != nil {
			return nil, err
		}
		if !res.OK() {
			return nil, &shorAttemptError{result: res}
		}
		return res, nil
	}
}
