package qsim

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const testTimeout = 5 * time.Second

func testConfig() *Config {
	cfg := NewConfig()
	cfg.MinWorkers = 1
	cfg.MaxWorkers = 3
	cfg.SchedulingTimeout = time.Second
	cfg.JobTimeout = time.Second
	return cfg
}

func await(ch <-chan JobResult) JobResult {
	select {
	case value := <-ch:
		return value
	case <-time.After(testTimeout):
		return JobResult{Error: errors.New("test timed out waiting for result")}
	}
}

func TestPool(t *testing.T) {
	Convey("Given a new pool", t, func() {
		metrics := NewMetrics(nil)
		q := NewQ(context.Background(), testConfig(), metrics)

		Reset(func() {
			q.Close()
		})

		Convey("When scheduling a simple job", func() {
			value := await(q.Schedule("simple", func(context.Context) (any, error) {
				return "success", nil
			}))

			So(value.Error, ShouldBeNil)
			So(value.Value, ShouldEqual, "success")
			So(metrics.ExportMetrics()["job_count"], ShouldEqual, int64(1))
		})

		Convey("When scheduling without an id", func() {
			value := await(q.Schedule("", func(context.Context) (any, error) {
				return 42, nil
			}))
			So(value.Value, ShouldEqual, 42)
		})

		Convey("When scheduling a job with retries", func() {
			var attempts atomic.Int32
			value := await(q.Schedule("retry", func(context.Context) (any, error) {
				if attempts.Add(1) < 3 {
					return nil, errors.New("temporary error")
				}
				return "success after retry", nil
			}, WithRetry(3, &ExponentialBackoff{Initial: time.Millisecond})))

			So(value.Error, ShouldBeNil)
			So(value.Value, ShouldEqual, "success after retry")
			So(attempts.Load(), ShouldEqual, 3)
		})

		Convey("When the retry filter rejects an error", func() {
			permanent := errors.New("permanent")
			var attempts atomic.Int32

			value := await(q.Schedule("filtered", func(context.Context) (any, error) {
				attempts.Add(1)
				return nil, permanent
			},
				WithRetry(5, &ExponentialBackoff{Initial: time.Millisecond}),
				WithRetryFilter(func(err error) bool { return !errors.Is(err, permanent) }),
			))

			So(errors.Is(value.Error, permanent), ShouldBeTrue)
			So(attempts.Load(), ShouldEqual, 1)
		})

		Convey("When a job outlives the job timeout", func() {
			value := await(q.Schedule("slow", func(ctx context.Context) (any, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(3 * time.Second):
					return "too late", nil
				}
			}))

			So(errors.Is(value.Error, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("When many jobs arrive at once", func() {
			release := make(chan struct{})
			waits := make([]<-chan JobResult, 3)
			for i := range waits {
				waits[i] = q.Schedule("", func(context.Context) (any, error) {
					<-release
					return i, nil
				})
			}
			close(release)

			for i, wait := range waits {
				value := await(wait)
				So(value.Error, ShouldBeNil)
				So(value.Value, ShouldEqual, i)
			}
			So(q.Workers(), ShouldBeBetweenOrEqual, 1, 3)
		})
	})
}

func TestExponentialBackoff(t *testing.T) {
	Convey("Given an exponential backoff", t, func() {
		eb := &ExponentialBackoff{Initial: 10 * time.Millisecond}

		Convey("The delay should double per attempt", func() {
			So(eb.NextDelay(1), ShouldEqual, 10*time.Millisecond)
			So(eb.NextDelay(2), ShouldEqual, 20*time.Millisecond)
			So(eb.NextDelay(4), ShouldEqual, 80*time.Millisecond)
		})
	})
}
