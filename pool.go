package qsim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

// ErrNoWorkers is stored as a job's result when no worker picked it up in time.
var ErrNoWorkers = errors.New("no available workers")

/*
Q is a bounded worker pool. It starts with Config.MinWorkers workers and adds
one whenever a job finds them all busy, up to Config.MaxWorkers. Results are
delivered through a Space, so Schedule returns immediately with a channel.
*/
type Q struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	workers chan chan Job
	jobs    chan Job
	space   *Space
	metrics *Metrics
	config  *Config

	workerMu    sync.Mutex
	workerCount int
}

// NewQ starts a pool that runs until ctx is done or Close is called.
func NewQ(ctx context.Context, config *Config, metrics *Metrics) *Q {
	if config == nil {
		config = NewConfig()
	}

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan Job, config.MaxWorkers*10),
		workers: make(chan chan Job, config.MaxWorkers),
		space:   NewSpace(),
		metrics: metrics,
		config:  config,
	}

	for i := 0; i < config.MinWorkers; i++ {
		q.startWorker()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	return q
}

func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.dispatch(job)
		}
	}
}

func (q *Q) dispatch(job Job) {
	select {
	case workerChan := <-q.workers:
		workerChan <- job
		return
	default:
	}

	q.startWorker()

	select {
	case <-q.ctx.Done():
	case workerChan := <-q.workers:
		workerChan <- job
	case <-time.After(q.config.SchedulingTimeout):
		errnie.Info("Q.dispatch - no worker for job %s", job.ID)
		q.space.Store(job.ID, nil, ErrNoWorkers, job.TTL)
	}
}

/*
Schedule queues fn and returns a channel that receives its result. An empty
id gets a random one. Jobs are tried once unless WithRetry says otherwise.
*/
func (q *Q) Schedule(id string, fn func(context.Context) (any, error), opts ...JobOption) <-chan JobResult {
	if id == "" {
		id = uuid.NewString()
	}

	job := Job{
		ID: id,
		Fn: fn,
		RetryPolicy: &RetryPolicy{
			MaxAttempts: 1,
			Strategy:    &ExponentialBackoff{Initial: time.Millisecond},
		},
		StartTime: time.Now(),
	}

	for _, opt := range opts {
		opt(&job)
	}

	result := q.space.Await(id)

	ctx, cancel := context.WithTimeout(q.ctx, q.config.SchedulingTimeout)
	defer cancel()

	select {
	case q.jobs <- job:
	case <-ctx.Done():
		q.space.Store(id, nil, ctx.Err(), job.TTL)
	}

	return result
}

// startWorker adds a worker unless the pool is already at MaxWorkers.
func (q *Q) startWorker() {
	q.workerMu.Lock()
	defer q.workerMu.Unlock()

	if q.workerCount >= q.config.MaxWorkers {
		return
	}
	q.workerCount++

	worker := &Worker{
		pool: q,
		jobs: make(chan Job, 1),
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run()
	}()
}

// Workers is the number of running workers.
func (q *Q) Workers() int {
	q.workerMu.Lock()
	defer q.workerMu.Unlock()
	return q.workerCount
}

// Close stops the workers and waits for them. A job that is running is abandoned.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.cancel()
	q.wg.Wait()
	q.space.Close()
}
