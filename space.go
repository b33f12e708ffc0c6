package qsim

import (
	"sync"
	"time"
)

// JobResult wraps a job's return value with metadata
type JobResult struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

/*
Space holds job results by ID. Await can be called before or after the result
is stored; either way the returned channel receives it exactly once. Results
with a TTL are dropped once it has passed.
*/
type Space struct {
	mu      sync.Mutex
	values  map[string]JobResult
	waiting map[string][]chan JobResult
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func NewSpace() *Space {
	space := &Space{
		values:  make(map[string]JobResult),
		waiting: make(map[string][]chan JobResult),
		done:    make(chan struct{}),
	}

	space.wg.Add(1)
	go func() {
		defer space.wg.Done()
		space.cleanup(time.Minute)
	}()

	return space
}

// Store stores a value with its metadata and wakes everyone waiting on id.
func (space *Space) Store(id string, value any, err error, ttl time.Duration) {
	space.mu.Lock()
	defer space.mu.Unlock()

	result := JobResult{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	space.values[id] = result

	for _, ch := range space.waiting[id] {
		ch <- result
		close(ch)
	}
	delete(space.waiting, id)
}

// Await returns a channel that will receive the value when it's available
func (space *Space) Await(id string) <-chan JobResult {
	space.mu.Lock()
	defer space.mu.Unlock()

	ch := make(chan JobResult, 1)

	if result, ok := space.values[id]; ok {
		ch <- result
		close(ch)
		return ch
	}

	space.waiting[id] = append(space.waiting[id], ch)
	return ch
}

func (space *Space) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-space.done:
			return
		case <-ticker.C:
			space.expire(time.Now())
		}
	}
}

func (space *Space) expire(now time.Time) {
	space.mu.Lock()
	defer space.mu.Unlock()

	for id, result := range space.values {
		if result.TTL > 0 && now.Sub(result.CreatedAt) > result.TTL {
			delete(space.values, id)
		}
	}
}

// Close stops the cleanup loop. Stored values stay readable.
func (space *Space) Close() {
	space.once.Do(func() {
		close(space.done)
	})
	space.wg.Wait()
}
