package qsim

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/theapemachine/errnie"
)

/*
Metrics counts simulator activity. The counters are exported as Prometheus
collectors and mirrored in-process so ExportMetrics works without a scrape.
All methods are safe on a nil *Metrics, which records nothing.
*/
type Metrics struct {
	mu sync.RWMutex

	gates        *prometheus.CounterVec
	measurements prometheus.Counter
	runs         *prometheus.CounterVec
	jobDuration  prometheus.Histogram

	GatesApplied      int64
	Measurements      int64
	JobCount          int64
	JobSuccessRate    float64
	AverageJobLatency time.Duration
	P95JobLatency     time.Duration
	P99JobLatency     time.Duration

	successes      int64
	latencyWindows []time.Duration
	windowSize     int
}

// NewMetrics registers the collectors on reg, or on a private registry if reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		gates: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qsim_gates_applied_total",
			Help: "Gates applied to registers, by gate name.",
		}, []string{"gate"})),
		measurements: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qsim_measurements_total",
			Help: "Register and qubit measurements.",
		})),
		runs: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qsim_algorithm_runs_total",
			Help: "Algorithm runs, by algorithm and outcome.",
		}, []string{"algorithm", "outcome"})),
		jobDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qsim_job_duration_seconds",
			Help:    "Duration of pool jobs.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		})),
		latencyWindows: make([]time.Duration, 0, 1000),
		windowSize:     1000,
	}
}

// register reuses an already registered collector of the same shape.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		errnie.Info("NewMetrics - collector not registered: %v", err)
	}
	return c
}

func (m *Metrics) gateApplied(name string) {
	if m == nil {
		return
	}
	m.gates.WithLabelValues(name).Inc()

	m.mu.Lock()
	m.GatesApplied++
	m.mu.Unlock()
}

func (m *Metrics) measured() {
	if m == nil {
		return
	}
	m.measurements.Inc()

	m.mu.Lock()
	m.Measurements++
	m.mu.Unlock()
}

func (m *Metrics) algorithmRun(algorithm, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(algorithm, outcome).Inc()
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	if m == nil {
		return
	}
	duration := time.Since(startTime)
	m.jobDuration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobCount++
	if success {
		m.successes++
	}
	m.JobSuccessRate = float64(m.successes) / float64(m.JobCount)
	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = (m.AverageJobLatency*time.Duration(m.JobCount-1) + duration) / time.Duration(m.JobCount)

	m.latencyWindows = append(m.latencyWindows, duration)
	if len(m.latencyWindows) > m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}

	sorted := append([]time.Duration(nil), m.latencyWindows...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	m.P95JobLatency = sorted[min(int(float64(len(sorted))*0.95), len(sorted)-1)]
	m.P99JobLatency = sorted[min(int(float64(len(sorted))*0.99), len(sorted)-1)]
}

func (m *Metrics) ExportMetrics() map[string]any {
	if m == nil {
		return map[string]any{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"gates_applied": m.GatesApplied,
		"measurements":  m.Measurements,
		"job_count":     m.JobCount,
		"success_rate":  m.JobSuccessRate,
		"avg_latency":   m.AverageJobLatency.Milliseconds(),
		"p95_latency":   m.P95JobLatency.Milliseconds(),
		"p99_latency":   m.P99JobLatency.Milliseconds(),
	}
}
