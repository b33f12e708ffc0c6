package qsim

import (
	"context"
	"math/rand/v2"
	"time"
)

// Source is the random draw used by measurement. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a PCG generator for the seed, or a time-seeded one for 0.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type settings struct {
	ctx        context.Context
	config     *Config
	source     Source
	metrics    *Metrics
	iterations int
	fixedIters bool
	err        error
}

// Option configures registers, circuits and the algorithm drivers.
type Option func(*settings)

// WithConfig replaces the default Config. It is validated when the options
// are applied; an invalid one makes the call fail with ErrInvalidConfig.
func WithConfig(cfg *Config) Option {
	return func(s *settings) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithSource injects the random source used for measurement.
func WithSource(src Source) Option {
	return func(s *settings) {
		s.source = src
	}
}

// WithSeed makes measurement reproducible.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.source = NewSource(seed)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithIterations overrides the Grover iteration count. Zero is allowed.
func WithIterations(k int) Option {
	return func(s *settings) {
		s.iterations = k
		s.fixedIters = true
	}
}

// withContext lets a long simulation stop between phases once ctx is done.
func withContext(ctx context.Context) Option {
	return func(s *settings) {
		s.ctx = ctx
	}
}

func applyOptions(opts []Option) *settings {
	s := &settings{ctx: context.Background(), config: NewConfig()}
	for _, opt := range opts {
		opt(s)
	}
	s.err = s.config.Validate()
	if s.source == nil {
		s.source = NewSource(s.config.Seed)
	}
	return s
}

// options turns resolved settings back into options, so a driver can hand
// its own source and metrics to the registers it creates.
func (s *settings) options() []Option {
	return []Option{WithConfig(s.config), WithSource(s.source), WithMetrics(s.metrics)}
}
