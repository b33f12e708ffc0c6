package qsim

import (
	"context"
	"math"
	"math/bits"
	"slices"

	"github.com/theapemachine/errnie"
	"golang.org/x/sync/errgroup"
)

/*
GroverResult is the outcome of one search. Result is the item at the measured
index, and Found is false when the index fell outside the item list (possible
when the list length is not a power of two). Probability is the target's
probability just before measurement.
*/
type GroverResult[T comparable] struct {
	Result      T       `json:"result"`
	Found       bool    `json:"found"`
	Matched     bool    `json:"matched"`
	Index       int     `json:"index"`
	TargetIndex int     `json:"target_index"`
	Iterations  int     `json:"iterations"`
	Probability float64 `json:"probability"`
	NumQubits   int     `json:"num_qubits"`
	Error       string  `json:"error,omitempty"`
}

// GroverIterations is ⌊(π/4)·√(2^n)⌋, the near-optimal iteration count for one marked item.
func GroverIterations(numQubits int) int {
	return int(math.Floor(math.Pi / 4 * math.Sqrt(float64(uint64(1)<<numQubits))))
}

/*
GroverSearch looks for target among items with amplitude amplification over
⌈log2 len(items)⌉ qubits (at least one). The oracle flips the phase of the
target's index; the diffusion operator reflects about the uniform
superposition.

An empty list, a target that is not in the list and a negative iteration
count are reported in the result's Error field. A register that cannot be
allocated is returned as an error.
*/
func GroverSearch[T comparable](items []T, target T, opts ...Option) (GroverResult[T], error) {
	s := applyOptions(opts)

	var res GroverResult[T]
	if s.err != nil {
		return res, s.err
	}

	if len(items) == 0 {
		res.Error = "no items to search"
		s.metrics.algorithmRun("grover", "invalid")
		return res, nil
	}

	res.TargetIndex = slices.Index(items, target)
	if res.TargetIndex < 0 {
		res.Error = "target not in items"
		s.metrics.algorithmRun("grover", "invalid")
		return res, nil
	}

	res.NumQubits = max(1, bits.Len(uint(len(items)-1)))

	res.Iterations = GroverIterations(res.NumQubits)
	if s.fixedIters {
		res.Iterations = s.iterations
	}
	if res.Iterations < 0 {
		res.Error = "iterations must not be negative"
		s.metrics.algorithmRun("grover", "invalid")
		return res, nil
	}

	reg, err := NewRegister(res.NumQubits, s.options()...)
	if err != nil {
		return res, err
	}

	for q := 0; q < res.NumQubits; q++ {
		reg.mustApply(H, nil, q)
	}

	for k := 0; k < res.Iterations; k++ {
		groverOracle(reg, res.TargetIndex)
		groverDiffusion(reg)
	}

	res.Probability = sqAbs(reg.amplitudes[res.TargetIndex])
	res.Index = bitsToIndex(reg.Measure())

	if res.Index < len(items) {
		res.Result = items[res.Index]
		res.Found = true
		res.Matched = res.Index == res.TargetIndex
	}

	outcome := "miss"
	if res.Matched {
		outcome = "hit"
	}
	s.metrics.algorithmRun("grover", outcome)

	errnie.Info(
		"GroverSearch - qubits %d iterations %d target %d measured %d p=%.4f",
		res.NumQubits, res.Iterations, res.TargetIndex, res.Index, res.Probability,
	)

	return res, nil
}

// groverOracle flips the sign of basis state target.
func groverOracle(r *Register, target int) {
	var flipped []int
	for q := 0; q < r.numQubits; q++ {
		if target&r.mask(q) == 0 {
			flipped = append(flipped, q)
		}
	}

	for _, q := range flipped {
		r.mustApply(X, nil, q)
	}
	multiControlledZ(r)
	for _, q := range flipped {
		r.mustApply(X, nil, q)
	}
}

// groverDiffusion is H X (multi-controlled Z) X H on every qubit.
func groverDiffusion(r *Register) {
	for q := 0; q < r.numQubits; q++ {
		r.mustApply(H, nil, q)
		r.mustApply(X, nil, q)
	}
	multiControlledZ(r)
	for q := 0; q < r.numQubits; q++ {
		r.mustApply(X, nil, q)
		r.mustApply(H, nil, q)
	}
}

// multiControlledZ negates |1...1⟩.
func multiControlledZ(r *Register) {
	last := r.numQubits - 1
	controls := make([]int, last)
	for q := range controls {
		controls[q] = q
	}
	r.mustApply(Z, controls, last)
}

// bitsToIndex reads measured bits as a binary number, first bit most significant.
func bitsToIndex(measured []int) int {
	index := 0
	for _, b := range measured {
		index = index<<1 | b
	}
	return index
}

/*
GroverStats aggregates repeated searches. Counts maps measured index to how
often it came up.
*/
type GroverStats struct {
	Trials      int         `json:"trials"`
	Hits        int         `json:"hits"`
	SuccessRate float64     `json:"success_rate"`
	Iterations  int         `json:"iterations"`
	Probability float64     `json:"probability"`
	Counts      map[int]int `json:"counts"`
	Error       string      `json:"error,omitempty"`
}

/*
GroverTrials runs the same search trials times, at most Config.MaxWorkers at
once. Every trial gets its own random source, seeded from the caller's source
before any trial starts, so a seeded run gives the same stats regardless of
scheduling.
*/
func GroverTrials[T comparable](ctx context.Context, items []T, target T, trials int, opts ...Option) (GroverStats, error) {
	s := applyOptions(opts)

	stats := GroverStats{Trials: trials, Counts: make(map[int]int)}
	if s.err != nil {
		return stats, s.err
	}
	if trials < 1 {
		stats.Error = "trials must be positive"
		return stats, nil
	}

	seeds := make([]uint64, trials)
	for i := range seeds {
		seeds[i] = uint64(s.source.Float64()*(1<<53)) + 1
	}

	results := make([]GroverResult[T], trials)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxWorkers)

	for i := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			trialOpts := append(slices.Clone(opts), WithSource(NewSource(seeds[i])))
			res, err := GroverSearch(items, target, trialOpts...)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	if results[0].Error != "" {
		stats.Error = results[0].Error
		return stats, nil
	}

	stats.Iterations = results[0].Iterations
	stats.Probability = results[0].Probability
	for _, res := range results {
		stats.Counts[res.Index]++
		if res.Matched {
			stats.Hits++
		}
	}
	stats.SuccessRate = float64(stats.Hits) / float64(trials)

	return stats, nil
}
