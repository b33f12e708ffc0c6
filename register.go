package qsim

import (
	"fmt"
	"math"
)

/*
Register is an n-qubit quantum register holding the full joint state: 2^n
complex amplitudes, indexed with qubit 0 as the most significant bit. Gates on
any subset of qubits are applied as unitaries on that subset, so entangled
states and controlled operations are represented exactly.

A Register is not safe for concurrent use; gate application and measurement
mutate it in place.
*/
type Register struct {
	numQubits  int
	amplitudes []complex128
	entangled  bool
	source     Source
	metrics    *Metrics
}

// NewRegister returns n qubits in |0...0⟩.
func NewRegister(n int, opts ...Option) (*Register, error) {
	s := applyOptions(opts)
	if s.err != nil {
		return nil, s.err
	}

	if n < 1 || n > s.config.MaxQubits {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", ErrQubitCount, n, s.config.MaxQubits)
	}

	r := &Register{
		numQubits:  n,
		amplitudes: make([]complex128, 1<<n),
		source:     s.source,
		metrics:    s.metrics,
	}
	r.amplitudes[0] = 1
	return r, nil
}

func (r *Register) NumQubits() int {
	return r.numQubits
}

// IsEntangled reports whether Entangle has been called since the last Reset.
func (r *Register) IsEntangled() bool {
	return r.entangled
}

// Reset returns every qubit to |0⟩.
func (r *Register) Reset() {
	clear(r.amplitudes)
	r.amplitudes[0] = 1
	r.entangled = false
}

// Clone copies the state. The copy shares the random source and metrics.
func (r *Register) Clone() *Register {
	return &Register{
		numQubits:  r.numQubits,
		amplitudes: append([]complex128(nil), r.amplitudes...),
		entangled:  r.entangled,
		source:     r.source,
		metrics:    r.metrics,
	}
}

// StateVector returns a copy of the joint amplitudes.
func (r *Register) StateVector() StateVector {
	return StateVector{
		NumQubits:  r.numQubits,
		Amplitudes: append([]complex128(nil), r.amplitudes...),
	}
}

func (r *Register) Probabilities() map[string]float64 {
	return r.StateVector().Probabilities()
}

// DensityMatrix is ρ = |ψ⟩⟨ψ| of the current state.
func (r *Register) DensityMatrix() Matrix {
	return r.StateVector().DensityMatrix()
}

// Norm is the sum of squared magnitudes, 1 for a valid state.
func (r *Register) Norm() float64 {
	var total float64
	for _, amp := range r.amplitudes {
		total += sqAbs(amp)
	}
	return total
}

func (r *Register) mask(q int) int {
	return 1 << (r.numQubits - 1 - q)
}

func (r *Register) checkIndex(q int) error {
	if q < 0 || q >= r.numQubits {
		return fmt.Errorf("%w: %d (register has %d qubits)", ErrIndexOutOfRange, q, r.numQubits)
	}
	return nil
}

func (r *Register) checkDistinct(qubits []int) error {
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if err := r.checkIndex(q); err != nil {
			return err
		}
		if seen[q] {
			return fmt.Errorf("%w: qubit %d", ErrDuplicateTarget, q)
		}
		seen[q] = true
	}
	return nil
}

/*
ApplyGate applies g to the given qubits, first target as the gate's most
significant qubit. The number of targets must match the gate. On error the
register is left unmodified.
*/
func (r *Register) ApplyGate(g Gate, targets ...int) error {
	return r.ApplyControlled(g, nil, targets...)
}

// ApplyControlled applies g to targets on the basis states where every control is 1.
func (r *Register) ApplyControlled(g Gate, controls []int, targets ...int) error {
	if len(targets) != g.qubits {
		return fmt.Errorf("%w: %s acts on %d qubits, got %d targets", ErrDimensionMismatch, g.name, g.qubits, len(targets))
	}
	if err := r.checkDistinct(append(append([]int(nil), controls...), targets...)); err != nil {
		return err
	}

	r.applyMatrix(g.matrix, targets, controls)
	r.metrics.gateApplied(g.name)
	return nil
}

/*
ApplyMultiQubitGate applies one single-qubit gate per target, in order. All
gates and indices are checked before anything is applied.
*/
func (r *Register) ApplyMultiQubitGate(gates []Gate, targets []int) error {
	if len(gates) != len(targets) {
		return fmt.Errorf("%w: %d gates for %d targets", ErrDimensionMismatch, len(gates), len(targets))
	}
	for i, g := range gates {
		if g.qubits != 1 {
			return fmt.Errorf("%w: %s is not a single-qubit gate", ErrDimensionMismatch, g.name)
		}
		if err := r.checkIndex(targets[i]); err != nil {
			return err
		}
	}

	for i, g := range gates {
		r.applyMatrix(g.matrix, targets[i:i+1], nil)
		r.metrics.gateApplied(g.name)
	}
	return nil
}

// Entangle puts qubits i and j into the Bell pair (|00⟩+|11⟩)/√2 when both start at |0⟩.
func (r *Register) Entangle(i, j int) error {
	if err := r.checkDistinct([]int{i, j}); err != nil {
		return err
	}
	if err := r.ApplyGate(H, i); err != nil {
		return err
	}
	if err := r.ApplyGate(CNOT, i, j); err != nil {
		return err
	}
	r.entangled = true
	return nil
}

/*
applyMatrix multiplies the k-qubit unitary m into every group of 2^k
amplitudes that differ only on the target qubits and have all controls set.
*/
func (r *Register) applyMatrix(m Matrix, targets, controls []int) {
	k := len(targets)
	dim := 1 << k

	offsets := make([]int, dim)
	targetMask := 0
	for t, q := range targets {
		bit := r.mask(q)
		targetMask |= bit
		for l := 0; l < dim; l++ {
			if l&(1<<(k-1-t)) != 0 {
				offsets[l] |= bit
			}
		}
	}

	controlMask := 0
	for _, q := range controls {
		controlMask |= r.mask(q)
	}

	in := make([]complex128, dim)
	for base := range r.amplitudes {
		if base&targetMask != 0 || base&controlMask != controlMask {
			continue
		}
		for l := 0; l < dim; l++ {
			in[l] = r.amplitudes[base|offsets[l]]
		}
		for row := 0; row < dim; row++ {
			var sum complex128
			for col, amp := range in {
				sum += m[row][col] * amp
			}
			r.amplitudes[base|offsets[row]] = sum
		}
	}
}

/*
applyPermutation moves the amplitude of basis state i to f(i). f must be a
bijection on [0, 2^n); it is how classical reversible functions such as
modular multiplication act on the register.
*/
func (r *Register) applyPermutation(f func(int) int) {
	out := make([]complex128, len(r.amplitudes))
	for i, amp := range r.amplitudes {
		if amp != 0 {
			out[f(i)] = amp
		}
	}
	r.amplitudes = out
}

// sample draws a basis index from the Born distribution.
func (r *Register) sample() int {
	x := r.source.Float64()
	last := 0
	var cumulative float64
	for i, amp := range r.amplitudes {
		p := sqAbs(amp)
		if p == 0 {
			continue
		}
		cumulative += p
		last = i
		if x < cumulative {
			return i
		}
	}
	return last
}

// Measure measures every qubit, collapses the register and returns one bit per qubit.
func (r *Register) Measure() []int {
	index := r.sample()

	clear(r.amplitudes)
	r.amplitudes[index] = 1
	r.metrics.measured()

	out := make([]int, r.numQubits)
	for q := range out {
		if index&r.mask(q) != 0 {
			out[q] = 1
		}
	}
	return out
}

// MeasureQubit measures one qubit and collapses the rest of the state consistently.
func (r *Register) MeasureQubit(i int) (int, error) {
	if err := r.checkIndex(i); err != nil {
		return 0, err
	}

	bit := r.mask(i)
	var p1 float64
	for idx, amp := range r.amplitudes {
		if idx&bit != 0 {
			p1 += sqAbs(amp)
		}
	}

	outcome := 0
	if r.source.Float64() < p1 {
		outcome = 1
	}

	keep := p1
	if outcome == 0 {
		keep = 1 - p1
	}
	scale := complex(1/math.Sqrt(keep), 0)

	for idx := range r.amplitudes {
		if (idx&bit != 0) == (outcome == 1) {
			r.amplitudes[idx] *= scale
		} else {
			r.amplitudes[idx] = 0
		}
	}

	r.metrics.measured()
	return outcome, nil
}

// MeasureQubits measures the listed qubits in order.
func (r *Register) MeasureQubits(qubits []int) ([]int, error) {
	if err := r.checkDistinct(qubits); err != nil {
		return nil, err
	}

	out := make([]int, len(qubits))
	for i, q := range qubits {
		bit, err := r.MeasureQubit(q)
		if err != nil {
			return nil, err
		}
		out[i] = bit
	}
	return out, nil
}

// QubitProbabilities is the marginal outcome distribution of qubit i.
func (r *Register) QubitProbabilities(i int) (Probabilities, error) {
	if err := r.checkIndex(i); err != nil {
		return Probabilities{}, err
	}

	var p Probabilities
	bit := r.mask(i)
	for idx, amp := range r.amplitudes {
		if idx&bit != 0 {
			p.P1 += sqAbs(amp)
		} else {
			p.P0 += sqAbs(amp)
		}
	}
	return p, nil
}

/*
Qubit reads qubit i out as a standalone Qubit. This only has a meaning when
the qubit is not entangled with the rest of the register; otherwise
ErrNotSeparable is returned. The global phase of the result is arbitrary.
*/
func (r *Register) Qubit(i int) (*Qubit, error) {
	if err := r.checkIndex(i); err != nil {
		return nil, err
	}

	bit := r.mask(i)

	best, bestWeight := -1, 0.0
	for idx, amp := range r.amplitudes {
		if idx&bit != 0 {
			continue
		}
		if w := sqAbs(amp) + sqAbs(r.amplitudes[idx|bit]); w > bestWeight {
			best, bestWeight = idx, w
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: register state is zero", ErrNotSeparable)
	}

	q := NewQubit(r.amplitudes[best], r.amplitudes[best|bit])

	// Every other pair must be a multiple of (alpha, beta).
	for idx, a0 := range r.amplitudes {
		if idx&bit != 0 {
			continue
		}
		a1 := r.amplitudes[idx|bit]
		if cross := a0*q.beta - a1*q.alpha; sqAbs(cross) > normTolerance {
			return nil, fmt.Errorf("%w: qubit %d", ErrNotSeparable, i)
		}
	}

	return q, nil
}
