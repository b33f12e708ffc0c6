package qsim

import (
	"fmt"
	"math"
)

// normTolerance is the slack allowed on |alpha|²+|beta|² = 1.
const normTolerance = 1e-9

/*
Qubit is a single, unentangled qubit: alpha is the |0⟩ amplitude and beta the
|1⟩ amplitude. Measurement collapses the qubit, so measuring the same instance
again returns the same bit.
*/
type Qubit struct {
	alpha complex128
	beta  complex128
}

// NewQubit returns the normalized state alpha|0⟩ + beta|1⟩.
func NewQubit(alpha, beta complex128) *Qubit {
	q := &Qubit{alpha: alpha, beta: beta}
	q.Normalize()
	return q
}

// Zero returns |0⟩.
func Zero() *Qubit {
	return &Qubit{alpha: 1}
}

// One returns |1⟩.
func One() *Qubit {
	return &Qubit{beta: 1}
}

func (q *Qubit) Alpha() complex128 {
	return q.alpha
}

func (q *Qubit) Beta() complex128 {
	return q.beta
}

/*
Normalize rescales the amplitudes so their squared magnitudes sum to 1. A
qubit with both amplitudes at zero is left as it is.
*/
func (q *Qubit) Normalize() {
	norm := math.Sqrt(sqAbs(q.alpha) + sqAbs(q.beta))
	if norm == 0 {
		return
	}
	q.alpha /= complex(norm, 0)
	q.beta /= complex(norm, 0)
}

// ApplyGate multiplies the amplitude pair by a single-qubit gate.
func (q *Qubit) ApplyGate(g Gate) error {
	if g.qubits != 1 {
		return fmt.Errorf("%w: %s acts on %d qubits, a qubit takes 1", ErrDimensionMismatch, g.name, g.qubits)
	}

	m := g.matrix
	q.alpha, q.beta = m[0][0]*q.alpha+m[0][1]*q.beta, m[1][0]*q.alpha+m[1][1]*q.beta
	q.Normalize()
	return nil
}

// Measure draws 0 with probability |alpha|², otherwise 1, and collapses.
func (q *Qubit) Measure(src Source) int {
	if src.Float64() < sqAbs(q.alpha) {
		q.alpha, q.beta = 1, 0
		return 0
	}
	q.alpha, q.beta = 0, 1
	return 1
}

// Probabilities holds the outcome distribution of one qubit.
type Probabilities struct {
	P0 float64 `json:"p0"`
	P1 float64 `json:"p1"`
}

func (q *Qubit) Probabilities() Probabilities {
	return Probabilities{P0: sqAbs(q.alpha), P1: sqAbs(q.beta)}
}

func (q *Qubit) Clone() *Qubit {
	return &Qubit{alpha: q.alpha, beta: q.beta}
}

func (q *Qubit) String() string {
	return fmt.Sprintf("(%.4f)|0⟩ + (%.4f)|1⟩", q.alpha, q.beta)
}

func sqAbs(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}
