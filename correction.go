package qsim

import (
	"fmt"

	"github.com/theapemachine/errnie"
)

/*
Three qubit repetition codes and the nine qubit Shor code. The encoders load a
single qubit into qubit 0 of a fresh register and spread it over the block.
DecodeBitFlip and DecodePhaseFlip read the block out by measurement and
majority vote; DecodeShor corrects unitarily and hands back the logical qubit.
*/

// EncodeBitFlip maps α|0⟩+β|1⟩ to α|000⟩+β|111⟩.
func EncodeBitFlip(q *Qubit, opts ...Option) (*Register, error) {
	if err := checkPreparable(q); err != nil {
		return nil, err
	}

	reg, err := NewRegister(3, opts...)
	if err != nil {
		return nil, err
	}

	reg.mustApply(Prepare(q), nil, 0)
	reg.mustApply(CNOT, nil, 0, 1)
	reg.mustApply(CNOT, nil, 0, 2)

	return reg, nil
}

// DecodeBitFlip measures the block and returns the majority as |0⟩ or |1⟩.
func DecodeBitFlip(r *Register) (*Qubit, error) {
	if err := checkBlockSize(r, 3); err != nil {
		return nil, err
	}
	return majorityQubit(r.Measure()), nil
}

// EncodePhaseFlip maps α|0⟩+β|1⟩ to α|+++⟩+β|−−−⟩.
func EncodePhaseFlip(q *Qubit, opts ...Option) (*Register, error) {
	reg, err := EncodeBitFlip(q, opts...)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 3; i++ {
		reg.mustApply(H, nil, i)
	}

	return reg, nil
}

// DecodePhaseFlip rotates the block back to the computational basis, then measures and votes.
func DecodePhaseFlip(r *Register) (*Qubit, error) {
	if err := checkBlockSize(r, 3); err != nil {
		return nil, err
	}

	for i := 0; i < 3; i++ {
		r.mustApply(H, nil, i)
	}
	return majorityQubit(r.Measure()), nil
}

/*
CorrectBitFlip undoes a single X error on the repetition block (a, b, c) in
place. Afterwards a holds the logical qubit and b, c hold the syndrome.
*/
func CorrectBitFlip(r *Register, a, b, c int) error {
	if err := r.checkDistinct([]int{a, b, c}); err != nil {
		return err
	}

	r.mustApply(CNOT, nil, a, b)
	r.mustApply(CNOT, nil, a, c)
	r.mustApply(TOFFOLI, nil, b, c, a)

	return nil
}

// EncodeShor spreads q over nine qubits, protecting it from any single qubit error.
func EncodeShor(q *Qubit, opts ...Option) (*Register, error) {
	if err := checkPreparable(q); err != nil {
		return nil, err
	}

	reg, err := NewRegister(9, opts...)
	if err != nil {
		return nil, err
	}

	reg.mustApply(Prepare(q), nil, 0)
	reg.mustApply(CNOT, nil, 0, 3)
	reg.mustApply(CNOT, nil, 0, 6)

	for _, lead := range []int{0, 3, 6} {
		reg.mustApply(H, nil, lead)
		reg.mustApply(CNOT, nil, lead, lead+1)
		reg.mustApply(CNOT, nil, lead, lead+2)
	}

	return reg, nil
}

/*
DecodeShor corrects at most one X, Y or Z error and returns the logical qubit,
up to a global phase. Bit flips are fixed per block of three, phase flips
across the block leaders 0, 3 and 6.
*/
func DecodeShor(r *Register) (*Qubit, error) {
	if err := checkBlockSize(r, 9); err != nil {
		return nil, err
	}

	for _, lead := range []int{0, 3, 6} {
		if err := CorrectBitFlip(r, lead, lead+1, lead+2); err != nil {
			return nil, err
		}
		r.mustApply(H, nil, lead)
	}

	if err := CorrectBitFlip(r, 0, 3, 6); err != nil {
		return nil, err
	}

	q, err := r.Qubit(0)
	if err != nil {
		return nil, err
	}

	errnie.Info("DecodeShor - recovered %s", q)
	return q, nil
}

// MajorityVote returns 1 when more than half of bits are 1.
func MajorityVote(bits ...int) int {
	ones := 0
	for _, b := range bits {
		ones += b
	}
	if 2*ones > len(bits) {
		return 1
	}
	return 0
}

func majorityQubit(bits []int) *Qubit {
	if MajorityVote(bits...) == 1 {
		return One()
	}
	return Zero()
}

// checkPreparable rejects qubits that Prepare cannot turn into a unitary.
func checkPreparable(q *Qubit) error {
	if q == nil || sqAbs(q.alpha)+sqAbs(q.beta) == 0 {
		return ErrZeroState
	}
	return nil
}

func checkBlockSize(r *Register, n int) error {
	if r.numQubits != n {
		return fmt.Errorf("%w: code block needs %d qubits, register has %d", ErrQubitCount, n, r.numQubits)
	}
	return nil
}
