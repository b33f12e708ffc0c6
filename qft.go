package qsim

import "math"

/*
QFT applies the quantum Fourier transform to the given qubits, the first one
taken as the most significant bit. With no qubits the whole register is
transformed. For a basis state |j⟩ over N = 2^k states the result is
Σ_y e^(2πi·j·y/N) |y⟩ / √N.
*/
func QFT(r *Register, qubits ...int) error {
	qs, err := r.resolveQubits(qubits)
	if err != nil {
		return err
	}

	for i := range qs {
		r.mustApply(H, nil, qs[i])
		for j := i + 1; j < len(qs); j++ {
			r.mustApply(CPhase(math.Pi/float64(uint64(1)<<(j-i))), nil, qs[j], qs[i])
		}
	}

	for i := 0; i < len(qs)/2; i++ {
		r.mustApply(SWAP, nil, qs[i], qs[len(qs)-1-i])
	}

	return nil
}

// InverseQFT undoes QFT on the same qubits.
func InverseQFT(r *Register, qubits ...int) error {
	qs, err := r.resolveQubits(qubits)
	if err != nil {
		return err
	}

	for i := 0; i < len(qs)/2; i++ {
		r.mustApply(SWAP, nil, qs[i], qs[len(qs)-1-i])
	}

	for i := len(qs) - 1; i >= 0; i-- {
		for j := len(qs) - 1; j > i; j-- {
			r.mustApply(CPhase(-math.Pi/float64(uint64(1)<<(j-i))), nil, qs[j], qs[i])
		}
		r.mustApply(H, nil, qs[i])
	}

	return nil
}

// resolveQubits defaults to every qubit and validates an explicit list.
func (r *Register) resolveQubits(qubits []int) ([]int, error) {
	if len(qubits) == 0 {
		all := make([]int, r.numQubits)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	if err := r.checkDistinct(qubits); err != nil {
		return nil, err
	}
	return qubits, nil
}

// mustApply is for indices that were validated up front.
func (r *Register) mustApply(g Gate, controls []int, targets ...int) {
	if err := r.ApplyControlled(g, controls, targets...); err != nil {
		panic(err)
	}
}
