package qsim

// CreateBellState returns a two qubit register in (|00⟩+|11⟩)/√2.
func CreateBellState(opts ...Option) (*Register, error) {
	reg, err := NewRegister(2, opts...)
	if err != nil {
		return nil, err
	}

	if err := reg.Entangle(0, 1); err != nil {
		return nil, err
	}

	return reg, nil
}

/*
CreateGHZState returns n qubits in (|0...0⟩+|1...1⟩)/√2: a Hadamard on qubit 0
followed by a CNOT from qubit 0 onto every other qubit. n must be at least 2.
*/
func CreateGHZState(n int, opts ...Option) (*Register, error) {
	if n < 2 {
		return nil, ErrQubitCount
	}

	reg, err := NewRegister(n, opts...)
	if err != nil {
		return nil, err
	}

	reg.mustApply(H, nil, 0)
	for q := 1; q < n; q++ {
		reg.mustApply(CNOT, nil, 0, q)
	}
	reg.entangled = true

	return reg, nil
}
