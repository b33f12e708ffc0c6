package qsim

import (
	"encoding/json"
	"fmt"
)

/*
StateVector is a snapshot of a register's joint amplitudes. Index k holds the
amplitude of the basis state whose binary label is k, with qubit 0 as the most
significant bit. Snapshots are copies; later gates on the register do not
change them.
*/
type StateVector struct {
	NumQubits  int
	Amplitudes []complex128
}

// Label is the n-character basis string of index.
func (s StateVector) Label(index int) string {
	return fmt.Sprintf("%0*b", s.NumQubits, index)
}

func (s StateVector) Labels() []string {
	labels := make([]string, len(s.Amplitudes))
	for i := range s.Amplitudes {
		labels[i] = s.Label(i)
	}
	return labels
}

// Map returns basis label -> amplitude for every basis state.
func (s StateVector) Map() map[string]complex128 {
	out := make(map[string]complex128, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		out[s.Label(i)] = amp
	}
	return out
}

// Amplitude looks a basis state up by label.
func (s StateVector) Amplitude(label string) (complex128, bool) {
	var index int
	if len(label) != s.NumQubits {
		return 0, false
	}
	for _, c := range label {
		index <<= 1
		switch c {
		case '0':
		case '1':
			index |= 1
		default:
			return 0, false
		}
	}
	return s.Amplitudes[index], true
}

func (s StateVector) Probability(index int) float64 {
	return sqAbs(s.Amplitudes[index])
}

// Probabilities returns basis label -> squared magnitude.
func (s StateVector) Probabilities() map[string]float64 {
	out := make(map[string]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		out[s.Label(i)] = sqAbs(amp)
	}
	return out
}

/*
DensityMatrix is the outer product ρ[i][j] = ψ[i]·conj(ψ[j]). It has 4^n
entries, keep n small.
*/
func (s StateVector) DensityMatrix() Matrix {
	n := len(s.Amplitudes)
	rho := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rho[i][j] = s.Amplitudes[i] * complex(real(s.Amplitudes[j]), -imag(s.Amplitudes[j]))
		}
	}
	return rho
}

// MarshalJSON writes amplitudes as label -> [re, im], skipping zeros.
func (s StateVector) MarshalJSON() ([]byte, error) {
	amps := make(map[string][2]float64)
	for i, amp := range s.Amplitudes {
		if amp == 0 {
			continue
		}
		amps[s.Label(i)] = [2]float64{real(amp), imag(amp)}
	}
	return json.Marshal(struct {
		NumQubits  int                   `json:"num_qubits"`
		Amplitudes map[string][2]float64 `json:"amplitudes"`
	}{s.NumQubits, amps})
}
