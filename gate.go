package qsim

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strings"
)

/*
Gate is an immutable unitary operator on one or more qubits. The matrix is
indexed with the first target qubit as the most significant bit, so for CNOT
the first target is the control.
*/
type Gate struct {
	name   string
	qubits int
	params []float64
	matrix Matrix
}

func newGate(name string, params []float64, m Matrix) Gate {
	return Gate{
		name:   name,
		qubits: bits.TrailingZeros(uint(m.Size())),
		params: params,
		matrix: m,
	}
}

func (g Gate) Name() string {
	return g.name
}

// Qubits is the number of qubits the gate acts on.
func (g Gate) Qubits() int {
	return g.qubits
}

func (g Gate) Params() []float64 {
	return append([]float64(nil), g.params...)
}

// Matrix returns a copy of the gate's unitary.
func (g Gate) Matrix() Matrix {
	return g.matrix.Clone()
}

func (g Gate) String() string {
	if len(g.params) == 0 {
		return g.name
	}
	ps := make([]string, len(g.params))
	for i, p := range g.params {
		ps[i] = formatAngle(p)
	}
	return fmt.Sprintf("%s(%s)", g.name, strings.Join(ps, ","))
}

// IsUnitary checks M†M = I within tol.
func (g Gate) IsUnitary(tol float64) bool {
	return g.matrix.ConjTranspose().Mul(g.matrix).Equal(Identity(g.matrix.Size()), tol)
}

// Dagger returns the adjoint gate.
func (g Gate) Dagger() Gate {
	name := g.name
	params := g.Params()

	switch g.name {
	case "S":
		name = "SDG"
	case "SDG":
		name = "S"
	case "T":
		name = "TDG"
	case "TDG":
		name = "T"
	case "RX", "RY", "RZ", "P", "CP":
		for i := range params {
			params[i] = -params[i]
		}
	case "I", "X", "Y", "Z", "H", "CX", "CZ", "SWAP", "CCX":
	default:
		name += "DG"
	}

	return newGate(name, params, g.matrix.ConjTranspose())
}

// Controlled adds one control qubit in front of the gate's targets.
func (g Gate) Controlled() Gate {
	n := g.matrix.Size()
	m := Identity(2 * n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m[n+i][n+j] = g.matrix[i][j]
		}
	}
	return newGate("C"+g.name, g.Params(), m)
}

const invSqrt2 = 1 / math.Sqrt2

var (
	I = newGate("I", nil, Matrix{
		{1, 0},
		{0, 1},
	})

	X = newGate("X", nil, Matrix{
		{0, 1},
		{1, 0},
	})

	Y = newGate("Y", nil, Matrix{
		{0, -1i},
		{1i, 0},
	})

	Z = newGate("Z", nil, Matrix{
		{1, 0},
		{0, -1},
	})

	H = newGate("H", nil, Matrix{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	})

	S = newGate("S", nil, Matrix{
		{1, 0},
		{0, 1i},
	})

	Sdg = S.Dagger()

	T = newGate("T", nil, Matrix{
		{1, 0},
		{0, cmplx.Exp(complex(0, math.Pi/4))},
	})

	Tdg = T.Dagger()

	CNOT = newGate("CX", nil, Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})

	CZ = newGate("CZ", nil, Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, -1},
	})

	SWAP = newGate("SWAP", nil, Matrix{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})

	TOFFOLI = newGate("CCX", nil, toffoliMatrix())
)

func toffoliMatrix() Matrix {
	m := Identity(8)
	m[6][6], m[6][7] = 0, 1
	m[7][6], m[7][7] = 1, 0
	return m
}

func RX(theta float64) Gate {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return newGate("RX", []float64{theta}, Matrix{
		{c, s},
		{s, c},
	})
}

func RY(theta float64) Gate {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return newGate("RY", []float64{theta}, Matrix{
		{c, -s},
		{s, c},
	})
}

func RZ(theta float64) Gate {
	return newGate("RZ", []float64{theta}, Matrix{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	})
}

// Phase multiplies the |1⟩ amplitude by e^(iθ).
func Phase(theta float64) Gate {
	return newGate("P", []float64{theta}, Matrix{
		{1, 0},
		{0, cmplx.Exp(complex(0, theta))},
	})
}

// CPhase is the controlled phase rotation. It is symmetric in its two qubits.
func CPhase(theta float64) Gate {
	return newGate("CP", []float64{theta}, Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, cmplx.Exp(complex(0, theta))},
	})
}

/*
GateByName resolves OpenQASM style names (h, cx, rz, ccx, ...) to gates.
Parameterized gates take exactly one angle.
*/
func GateByName(name string, params ...float64) (Gate, error) {
	fixed := map[string]Gate{
		"i": I, "id": I, "x": X, "y": Y, "z": Z, "h": H,
		"s": S, "sdg": Sdg, "t": T, "tdg": Tdg,
		"cx": CNOT, "cnot": CNOT, "cz": CZ, "swap": SWAP,
		"ccx": TOFFOLI, "toffoli": TOFFOLI,
	}
	rotations := map[string]func(float64) Gate{
		"rx": RX, "ry": RY, "rz": RZ,
		"p": Phase, "u1": Phase, "phase": Phase,
		"cp": CPhase, "cu1": CPhase,
	}

	key := strings.ToLower(strings.TrimSpace(name))

	if g, ok := fixed[key]; ok {
		if len(params) != 0 {
			return Gate{}, fmt.Errorf("%w: %s takes no parameters, got %d", ErrGateParams, name, len(params))
		}
		return g, nil
	}

	if ctor, ok := rotations[key]; ok {
		if len(params) != 1 {
			return Gate{}, fmt.Errorf("%w: %s takes 1 parameter, got %d", ErrGateParams, name, len(params))
		}
		return ctor(params[0]), nil
	}

	return Gate{}, fmt.Errorf("%w: %q", ErrUnknownGate, name)
}

// formatAngle prints common fractions of pi symbolically.
func formatAngle(val float64) string {
	forms := []struct {
		value   float64
		display string
	}{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
	}

	for _, f := range forms {
		if math.Abs(val-f.value) < 1e-10 {
			return f.display
		}
		if math.Abs(val+f.value) < 1e-10 {
			return "-" + f.display
		}
	}

	return fmt.Sprintf("%g", val)
}

// Prepare returns a single-qubit unitary that takes |0⟩ to q. q must be
// normalized; a zero qubit gives the zero matrix.
func Prepare(q *Qubit) Gate {
	a, b := q.alpha, q.beta
	return newGate("PREP", nil, Matrix{
		{a, -cmplx.Conj(b)},
		{b, cmplx.Conj(a)},
	})
}
