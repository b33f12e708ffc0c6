package qsim

import (
	"math/cmplx"
)

// Matrix is a dense square complex matrix, row major.
type Matrix [][]complex128

func NewMatrix(size int) Matrix {
	m := make(Matrix, size)
	for i := range m {
		m[i] = make([]complex128, size)
	}
	return m
}

func Identity(size int) Matrix {
	m := NewMatrix(size)
	for i := range m {
		m[i][i] = 1
	}
	return m
}

func (m Matrix) Size() int {
	return len(m)
}

// Mul returns m·o. Both operands must have the same size.
func (m Matrix) Mul(o Matrix) Matrix {
	n := len(m)
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			if m[i][k] == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return out
}

// ConjTranspose returns the adjoint m†.
func (m Matrix) ConjTranspose() Matrix {
	n := len(m)
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[j][i] = cmplx.Conj(m[i][j])
		}
	}
	return out
}

func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i := range m {
		out[i] = append([]complex128(nil), m[i]...)
	}
	return out
}

// Equal compares element-wise within tol.
func (m Matrix) Equal(o Matrix, tol float64) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}
		for j := range m[i] {
			if cmplx.Abs(m[i][j]-o[i][j]) > tol {
				return false
			}
		}
	}
	return true
}
