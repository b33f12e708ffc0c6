package qsim

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGates(t *testing.T) {
	Convey("Given the standard gate library", t, func() {
		gates := []Gate{
			I, X, Y, Z, H, S, Sdg, T, Tdg, CNOT, CZ, SWAP, TOFFOLI,
			RX(0.3), RY(1.1), RZ(-2.4), Phase(math.Pi / 8), CPhase(math.Pi / 4),
		}

		Convey("Every gate should be unitary", func() {
			for _, g := range gates {
				So(g.IsUnitary(1e-12), ShouldBeTrue)
			}
		})

		Convey("Qubit counts should follow the matrix size", func() {
			So(H.Qubits(), ShouldEqual, 1)
			So(CNOT.Qubits(), ShouldEqual, 2)
			So(TOFFOLI.Qubits(), ShouldEqual, 3)
		})

		Convey("X and H should be their own inverse", func() {
			for _, g := range []Gate{X, H, Z, SWAP, CNOT} {
				So(g.matrix.Mul(g.matrix).Equal(Identity(g.matrix.Size()), 1e-12), ShouldBeTrue)
			}
		})

		Convey("S squared should be Z and T squared should be S", func() {
			So(S.matrix.Mul(S.matrix).Equal(Z.matrix, 1e-12), ShouldBeTrue)
			So(T.matrix.Mul(T.matrix).Equal(S.matrix, 1e-12), ShouldBeTrue)
		})

		Convey("Dagger should invert the gate", func() {
			for _, g := range gates {
				d := g.Dagger()
				So(d.matrix.Mul(g.matrix).Equal(Identity(g.matrix.Size()), 1e-12), ShouldBeTrue)
			}

			So(S.Dagger().Name(), ShouldEqual, "SDG")
			So(Tdg.Dagger().Name(), ShouldEqual, "T")
			So(RZ(0.5).Dagger().Params(), ShouldResemble, []float64{-0.5})
		})

		Convey("Controlled X should be CNOT", func() {
			cx := X.Controlled()
			So(cx.Name(), ShouldEqual, "CX")
			So(cx.Matrix().Equal(CNOT.Matrix(), 0), ShouldBeTrue)
			So(CNOT.Controlled().Matrix().Equal(TOFFOLI.Matrix(), 0), ShouldBeTrue)
		})

		Convey("Matrix should return a copy", func() {
			m := X.Matrix()
			m[0][0] = 5
			So(X.matrix[0][0], ShouldEqual, complex128(0))
		})
	})

	Convey("Given gate lookup by name", t, func() {
		Convey("Fixed gates should resolve case-insensitively", func() {
			g, err := GateByName("CX")
			So(err, ShouldBeNil)
			So(g.Name(), ShouldEqual, "CX")

			g, err = GateByName(" h ")
			So(err, ShouldBeNil)
			So(g.Name(), ShouldEqual, "H")
		})

		Convey("Rotations should take exactly one angle", func() {
			g, err := GateByName("rz", math.Pi/2)
			So(err, ShouldBeNil)
			So(g.String(), ShouldEqual, "RZ(pi/2)")

			_, err = GateByName("rz")
			So(errors.Is(err, ErrGateParams), ShouldBeTrue)

			_, err = GateByName("x", 1)
			So(errors.Is(err, ErrGateParams), ShouldBeTrue)
		})

		Convey("Unknown names should fail", func() {
			_, err := GateByName("frobnicate")
			So(errors.Is(err, ErrUnknownGate), ShouldBeTrue)
		})
	})

	Convey("Given a prepared qubit", t, func() {
		q := NewQubit(0.6, complex(0, 0.8))
		g := Prepare(q)

		Convey("The preparation gate should be unitary and map |0⟩ onto it", func() {
			So(g.IsUnitary(1e-12), ShouldBeTrue)

			z := Zero()
			So(z.ApplyGate(g), ShouldBeNil)
			So(approxEqual(z.Alpha(), q.Alpha(), 1e-12), ShouldBeTrue)
			So(approxEqual(z.Beta(), q.Beta(), 1e-12), ShouldBeTrue)
		})
	})
}
