package qsim

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuit(t *testing.T) {
	Convey("Given a Bell circuit", t, func() {
		c, err := NewCircuit(2, WithSeed(77))
		So(err, ShouldBeNil)
		So(c.AddGate(H, 0), ShouldBeNil)
		So(c.AddGate(CNOT, 0, 1), ShouldBeNil)

		Convey("Nothing should be applied before Run", func() {
			So(c.Len(), ShouldEqual, 2)
			So(c.Probabilities()["00"], ShouldEqual, 1.0)
		})

		Convey("Run should produce the Bell state", func() {
			sv, err := c.Run()
			So(err, ShouldBeNil)
			So(sv.Probability(0), ShouldAlmostEqual, 0.5, 1e-12)
			So(sv.Probability(3), ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("Measurements should always agree and be recorded", func() {
			for range 200 {
				c.Reset()
				_, err := c.Run()
				So(err, ShouldBeNil)

				bits := c.Measure()
				So(bits[0], ShouldEqual, bits[1])
			}
			So(len(c.Measurements()), ShouldEqual, 1)
		})

		Convey("Reset should keep the steps and clear the history", func() {
			_, err := c.Run()
			So(err, ShouldBeNil)
			c.Measure()
			c.Reset()

			So(c.Len(), ShouldEqual, 2)
			So(c.Measurements(), ShouldBeEmpty)
			So(c.Probabilities()["00"], ShouldEqual, 1.0)
		})

		Convey("Bad steps should be rejected when added", func() {
			So(errors.Is(c.AddGate(CNOT, 0, 0), ErrDuplicateTarget), ShouldBeTrue)
			So(errors.Is(c.AddGate(H, 5), ErrIndexOutOfRange), ShouldBeTrue)
			So(errors.Is(c.AddGate(H, 0, 1), ErrDimensionMismatch), ShouldBeTrue)
			So(errors.Is(c.AddNamed("nope", nil, 0), ErrUnknownGate), ShouldBeTrue)
			So(c.Len(), ShouldEqual, 2)
		})

		Convey("Visualize should describe every step", func() {
			views := c.Visualize()
			So(len(views), ShouldEqual, 2)
			So(views[0].Gate, ShouldEqual, "H")
			So(views[1].Gate, ShouldEqual, "CX")
			So(views[1].Targets, ShouldResemble, []int{0, 1})
		})

		Convey("ToQASM should emit OpenQASM 2.0", func() {
			So(c.AddNamed("rz", []float64{math.Pi / 4}, 1), ShouldBeNil)
			So(c.AddControlled(Z, []int{0}, 1), ShouldBeNil)

			qasm := c.ToQASM()
			So(qasm, ShouldStartWith, "OPENQASM 2.0;")
			So(qasm, ShouldContainSubstring, "qreg q[2];")
			So(qasm, ShouldContainSubstring, "h q[0];")
			So(qasm, ShouldContainSubstring, "cx q[0], q[1];")
			So(qasm, ShouldContainSubstring, "rz(pi/4) q[1];")
			So(qasm, ShouldContainSubstring, "cz q[0], q[1];")
			So(qasm, ShouldNotContainSubstring, "measure")

			c.Measure()
			So(c.ToQASM(), ShouldContainSubstring, "measure q[1] -> c[1];")
		})

		Convey("ToQASM should only use qelib1.inc gate names", func() {
			wide, err := NewCircuit(4)
			So(err, ShouldBeNil)
			So(wide.AddGate(I, 0), ShouldBeNil)
			So(wide.AddControlled(TOFFOLI, []int{0}, 1, 2, 3), ShouldBeNil)
			So(wide.AddGate(Prepare(NewQubit(1, 1)), 2), ShouldBeNil)

			qasm := wide.ToQASM()
			So(qasm, ShouldContainSubstring, "\nid q[0];")
			So(qasm, ShouldContainSubstring, "\nc3x q[0], q[1], q[2], q[3];")
			So(qasm, ShouldContainSubstring, "// unsupported: prep q[2];")
			So(qasm, ShouldNotContainSubstring, "cccx")
		})

				Convey("Render should draw one wire per qubit", func() {
			out := c.Render()
			So(strings.Count(out, "\n"), ShouldEqual, 1)
			So(out, ShouldContainSubstring, "[H]")
			So(out, ShouldContainSubstring, "⊕")
		})

		Convey("WriteProbabilities should list the non-zero states", func() {
			_, err := c.Run()
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			So(c.WriteProbabilities(&buf), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "|00⟩")
			So(buf.String(), ShouldContainSubstring, "|11⟩")
			So(buf.String(), ShouldNotContainSubstring, "|01⟩")
		})
	})
}
