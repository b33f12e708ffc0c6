package qsim

import (
	"errors"
	"math/cmplx"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fidelity is |⟨a|b⟩|², 1 when the states match up to a global phase.
func fidelity(a, b *Qubit) float64 {
	overlap := cmplx.Conj(a.Alpha())*b.Alpha() + cmplx.Conj(a.Beta())*b.Beta()
	return sqAbs(overlap)
}

func TestMajorityVote(t *testing.T) {
	Convey("Given three bits", t, func() {
		So(MajorityVote(0, 0, 0), ShouldEqual, 0)
		So(MajorityVote(1, 0, 0), ShouldEqual, 0)
		So(MajorityVote(1, 0, 1), ShouldEqual, 1)
		So(MajorityVote(1, 1, 1), ShouldEqual, 1)
	})
}

func TestBitFlipCode(t *testing.T) {
	Convey("Given an encoded |1⟩", t, func() {
		reg, err := EncodeBitFlip(One(), WithSeed(6))
		So(err, ShouldBeNil)
		So(reg.Probabilities()["111"], ShouldAlmostEqual, 1.0, 1e-12)

		Convey("A single flipped qubit should be outvoted", func() {
			for q := range 3 {
				r := reg.Clone()
				So(r.ApplyGate(X, q), ShouldBeNil)

				decoded, err := DecodeBitFlip(r)
				So(err, ShouldBeNil)
				So(decoded.Probabilities().P1, ShouldEqual, 1.0)
			}
		})
	})

	Convey("Given an encoded superposition", t, func() {
		in := NewQubit(0.6, 0.8)
		reg, err := EncodeBitFlip(in, WithSeed(6))
		So(err, ShouldBeNil)

		Convey("It should be α|000⟩ + β|111⟩", func() {
			p := reg.Probabilities()
			So(p["000"], ShouldAlmostEqual, 0.36, 1e-12)
			So(p["111"], ShouldAlmostEqual, 0.64, 1e-12)
		})

		Convey("CorrectBitFlip should restore it unitarily", func() {
			for q := range 3 {
				r := reg.Clone()
				So(r.ApplyGate(X, q), ShouldBeNil)
				So(CorrectBitFlip(r, 0, 1, 2), ShouldBeNil)

				out, err := r.Qubit(0)
				So(err, ShouldBeNil)
				So(fidelity(in, out), ShouldAlmostEqual, 1.0, 1e-9)
			}
		})

		Convey("The wrong block size should be rejected", func() {
			big, err := NewRegister(4)
			So(err, ShouldBeNil)
			_, err = DecodeBitFlip(big)
			So(errors.Is(err, ErrQubitCount), ShouldBeTrue)
		})
	})

	Convey("Given a qubit with both amplitudes zero", t, func() {
		zero := NewQubit(0, 0)

		Convey("Every encoder should refuse it", func() {
			_, err := EncodeBitFlip(zero)
			So(errors.Is(err, ErrZeroState), ShouldBeTrue)

			_, err = EncodePhaseFlip(zero)
			So(errors.Is(err, ErrZeroState), ShouldBeTrue)

			_, err = EncodeShor(zero)
			So(errors.Is(err, ErrZeroState), ShouldBeTrue)

			_, err = EncodeBitFlip(nil)
			So(errors.Is(err, ErrZeroState), ShouldBeTrue)
		})
	})
}

func TestPhaseFlipCode(t *testing.T) {
	Convey("Given an encoded |1⟩", t, func() {
		reg, err := EncodePhaseFlip(One(), WithSeed(12))
		So(err, ShouldBeNil)

		Convey("A single phase flip should be corrected", func() {
			for q := range 3 {
				r := reg.Clone()
				So(r.ApplyGate(Z, q), ShouldBeNil)

				decoded, err := DecodePhaseFlip(r)
				So(err, ShouldBeNil)
				So(decoded.Probabilities().P1, ShouldEqual, 1.0)
			}
		})
	})
}

func TestShorCode(t *testing.T) {
	Convey("Given a qubit encoded in the nine qubit code", t, func() {
		in := NewQubit(0.6, complex(0, 0.8))
		reg, err := EncodeShor(in, WithSeed(13))
		So(err, ShouldBeNil)

		Convey("It should decode cleanly without errors", func() {
			out, err := DecodeShor(reg)
			So(err, ShouldBeNil)
			So(fidelity(in, out), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("Any single X, Y or Z error should be corrected", func() {
			for _, g := range []Gate{X, Y, Z} {
				for q := range 9 {
					r := reg.Clone()
					So(r.ApplyGate(g, q), ShouldBeNil)

					out, err := DecodeShor(r)
					So(err, ShouldBeNil)
					So(fidelity(in, out), ShouldAlmostEqual, 1.0, 1e-9)
				}
			}
		})
	})
}
