package qsim

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/theapemachine/errnie"
)

/*
ShorResult reports one run of the period finding circuit. Soft failures (bad
inputs, an odd period, trivial factors) leave Factors empty and explain
themselves in Error; they are expected outcomes and the caller retries with a
different base.
*/
type ShorResult struct {
	N               uint64   `json:"n"`
	A               uint64   `json:"a"`
	MeasuredValue   uint64   `json:"measured_value"`
	CountingQubits  int      `json:"counting_qubits"`
	WorkQubits      int      `json:"work_qubits"`
	EstimatedPeriod uint64   `json:"estimated_period"`
	Factors         []uint64 `json:"factors,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// OK reports whether the run produced two non-trivial factors.
func (r ShorResult) OK() bool {
	return r.Error == "" && len(r.Factors) == 2
}

const (
	maxPeriodMultiple = 4

	shorOddPeriod      = "period is odd, retry with different a"
	shorTrivialFactors = "trivial factors, retry"
)

/*
ShorFactor tries to split n with base a. A counting register of ⌈log2 n²⌉
qubits is put in uniform superposition, a work register of ⌈log2 n⌉ qubits
starts at 1 and the modular exponentiation |x⟩|w⟩ → |x⟩|w·a^x mod n⟩ is
applied as a permutation. The QFT of the counting register is measured and
turned into a period estimate r, and gcd(a^(r/2) ± 1, n) gives the factors.

Even n is split classically. Hard errors are an invalid config, a register
that needs more qubits than the configuration allows, and a cancelled context
(see withContext), which is checked between the circuit's phases.
*/
func ShorFactor(n, a uint64, opts ...Option) (ShorResult, error) {
	s := applyOptions(opts)
	res := ShorResult{N: n, A: a}
	if s.err != nil {
		return res, s.err
	}

	fail := func(msg string) (ShorResult, error) {
		res.Error = msg
		s.metrics.algorithmRun("shor", "failed")
		errnie.Info("ShorFactor - n %d a %d: %s", n, a, msg)
		return res, nil
	}

	switch {
	case n < 3:
		return fail("n must be at least 3")
	case n%2 == 0:
		res.Factors = []uint64{2, n / 2}
		s.metrics.algorithmRun("shor", "classical")
		return res, nil
	case a < 2 || a >= n:
		return fail(fmt.Sprintf("a must satisfy 1 < a < %d", n))
	}

	if g := GCD(a, n); g != 1 {
		return fail(fmt.Sprintf("gcd(%d, %d) = %d, a is not coprime to n", a, n, g))
	}

	if bits.Len64(n) > maxSupportedQubits {
		return res, fmt.Errorf("%w: %d is too large to simulate", ErrQubitCount, n)
	}

	res.CountingQubits = bits.Len64(n*n - 1)
	res.WorkQubits = bits.Len64(n - 1)
	total := res.CountingQubits + res.WorkQubits

	reg, err := NewRegister(total, s.options()...)
	if err != nil {
		return res, err
	}

	counting := make([]int, res.CountingQubits)
	for q := range counting {
		counting[q] = q
		reg.mustApply(H, nil, q)
	}
	reg.mustApply(X, nil, total-1)

	if err := s.ctx.Err(); err != nil {
		return res, err
	}
	modularExponentiation(reg, a, n, res.CountingQubits, res.WorkQubits)

	if err := s.ctx.Err(); err != nil {
		return res, err
	}
	if err := QFT(reg, counting...); err != nil {
		return res, err
	}

	measured, err := reg.MeasureQubits(counting)
	if err != nil {
		return res, err
	}
	res.MeasuredValue = uint64(bitsToIndex(measured))

	maxDen := s.config.ShorMaxDenominator
	estimate := EstimatePeriod(res.MeasuredValue, res.CountingQubits, maxDen)
	res.EstimatedPeriod = refinePeriod(a, n, estimate, res.MeasuredValue, res.CountingQubits, uint64(maxDen))

	errnie.Info(
		"ShorFactor - n %d a %d qubits %d+%d measured %d period %d",
		n, a, res.CountingQubits, res.WorkQubits, res.MeasuredValue, res.EstimatedPeriod,
	)

	r := res.EstimatedPeriod
	if r%2 != 0 {
		return fail(shorOddPeriod)
	}

	x := ModPow(a, r/2, n)
	f1, f2 := GCD(x+n-1, n), GCD(x+1, n)
	if f1 == 1 || f1 == n || f2 == 1 || f2 == n {
		return fail(shorTrivialFactors)
	}

	res.Factors = []uint64{f1, f2}
	s.metrics.algorithmRun("shor", "factored")
	return res, nil
}

/*
modularExponentiation maps |x⟩|w⟩ to |x⟩|w·a^x mod n⟩ for w < n and leaves
w ≥ n alone. Since a is coprime to n this is a bijection on the basis states.
*/
func modularExponentiation(r *Register, a, n uint64, t, m int) {
	powers := make([]uint64, 1<<t)
	powers[0] = 1 % n
	for x := 1; x < len(powers); x++ {
		powers[x] = mulMod(powers[x-1], a, n)
	}

	workMask := 1<<m - 1
	r.applyPermutation(func(i int) int {
		x, w := i>>m, uint64(i&workMask)
		if w >= n {
			return i
		}
		return x<<m | int(mulMod(w, powers[x], n))
	})
}

/*
EstimatePeriod finds the denominator r in [1, maxDenominator] whose nearest
fraction k/r is closest to measured/2^countingQubits. Ties go to the smaller
r. A measurement of 0 carries no information and yields 1, as does a counting
width outside [1, 63].
*/
func EstimatePeriod(measured uint64, countingQubits int, maxDenominator int) uint64 {
	if countingQubits < 1 || countingQubits > 63 {
		return 1
	}
	q := uint64(1) << countingQubits

	best := uint64(1)
	bestDiff := distanceToMultiple(measured, q)

	for r := uint64(2); r <= uint64(maxDenominator); r++ {
		diff := distanceToMultiple(measured*r, q)
		// Compare diff/r with bestDiff/best without dividing.
		if diff*best < bestDiff*r {
			best, bestDiff = r, diff
		}
	}

	return best
}

// distanceToMultiple is the distance from v to the nearest multiple of q.
func distanceToMultiple(v, q uint64) uint64 {
	rem := v % q
	return min(rem, q-rem)
}

/*
ContinuedFraction returns the convergent denominators of num/den in order.
They are the standard candidates for the period when the estimate from
EstimatePeriod does not satisfy a^r ≡ 1 (mod n).
*/
func ContinuedFraction(num, den uint64) []uint64 {
	var out []uint64
	var k, kPrev uint64 = 1, 0

	for den != 0 {
		a := num / den
		num, den = den, num%den

		if len(out) > 0 {
			k, kPrev = a*k+kPrev, k
		}
		out = append(out, k)
	}
	return out
}

/*
refinePeriod checks the estimate against a^r ≡ 1 (mod n). If it fails, the
continued fraction denominators of the measurement are tried, then small
multiples of every candidate above 1, never beyond limit. The estimate is kept
when nothing verifies.
*/
func refinePeriod(a, n, estimate, measured uint64, t int, limit uint64) uint64 {
	candidates := []uint64{estimate}
	for _, d := range ContinuedFraction(measured, uint64(1)<<t) {
		if d > 0 && d <= limit {
			candidates = append(candidates, d)
		}
	}

	for _, c := range candidates {
		if ModPow(a, c, n) == 1 {
			return c
		}
	}

	for _, c := range candidates {
		if c < 2 {
			continue
		}
		for r := 2 * c; r <= min(limit, maxPeriodMultiple*c); r += c {
			if ModPow(a, r, n) == 1 {
				return r
			}
		}
	}

	return estimate
}

// GCD is the greatest common divisor. GCD(0, b) is b.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ModPow computes base^exp mod m by square and multiply on 256 bit words.
func ModPow(base, exp, m uint64) uint64 {
	if m == 1 {
		return 0
	}

	mod := uint256.NewInt(m)
	result := uint256.NewInt(1)
	b := new(uint256.Int).Mod(uint256.NewInt(base), mod)

	for e := exp; e > 0; e >>= 1 {
		if e&1 == 1 {
			result.MulMod(result, b, mod)
		}
		b.MulMod(b, b, mod)
	}

	return result.Uint64()
}

// mulMod is a·b mod m without overflowing 64 bits.
func mulMod(a, b, m uint64) uint64 {
	return new(uint256.Int).MulMod(uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(m)).Uint64()
}
