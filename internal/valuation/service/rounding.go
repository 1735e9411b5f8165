package service

import "math"

// roundingEpsilon mirrors the double-precision machine epsilon. It nudges
// values such as 1.005 (stored as 1.00499999...) to the intended side.
const roundingEpsilon = 0x1p-52

// Round2 rounds to 2 decimals, half away from zero, after adding epsilon
// in the direction of the sign.
func Round2(n float64) float64 {
	if n == 0 {
		return 0
	}
	return math.Round((n+math.Copysign(roundingEpsilon, n))*100) / 100
}

// RateKey renders a fraction as its integer percentage, e.g. 0.2 -> "20".
func RateKey(rate float64) string {
	return formatInt(int64(math.Round(rate * 100)))
}
