package utils

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Round applies half-up rounding (away from zero on ties) at the given number
// of decimals. The tie is decided on the shortest decimal representation of v,
// so 4.05 rounds to 4.1 even though its binary value is slightly below it.
// NaN and infinities are returned unchanged.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || decimals < 0 {
		return v
	}
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)

	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) <= decimals {
		return v
	}
	roundUp := frac[decimals] >= '5'

	digits := new(big.Int)
	digits.SetString(intPart+frac[:decimals], 10)
	if roundUp {
		digits.Add(digits, big.NewInt(1))
	}

	out := digits.String()
	if decimals > 0 {
		if len(out) <= decimals {
			out = strings.Repeat("0", decimals-len(out)+1) + out
		}
		out = out[:len(out)-decimals] + "." + out[len(out)-decimals:]
	}
	r, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return v
	}
	if neg && r != 0 {
		r = -r
	}
	return r
}

// RoundMacro is the precision every stored or displayed macro gram uses.
func RoundMacro(v float64) float64 { return Round(v, 1) }

// RoundWhole is the precision every displayed calorie total uses.
func RoundWhole(v float64) float64 { return Round(v, 0) }
