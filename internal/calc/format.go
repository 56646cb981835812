package calc

import (
	"math"
	"strconv"
	"strings"
)

const (
	// integerTolerance is how close a value must be to an integer to print without decimals.
	integerTolerance = 1e-10
	// maxFractionDigits is the precision used before trailing zeros are trimmed.
	maxFractionDigits = 12
)

// FormatResult renders v for display: integers without a decimal point, other
// values with at most 12 fraction digits and no trailing zeros.
func FormatResult(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	if rounded := math.Round(v); math.Abs(v-rounded) < integerTolerance {
		if rounded == 0 {
			return "0"
		}
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}

	s := strconv.FormatFloat(v, 'f', maxFractionDigits, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
