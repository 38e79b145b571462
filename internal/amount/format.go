// internal/amount/format.go
package amount

import (
	"math"
	"strconv"
)

type suffixThreshold struct {
	min      float64
	suffix   string
	divisor  float64
	decimals int // -1 picks decimals by magnitude
}

var suffixThresholds = []suffixThreshold{
	{min: 1e9, suffix: "B", divisor: 1e9, decimals: -1},
	{min: 1e6, suffix: "M", divisor: 1e6, decimals: -1},
	{min: 1e3, suffix: "K", divisor: 1e3, decimals: -1},
	{min: 1, suffix: "", divisor: 1, decimals: -1},
	{min: 0, suffix: "", divisor: 1, decimals: 4},
}

// FormatWithSuffix renders v compactly: 1234567 -> "1.23M", 9.5238 -> "9.52",
// 0.123456 -> "0.1235". Trailing zeros are dropped and non-finite values give "0".
func FormatWithSuffix(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}

	t := suffixThresholds[len(suffixThresholds)-1]
	for _, candidate := range suffixThresholds {
		if v >= candidate.min {
			t = candidate
			break
		}
	}

	scaled := v / t.divisor
	decimals := t.decimals
	if decimals < 0 {
		switch {
		case scaled >= 100:
			decimals = 0
		case scaled >= 10:
			decimals = 1
		default:
			decimals = 2
		}
	}

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(scaled, 'f', decimals, 64), 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + t.suffix
}
