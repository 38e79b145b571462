// internal/amount/convert.go
package amount

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a display amount cannot be turned into base units.
var ErrInvalidAmount = errors.New("invalid amount")

// ToBaseUnits converts a display amount into base units, flooring any digits
// beyond precision. The multiplication is done in exact decimal arithmetic.
func ToBaseUnits(amount string, precision int32) (uint64, error) {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(normalize(amount))
	if err != nil {
		return 0, ErrInvalidAmount
	}

	scaled := d.Shift(precision).Floor().BigInt()
	if scaled.Sign() < 0 || !scaled.IsUint64() {
		return 0, ErrInvalidAmount
	}
	return scaled.Uint64(), nil
}

// ToDisplayUnits converts base units into a display amount.
// The result is for presentation only and must not be used to derive base units again.
func ToDisplayUnits(base uint64, precision int32) float64 {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(base), -precision).InexactFloat64()
}

// FormatBaseUnits renders base units as exact decimal text, e.g. 1500000000 -> "1.5".
func FormatBaseUnits(base uint64, precision int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(base), -precision).String()
}

// ExpectedOutput estimates how much of the derivative asset input buys at rate,
// with four decimals. It is an estimate, not the on-chain result.
func ExpectedOutput(input string, rate float64) (string, bool) {
	if input == "" || input == "." || !(rate > 0) || math.IsInf(rate, 0) {
		return "", false
	}
	value, ok := parseAmount(input)
	if !ok || value <= 0 {
		return "", false
	}
	return strconv.FormatFloat(value/rate, 'f', 4, 64), true
}

// normalize makes "1." and ".5" acceptable to the decimal parser.
func normalize(amount string) string {
	amount = strings.TrimSuffix(amount, ".")
	if strings.HasPrefix(amount, ".") {
		amount = "0" + amount
	}
	return amount
}
