// internal/amount/validate.go
package amount

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Decimals is the precision of SUI: 1 SUI = 10^9 MIST.
	Decimals = 9

	// MistPerSui is one whole SUI in base units.
	MistPerSui uint64 = 1_000_000_000

	// MinStake is the smallest stake the protocol accepts, in SUI.
	MinStake float64 = 1

	// Unit is the display symbol of the staked asset.
	Unit = "SUI"
)

// Reason classifies why an input was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonEmpty means nothing has been entered yet; it carries no message.
	ReasonEmpty
	ReasonFormat
	ReasonPrecision
	ReasonMinimum
)

// ValidationResult is the outcome of Validate. It is always a value, never an error.
type ValidationResult struct {
	Valid  bool
	Reason Reason
	Error  string
}

var numberPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// Validate decides whether input is an acceptable stake amount.
// The first failing rule wins.
func Validate(input string, minAmount float64) ValidationResult {
	if input == "" || input == "." {
		return ValidationResult{Reason: ReasonEmpty}
	}

	if !numberPattern.MatchString(input) {
		return invalid(ReasonFormat, "Invalid number format")
	}

	// unreachable for sanitized input, kept for raw callers
	if strings.Count(input, ".") > 1 {
		return invalid(ReasonFormat, "Invalid number format")
	}

	if _, frac, ok := strings.Cut(input, "."); ok && len(frac) > Decimals {
		return invalid(ReasonPrecision, fmt.Sprintf("Maximum %d decimal places allowed", Decimals))
	}

	value, ok := parseAmount(input)
	if !ok {
		return invalid(ReasonFormat, "Invalid number format")
	}
	if value < minAmount {
		return invalid(ReasonMinimum, fmt.Sprintf("Minimum stake amount is %s %s", formatMin(minAmount), Unit))
	}

	return ValidationResult{Valid: true}
}

// IsValidStakeAmount is the cheap predicate used to enable the submit action.
// It only checks that input parses and reaches minAmount.
func IsValidStakeAmount(input string, minAmount float64) bool {
	if input == "" || input == "." {
		return false
	}
	value, ok := parseAmount(input)
	return ok && value >= minAmount
}

// InputError returns the message to display for input, or "" when there is
// nothing to say (including when the field is empty).
func InputError(input string, minAmount float64) string {
	if input == "" {
		return ""
	}
	return Validate(input, minAmount).Error
}

func invalid(reason Reason, msg string) ValidationResult {
	return ValidationResult{Reason: reason, Error: msg}
}

func parseAmount(input string) (float64, bool) {
	value, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func formatMin(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
