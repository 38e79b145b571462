// internal/amount/sanitize.go
package amount

import "strings"

// Sanitize normalizes raw keystrokes into a canonical decimal string.
//
// Everything but digits and the first '.' is dropped, redundant leading zeros
// are collapsed and the fractional part is truncated (never rounded) to
// maxDecimals digits. A trailing '.' is kept so the user can keep typing.
// A negative maxDecimals disables truncation.
func Sanitize(raw string, maxDecimals int) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	seenDot := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '.' && !seenDot:
			seenDot = true
			b.WriteByte(c)
		}
	}
	v := b.String()

	if strings.HasPrefix(v, "0") && len(v) > 1 && !strings.HasPrefix(v, "0.") {
		v = strings.TrimLeft(v, "0")
		if v == "" || strings.HasPrefix(v, ".") {
			v = "0" + v
		}
	}

	intPart, fracPart, hasDot := strings.Cut(v, ".")
	if maxDecimals >= 0 && len(fracPart) > maxDecimals {
		fracPart = fracPart[:maxDecimals]
	}

	if !hasDot {
		return intPart
	}
	if fracPart == "" {
		return intPart + "."
	}
	return intPart + "." + fracPart
}
