package amount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"plain integer", "42", "42"},
		{"leading zeros collapse", "007", "7"},
		{"all zeros", "000", "0"},
		{"single zero", "0", "0"},
		{"zero dot kept", "0.", "0."},
		{"zeros before dot", "00.5", "0.5"},
		{"trailing zeros kept", "0.500", "0.500"},
		{"trailing dot while typing", "1.", "1."},
		{"bare dot", ".", "."},
		{"second dot dropped", "1.2.3", "1.23"},
		{"letters stripped", "1a2b.c3", "12.3"},
		{"separators stripped", "1,000.25 SUI", "1000.25"},
		{"minus stripped", "-5", "5"},
		{"truncate not round", "1.1234567899", "1.123456789"},
		{"truncate long leading zero input", "00.5000000000", "0.500000000"},
		{"dot first", ".5", ".5"},
		{"zeros then dot first", "000.25", "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw, Decimals))
		})
	}
}

func TestSanitizeMaxDecimals(t *testing.T) {
	assert.Equal(t, "1.23", Sanitize("1.23456", 2))
	assert.Equal(t, "1.", Sanitize("1.23456", 0))
	assert.Equal(t, "1.23456789012345", Sanitize("1.23456789012345", -1))
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"", ".", "..", "0", "00", "0.", "00.", "0.0", "007", "1.2.3", "abc",
		"12abc.34.56", " 1 000 . 5 ", "0000.00001", "1.1234567891234", ".0.",
		"9999999999999999999.999999999", "0.500", "-0.5e10",
	}

	for _, in := range inputs {
		once := Sanitize(in, Decimals)
		assert.Equal(t, once, Sanitize(once, Decimals), "input %q", in)
	}
}

func TestSanitizeFractionWithinPrecision(t *testing.T) {
	inputs := []string{"1.1234567891234", "0.0000000001", "5.55555555555555", "1..23456789999"}

	for _, in := range inputs {
		out := Sanitize(in, Decimals)
		if _, frac, ok := strings.Cut(out, "."); ok {
			assert.LessOrEqual(t, len(frac), Decimals, "input %q -> %q", in, out)
		}
	}
}
