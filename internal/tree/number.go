package tree

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber prints a JSON number literal the way a JavaScript engine
// prints the parsed Number: shortest round-trip digits, exponent form
// outside [1e-6, 1e21), no "-0".
func FormatNumber(literal string) string {
	f, err := strconv.ParseFloat(literal, 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case err != nil:
		// Unreachable for decoded values: jsonvalue.Decode only admits
		// well-formed number literals. Print the text unchanged.
		return literal
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return jsExponent(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// jsExponent rewrites Go's "1.5e-07" as "1.5e-7".
func jsExponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok || exp == "" {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
