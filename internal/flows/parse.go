package flows

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount reads a user-typed number. Anything unparsable is 0.
func ParseAmount(s string) float64 {
	v, ok := parseFloat(s)
	if !ok {
		return 0
	}
	return v
}

// parseOr reads a user-typed number, falling back to prev when unparsable.
func parseOr(s string, prev float64) float64 {
	v, ok := parseFloat(s)
	if !ok {
		return prev
	}
	return v
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatAmount renders a number for an editable text field without a
// trailing ".0" for whole values.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
