package calculator

import (
	"regexp"
	"strconv"
)

// completeNumber matches an optionally signed decimal literal with at least
// one digit after any decimal point: "3", "-1.25", ".5". In-progress edits
// such as "1.", "-" or "" do not match.
var completeNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)$`)

// IsCompleteNumber reports whether s is a committable numeric literal.
func IsCompleteNumber(s string) bool {
	return completeNumber.MatchString(s)
}

// ParseNumber parses s if it is a complete literal.
func ParseNumber(s string) (float64, bool) {
	if !IsCompleteNumber(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v the way it would be typed into a text field.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
