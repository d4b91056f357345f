// Package normalize converts raw spreadsheet cell text into clean scalar
// values. Cells are untrusted and heterogeneous: blanks, NaN renderings,
// textual null sentinels, stray non-breaking spaces. Coercions fail silently
// because a value that cannot be parsed is treated as "not provided", never
// as an error.
package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Year bounds considered plausible for a model year. A 4-digit number
// outside this range (a trim level, a horsepower figure) is not a year.
const (
	MinYear = 1950
	MaxYear = 2035
)

// Clean returns the cell value with unicode normalized to NFC, non-breaking
// spaces collapsed, and surrounding whitespace trimmed. Empty cells and the
// case-insensitive sentinels "nan", "none", and "null" clean to "".
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	if strings.ContainsRune(s, ' ') {
		s = strings.ReplaceAll(s, " ", " ")
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}

// Float attempts to parse the cell as a floating-point number.
func Float(s string) (float64, bool) {
	s = Clean(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int attempts to parse the cell as an integer. Spreadsheets frequently
// render integers as "2022.0"; an integral float is accepted.
func Int(s string) (int, bool) {
	s = Clean(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// YearOf coerces the cell to a nullable model year. Non-numeric values and
// years outside [MinYear, MaxYear] come back as absent rather than erroring.
func YearOf(s string) *int {
	y, ok := Int(s)
	if !ok || y < MinYear || y > MaxYear {
		return nil
	}
	return &y
}
