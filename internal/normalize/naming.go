package normalize

import (
	"strconv"
	"strings"
)

// ParseNaming splits a free-text naming cell such as "Toyota Camry 2022"
// into make, model, and an optional model year.
//
// The final token is treated as the year only when it is exactly four digits
// and falls inside the plausible [MinYear, MaxYear] range; this keeps trim
// levels and other spurious 4-digit numbers out of the year slot. The first
// remaining token is the make, the rest joined by single spaces form the
// model. Callers must discard rows whose make or model comes back empty.
func ParseNaming(s string) (make, model string, year *int) {
	s = Clean(s)
	if s == "" {
		return "", "", nil
	}
	tokens := strings.Fields(s)
	if last := tokens[len(tokens)-1]; isFourDigits(last) {
		y, _ := strconv.Atoi(last)
		if y >= MinYear && y <= MaxYear {
			year = &y
			tokens = tokens[:len(tokens)-1]
		}
	}
	if len(tokens) == 0 {
		return "", "", year
	}
	make = tokens[0]
	model = strings.Join(tokens[1:], " ")
	return make, model, year
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
