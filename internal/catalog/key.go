// Package catalog defines the domain model for the vehicle catalog:
// the natural key used to join sheet data, the ordered attribute fragments
// accumulated per vehicle, and the final record shape that is persisted.
package catalog

import (
	"strconv"
	"strings"
)

// Key identifies a vehicle across sheets. Year is optional: some sheets
// carry no model year, and an absent year is a distinct key component from
// any concrete year.
type Key struct {
	Make  string
	Model string
	Year  *int
}

// Canonical returns the key with make and model lowercased. Matching is
// case-insensitive; the original casing is preserved on the emitted record.
func (k Key) Canonical() Key {
	return Key{
		Make:  strings.ToLower(k.Make),
		Model: strings.ToLower(k.Model),
		Year:  k.Year,
	}
}

// MapKey renders the canonical key as a string suitable for map lookups.
// The unit separator keeps "a b|c" and "a|b c" style collisions impossible,
// and an absent year never collides with a concrete one.
func (k Key) MapKey() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(k.Make))
	b.WriteByte(0x1f)
	b.WriteString(strings.ToLower(k.Model))
	b.WriteByte(0x1f)
	if k.Year != nil {
		b.WriteString(strconv.Itoa(*k.Year))
	}
	return b.String()
}

// String renders the key for logs, e.g. "Toyota Camry 2022" or
// "Toyota Camry -".
func (k Key) String() string {
	y := "-"
	if k.Year != nil {
		y = strconv.Itoa(*k.Year)
	}
	return k.Make + " " + k.Model + " " + y
}
