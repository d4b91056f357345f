package catalog

import "testing"

func TestMapKeyCaseInsensitive(t *testing.T) {
	y := 2022
	a := Key{Make: "Toyota", Model: "Camry", Year: &y}
	b := Key{Make: "TOYOTA", Model: "camry", Year: &y}
	if a.MapKey() != b.MapKey() {
		t.Fatalf("keys differ: %q vs %q", a.MapKey(), b.MapKey())
	}
}

func TestMapKeyYearDistinct(t *testing.T) {
	y := 2022
	with := Key{Make: "Toyota", Model: "Camry", Year: &y}
	without := Key{Make: "Toyota", Model: "Camry"}
	if with.MapKey() == without.MapKey() {
		t.Fatal("absent year must not collide with a concrete year")
	}
}

func TestMapKeySeparator(t *testing.T) {
	a := Key{Make: "a b", Model: "c"}
	b := Key{Make: "a", Model: "b c"}
	if a.MapKey() == b.MapKey() {
		t.Fatal("make/model boundary must be unambiguous")
	}
}

func TestKeyString(t *testing.T) {
	y := 2022
	if got := (Key{Make: "Toyota", Model: "Camry", Year: &y}).String(); got != "Toyota Camry 2022" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Key{Make: "Toyota", Model: "Camry"}).String(); got != "Toyota Camry -" {
		t.Fatalf("String() = %q", got)
	}
}
