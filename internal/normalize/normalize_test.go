package normalize

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  BMW X5  ", "BMW X5"},
		{"nan", ""},
		{"NaN", ""},
		{"None", ""},
		{"NULL", ""},
		{" Toyota ", "Toyota"},
		{"nano", "nano"},
		{"0", "0"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFloat(t *testing.T) {
	if f, ok := Float(" 3.5 "); !ok || f != 3.5 {
		t.Fatalf("Float(\" 3.5 \") = %v, %v", f, ok)
	}
	if _, ok := Float("nan"); ok {
		t.Fatal("Float should reject the nan sentinel")
	}
	if _, ok := Float("V8"); ok {
		t.Fatal("Float should reject non-numeric text")
	}
}

func TestInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2022", 2022, true},
		{"2022.0", 2022, true},
		{"2022.5", 0, false},
		{"", 0, false},
		{"none", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := Int(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("Int(%q) = %d, %v, want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestYearOf(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"2022", intp(2022)},
		{"2022.0", intp(2022)},
		{"1950", intp(1950)},
		{"2035", intp(2035)},
		{"1949", nil},
		{"2036", nil},
		{"banana", nil},
		{"", nil},
	}
	for _, c := range cases {
		got := YearOf(c.in)
		if !yearEq(got, c.want) {
			t.Errorf("YearOf(%q) = %v, want %v", c.in, deref(got), deref(c.want))
		}
	}
}

func TestParseNaming(t *testing.T) {
	cases := []struct {
		in    string
		make  string
		model string
		year  *int
	}{
		{"Toyota Camry 2022", "Toyota", "Camry", intp(2022)},
		{"BMW X5", "BMW", "X5", nil},
		{"Mercedes-Benz S 500 2021", "Mercedes-Benz", "S 500", intp(2021)},
		// a trailing 4-digit number outside the year range stays in the model
		{"Porsche 911 Turbo 1080", "Porsche", "911 Turbo 1080", nil},
		{"Audi RS6 1949", "Audi", "RS6 1949", nil},
		{"Audi RS6 1950", "Audi", "RS6", intp(1950)},
		{"Audi RS6 2035", "Audi", "RS6", intp(2035)},
		{"Audi RS6 2036", "Audi", "RS6 2036", nil},
		// a make alone has an empty model; callers drop such rows
		{"Tesla", "Tesla", "", nil},
		{"2022", "", "", intp(2022)},
		{"", "", "", nil},
		{"nan", "", "", nil},
		{"  Honda   Civic   2020  ", "Honda", "Civic", intp(2020)},
	}
	for _, c := range cases {
		mk, model, year := ParseNaming(c.in)
		if mk != c.make || model != c.model || !yearEq(year, c.year) {
			t.Errorf("ParseNaming(%q) = %q, %q, %v, want %q, %q, %v",
				c.in, mk, model, deref(year), c.make, c.model, deref(c.year))
		}
	}
}

func intp(i int) *int { return &i }

func yearEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
