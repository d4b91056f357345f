package catalog

// Record is the unit of output and persistence: one normalized catalog entry
// per vehicle, complete after synthesis (make and model non-empty; price,
// rating, and reviews always populated).
type Record struct {
	Make  string
	Model string
	Year  *int

	Price    float64
	Currency string

	ImageURL  string
	ImageURLs []string

	Rating  float64
	Reviews int

	Specs      *Fragment
	Engines    []*Fragment
	Statistics *Fragment

	// SourceSheets lists, in order, the sheets that contributed data.
	SourceSheets []string
}

// NaturalKey returns the (make, model, year) triple used for upserts.
func (r *Record) NaturalKey() Key {
	return Key{Make: r.Make, Model: r.Model, Year: r.Year}
}
