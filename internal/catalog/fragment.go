package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fragment is an insertion-ordered attribute map derived from one sheet row.
// Spreadsheet column sets vary sheet to sheet, so attributes are an opaque
// bag rather than a fixed struct; only identity columns are validated
// strictly elsewhere.
//
// Set is last-write-wins: overwriting a key keeps its original position.
// JSON marshaling emits keys in insertion order, so serialized fragments are
// stable across runs given identical input.
type Fragment struct {
	keys   []string
	values map[string]string
}

// NewFragment returns an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{values: map[string]string{}}
}

// Set stores value under name. An existing name is overwritten in place.
func (f *Fragment) Set(name, value string) {
	if f.values == nil {
		f.values = map[string]string{}
	}
	if _, ok := f.values[name]; !ok {
		f.keys = append(f.keys, name)
	}
	f.values[name] = value
}

// Get returns the value for name and whether it is present.
func (f *Fragment) Get(name string) (string, bool) {
	if f == nil || f.values == nil {
		return "", false
	}
	v, ok := f.values[name]
	return v, ok
}

// Len reports the number of attributes. Safe on a nil fragment.
func (f *Fragment) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the attribute names in insertion order.
func (f *Fragment) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Merge folds other into f, last-write-wins per attribute name. Row order as
// read from the sheet decides the winner when a vehicle appears on several
// rows.
func (f *Fragment) Merge(other *Fragment) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		f.Set(k, other.values[k])
	}
}

// MarshalJSON emits the fragment as a JSON object with keys in insertion
// order.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	if f == nil || len(f.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a fragment from a JSON object. Key order follows
// the document order of the object.
func (f *Fragment) UnmarshalJSON(b []byte) error {
	f.keys = nil
	f.values = map[string]string{}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fragment: expected JSON object, got %v", tok)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		k := kt.(string)
		var v string
		if err := dec.Decode(&v); err != nil {
			return err
		}
		f.Set(k, v)
	}
	_, err = dec.Token() // closing brace
	return err
}
