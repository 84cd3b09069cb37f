package workbook

// Field is a single named cell value within a Row.
type Field struct {
	Name  string
	Value string
}

// Row is one spreadsheet row keyed by header name. Fields keep column order.
type Row struct {
	Fields []Field
}

// NewRow builds a Row from alternating name/value pairs. Intended for tests
// and fixtures; a trailing unpaired name is ignored.
func NewRow(pairs ...string) Row {
	r := Row{Fields: make([]Field, 0, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Get returns the value stored under name.
func (r Row) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value stored under name, or "" when absent.
func (r Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Set overwrites the value for name in place, or appends a new field.
func (r *Row) Set(name, value string) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Len returns the number of fields in the row.
func (r Row) Len() int {
	return len(r.Fields)
}
