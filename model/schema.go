package model

// Column describes one column of a table: its name and the declared type
// string as reported by the store (e.g. "integer", "text" — the engine
// never interprets this beyond display, since FD reasoning is
// type-agnostic).
type Column struct {
	Name         Attribute
	DeclaredType string
}

// TableSchema is a table's name and ordered column list, the (name,
// columns) pair of spec §3. Column order is preserved from the store and
// used by the Normalizer to keep projected-table column order stable.
type TableSchema struct {
	Name    string
	Columns []Column
}

// AttributeNames returns the schema's column names in declared order.
func (t TableSchema) AttributeNames() []Attribute {
	out := make([]Attribute, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Universe builds the bitset universe for this table's columns.
func (t TableSchema) Universe() *Universe {
	return NewUniverse(t.AttributeNames())
}

// ColumnsFor returns the Column metadata for the given attributes, in the
// order they appear in the schema (not the order of attrs), as required
// by the Normalizer (spec §4.8: "column metadata copied from T, preserving
// T's column order among the chosen columns").
func (t TableSchema) ColumnsFor(attrs AttributeSet) []Column {
	out := make([]Column, 0, attrs.Len())
	for _, c := range t.Columns {
		if attrs.Contains(c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// HasColumn reports whether name is a column of t.
func (t TableSchema) HasColumn(name Attribute) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
