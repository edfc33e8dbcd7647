package schema

import "github.com/lucasefe/dbterd/internal/ident"

// FindTable returns the first table whose name matches name ignoring case.
// The boolean is false when no table matches.
func (s *Schema) FindTable(name string) (*Table, bool) {
	for i := range s.Tables {
		if ident.Equal(s.Tables[i].Name, name) {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// FindColumn returns the first column whose name matches name ignoring case.
// The boolean is false when no column matches.
func (t *Table) FindColumn(name string) (*Column, bool) {
	for i := range t.Columns {
		if ident.Equal(t.Columns[i].Name, name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}
