package schema

import "github.com/lucasefe/dbterd/internal/ident"

// TableSet is a case-insensitive set of table names.
type TableSet map[string]bool

// NewTableSet builds a set from names.
func NewTableSet(names ...string) TableSet {
	set := make(TableSet, len(names))
	for _, name := range names {
		set[ident.Key(name)] = true
	}
	return set
}

// Contains reports whether name is in the set, ignoring case.
func (s TableSet) Contains(name string) bool {
	return s[ident.Key(name)]
}

// AllowList returns the set of table names declared in the schema.
func (s *Schema) AllowList() TableSet {
	set := make(TableSet, len(s.Tables))
	for _, table := range s.Tables {
		set[ident.Key(table.Name)] = true
	}
	return set
}

// FilterTables removes tables from the schema that match the exclude list,
// ignoring case. It returns a new Schema with the filtered tables; the
// original is not modified.
func FilterTables(s *Schema, excludeTables []string) *Schema {
	exclude := NewTableSet(excludeTables...)

	filteredTables := make([]Table, 0, len(s.Tables))
	for _, table := range s.Tables {
		if !exclude.Contains(table.Name) {
			filteredTables = append(filteredTables, table)
		}
	}

	return &Schema{Version: s.Version, Tables: filteredTables}
}
