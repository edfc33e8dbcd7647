package schema

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrMalformedRelationship marks a relationships test that is missing its
// arguments or whose "to" expression names no quoted table.
var ErrMalformedRelationship = errors.New("malformed relationships test")

// quotedTable captures the first single-quoted literal of a "to" expression,
// e.g. orders in ref('orders').
var quotedTable = regexp.MustCompile(`(?s)'(.*?)'`)

// Relationship points from a constrained column to the table and field it
// references. Identifiers are kept in their schema casing.
type Relationship struct {
	TargetTable string
	TargetField string
	SourceTable string
	SourceField string
}

// RelationshipError describes a single malformed relationships test.
type RelationshipError struct {
	Table  string
	Column string
	Reason string
}

func (e *RelationshipError) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", ErrMalformedRelationship, e.Table, e.Column, e.Reason)
}

// Is reports whether target is ErrMalformedRelationship.
func (e *RelationshipError) Is(target error) bool {
	return target == ErrMalformedRelationship
}

// Relationships derives every relationship declared by the schema's column
// tests, in table, column, then test order. Malformed tests are returned as
// errors alongside the well-formed relationships; callers decide whether to
// skip them or abort.
func (s *Schema) Relationships() ([]Relationship, []error) {
	var rels []Relationship
	var errs []error

	for _, table := range s.Tables {
		for _, column := range table.Columns {
			for _, test := range column.AllTests() {
				if test.Relationship == nil {
					continue
				}
				rel, err := newRelationship(table.Name, column.Name, test.Relationship)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				rels = append(rels, rel)
			}
		}
	}

	return rels, errs
}

func newRelationship(table, column string, rt *RelationshipTest) (Relationship, error) {
	fail := func(reason string) (Relationship, error) {
		return Relationship{}, &RelationshipError{Table: table, Column: column, Reason: reason}
	}

	if rt.To == nil {
		return fail(`missing "to"`)
	}
	if rt.Field == nil {
		return fail(`missing "field"`)
	}
	m := quotedTable.FindStringSubmatch(*rt.To)
	if m == nil {
		return fail(fmt.Sprintf("no quoted table in %q", *rt.To))
	}

	return Relationship{
		TargetTable: m[1],
		TargetField: *rt.Field,
		SourceTable: table,
		SourceField: column,
	}, nil
}
