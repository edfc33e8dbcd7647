// Package generator writes the merged catalog and schema as DBML.
//
// Basic usage:
//
//	gen := generator.New(generator.WithIndex(idx))
//	stats, err := gen.Generate(os.Stdout, cat.Nodes, s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tables are emitted in catalog order with their columns in declaration
// order, followed by one Ref line per relationships test in schema order.
package generator

import (
	"fmt"
	"io"
	"strings"

	"github.com/lucasefe/dbterd/catalog"
	"github.com/lucasefe/dbterd/internal/ident"
	"github.com/lucasefe/dbterd/internal/logfields"
	"github.com/lucasefe/dbterd/schema"
)

// Stats summarizes one generation pass.
type Stats struct {
	// Tables is the number of table blocks written.
	Tables int
	// Columns is the number of column lines written.
	Columns int
	// Relationships is the number of Ref lines written.
	Relationships int
	// SkippedTables counts catalog tables with no schema counterpart or whose
	// name was already written.
	SkippedTables int
	// SkippedRelationships counts malformed or excluded relationships tests.
	SkippedRelationships int
}

// Generator writes DBML. A Generator holds no per-run state and may be
// reused.
type Generator struct {
	o *options
}

// New returns a Generator configured by opts.
func New(opts ...Option) *Generator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Generator{o: o}
}

// Generate writes every catalog table that the schema declares, then every
// relationship the schema declares. Each table name is written at most once;
// later tables with an already written name are skipped.
func (g *Generator) Generate(w io.Writer, tables []catalog.Table, s *schema.Schema) (Stats, error) {
	var stats Stats

	if len(g.o.exclude) > 0 {
		s = schema.FilterTables(s, g.o.excludeNames)
	}
	allow := s.AllowList()
	emitted := make(schema.TableSet)

	for _, table := range tables {
		if !allow.Contains(table.Name()) {
			g.o.logger.Debug("Skipping catalog table absent from schema", logfields.Table(table.Name()))
			stats.SkippedTables++
			continue
		}
		if emitted.Contains(table.Name()) {
			g.o.logger.Debug("Skipping duplicate catalog table", logfields.Table(table.Name()), logfields.NodeID(table.ID))
			stats.SkippedTables++
			continue
		}
		st, ok := s.FindTable(table.Name())
		if !ok {
			stats.SkippedTables++
			continue
		}
		if err := g.WriteTable(w, table, st); err != nil {
			return stats, err
		}
		emitted[ident.Key(table.Name())] = true
		stats.Tables++
		stats.Columns += len(table.Columns)
	}

	written, skipped, err := g.WriteRelationships(w, s)
	stats.Relationships = written
	stats.SkippedRelationships = skipped
	return stats, err
}

// WriteTable writes one table block: the header, a line per catalog column,
// the table note and the closing brace. Columns are annotated from the
// matching schema column; columns with no schema counterpart are written
// without annotations.
func (g *Generator) WriteTable(w io.Writer, table catalog.Table, st *schema.Table) error {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Table %s {%s", table.Name(), g.lineEnd()))

	for _, column := range table.Columns {
		var attributes []string
		if sc, ok := st.FindColumn(column.Name); ok {
			attributes = g.columnAttributes(sc)
		} else {
			g.o.logger.Debug("Column absent from schema", logfields.Table(table.Name()), logfields.Column(column.Name))
		}
		g.writeColumn(&builder, column, attributes)
	}

	note := g.FormatDescription(st.Description)
	if g.o.style == StyleCompat {
		builder.WriteString(note + " \n} \n")
	} else {
		if note != "" {
			builder.WriteString(note + "\n")
		}
		builder.WriteString("}\n")
	}

	_, err := io.WriteString(w, builder.String())
	return err
}

func (g *Generator) writeColumn(builder *strings.Builder, column catalog.Column, attributes []string) {
	annotation := ""
	if len(attributes) > 0 {
		annotation = fmt.Sprintf("[%s]", strings.Join(attributes, ", "))
	}

	if g.o.style == StyleCompat {
		builder.WriteString(fmt.Sprintf("%s %s %s \n", column.Name, column.Type, annotation))
		return
	}

	builder.WriteString(fmt.Sprintf("%s %s", column.Name, column.Type))
	if annotation != "" {
		builder.WriteString(" " + annotation)
	}
	builder.WriteString("\n")
}

func (g *Generator) columnAttributes(column *schema.Column) []string {
	var attributes []string

	for _, test := range column.AllTests() {
		switch test.Name {
		case schema.TagNotNull:
			attributes = append(attributes, "not null")
		case schema.TagUnique:
			attributes = append(attributes, "unique, pk")
		}
	}

	if note := g.note("note", column.Description); note != "" {
		attributes = append(attributes, note)
	}

	return attributes
}

// FormatDescription renders a table description as a DBML table note,
// Note: '<text>', with doc references resolved, single quotes removed and
// line breaks folded into single spaces. It returns "" when desc is nil.
func (g *Generator) FormatDescription(desc *string) string {
	return g.note("Note", desc)
}

func (g *Generator) note(label string, desc *string) string {
	if desc == nil {
		return ""
	}
	text := strings.ReplaceAll(g.o.index.Resolve(*desc), "'", "")
	return fmt.Sprintf("%s: '%s'", label, singleLine(text))
}

// singleLine joins the non-blank lines of text with single spaces. DBML
// single-quoted strings cannot span lines.
func singleLine(text string) string {
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	var parts []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// WriteRelationships writes one Ref line per well-formed relationships test
// in the schema. Malformed tests, and tests pointing at excluded tables, are
// logged and skipped.
func (g *Generator) WriteRelationships(w io.Writer, s *schema.Schema) (written, skipped int, err error) {
	rels, errs := s.Relationships()
	for _, relErr := range errs {
		g.o.logger.Warn("Skipping malformed relationships test", logfields.Error(relErr))
	}
	skipped = len(errs)

	for _, rel := range rels {
		if g.o.exclude.Contains(rel.TargetTable) {
			g.o.logger.Debug("Skipping relationship to excluded table",
				logfields.Table(rel.TargetTable), logfields.Column(rel.SourceField))
			skipped++
			continue
		}
		if err := g.WriteRelationship(w, rel); err != nil {
			return written, skipped, err
		}
		written++
	}

	return written, skipped, nil
}

// WriteRelationship writes a single Ref line,
// Ref: TARGET.FIELD > SOURCE.FIELD, with all identifiers upper-cased.
func (g *Generator) WriteRelationship(w io.Writer, rel schema.Relationship) error {
	line := fmt.Sprintf("Ref: %s.%s > %s.%s%s",
		ident.Upper(rel.TargetTable), ident.Upper(rel.TargetField),
		ident.Upper(rel.SourceTable), ident.Upper(rel.SourceField),
		g.lineEnd())
	_, err := io.WriteString(w, line)
	return err
}

func (g *Generator) lineEnd() string {
	if g.o.style == StyleCompat {
		return " \n"
	}
	return "\n"
}
