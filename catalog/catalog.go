// Package catalog models the machine-generated catalog of physical tables and
// columns (the dbt catalog.json layout).
//
// The catalog stores tables and columns as JSON objects keyed by identifier.
// Object member order is significant: tables are emitted in catalog order and
// columns in declaration order, so decoding and encoding both preserve the
// order in which members appear in the document.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoNodes is returned when a catalog document has no nodes mapping.
var ErrNoNodes = errors.New("catalog has no nodes mapping")

// Catalog is the top-level catalog document.
type Catalog struct {
	// Metadata describes the tool run that produced the catalog.
	Metadata Metadata
	// Nodes contains the model tables in document order.
	Nodes []Table
	// Sources contains source tables in document order.
	Sources []Table
}

// Metadata is the catalog's generation header.
type Metadata struct {
	SchemaVersion string `json:"dbt_schema_version,omitempty"`
	DBTVersion    string `json:"dbt_version,omitempty"`
	GeneratedAt   string `json:"generated_at,omitempty"`
}

// Table is one catalog entry, keyed in the document by an opaque ID such as
// "model.jaffle_shop.customers".
type Table struct {
	ID       string
	Metadata TableMetadata
	// Columns are in declaration order.
	Columns []Column
}

// TableMetadata holds the physical identity of a table.
type TableMetadata struct {
	Type     string `json:"type,omitempty"`
	Database string `json:"database,omitempty"`
	Schema   string `json:"schema,omitempty"`
	Name     string `json:"name"`
	Comment  string `json:"comment,omitempty"`
	Owner    string `json:"owner,omitempty"`
}

// Column is a physical column.
type Column struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Comment string `json:"comment,omitempty"`
}

// Name returns the table's physical name.
func (t Table) Name() string {
	return t.Metadata.Name
}

// Tables returns the catalog's nodes, followed by its sources when
// includeSources is set.
func (c *Catalog) Tables(includeSources bool) []Table {
	if !includeSources {
		return c.Nodes
	}
	tables := make([]Table, 0, len(c.Nodes)+len(c.Sources))
	tables = append(tables, c.Nodes...)
	return append(tables, c.Sources...)
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// Write encodes c as indented JSON.
func Write(w io.Writer, c *Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

type catalogJSON struct {
	Metadata Metadata   `json:"metadata"`
	Nodes    *tableList `json:"nodes"`
	Sources  tableList  `json:"sources"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw catalogJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Nodes == nil {
		return ErrNoNodes
	}
	c.Metadata = raw.Metadata
	c.Nodes = *raw.Nodes
	c.Sources = raw.Sources
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Catalog) MarshalJSON() ([]byte, error) {
	nodes := tableList(c.Nodes)
	return json.Marshal(catalogJSON{
		Metadata: c.Metadata,
		Nodes:    &nodes,
		Sources:  tableList(c.Sources),
	})
}

type tableJSON struct {
	Metadata TableMetadata `json:"metadata"`
	Columns  columnList    `json:"columns"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Metadata.Name == "" {
		return errors.New("missing metadata.name")
	}
	t.Metadata = raw.Metadata
	t.Columns = raw.Columns
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Metadata: t.Metadata, Columns: columnList(t.Columns)})
}

type tableList []Table

func (l *tableList) UnmarshalJSON(data []byte) error {
	var tables []Table
	positions := make(map[string]int)
	err := decodeObject(data, func(key string, dec *json.Decoder) error {
		var t Table
		if err := dec.Decode(&t); err != nil {
			return fmt.Errorf("node %q: %w", key, err)
		}
		t.ID = key
		// A repeated key keeps its first position and takes the last value.
		if i, ok := positions[key]; ok {
			tables[i] = t
			return nil
		}
		positions[key] = len(tables)
		tables = append(tables, t)
		return nil
	})
	*l = tables
	return err
}

func (l tableList) MarshalJSON() ([]byte, error) {
	return encodeObject(l, func(t Table) string { return t.ID })
}

type columnList []Column

func (l *columnList) UnmarshalJSON(data []byte) error {
	var columns []Column
	positions := make(map[string]int)
	err := decodeObject(data, func(key string, dec *json.Decoder) error {
		var c Column
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		if c.Name == "" {
			c.Name = key
		}
		if i, ok := positions[key]; ok {
			columns[i] = c
			return nil
		}
		positions[key] = len(columns)
		columns = append(columns, c)
		return nil
	})
	*l = columns
	return err
}

func (l columnList) MarshalJSON() ([]byte, error) {
	return encodeObject(l, func(c Column) string { return c.Name })
}

// decodeObject walks the members of a JSON object in document order, handing
// the decoder to fn positioned at each member's value. A JSON null is treated
// as an empty object.
func decodeObject(data []byte, fn func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}

func encodeObject[T any](items []T, key func(T) string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key(item))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
