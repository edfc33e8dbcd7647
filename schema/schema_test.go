package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `
version: 2
models:
  - name: customers
    description: '{{ doc("customers") }}'
    columns:
      - name: id
        tests:
          - unique
          - not_null
      - name: name
        description: Full name
  - name: line_items
    columns:
      - name: order_id
        tests:
          - not_null
          - relationships:
              to: ref('orders')
              field: id
      - name: product_id
        data_tests:
          - relationships:
              arguments:
                to: ref('products')
                field: sku
      - name: note
        tests:
          - accepted_values:
              values: ['a', 'b']
`

func mustParse(t *testing.T, doc string) *Schema {
	t.Helper()
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestParse(t *testing.T) {
	s := mustParse(t, sampleSchema)

	assert.Equal(t, 2, s.Version)
	require.Len(t, s.Tables, 2)

	customers := s.Tables[0]
	assert.Equal(t, "customers", customers.Name)
	require.NotNil(t, customers.Description)
	assert.Equal(t, `{{ doc("customers") }}`, *customers.Description)
	require.Len(t, customers.Columns, 2)
	assert.Nil(t, customers.Columns[0].Description)
	assert.Equal(t, []Test{{Name: "unique"}, {Name: "not_null"}}, customers.Columns[0].Tests)
	require.NotNil(t, customers.Columns[1].Description)
	assert.Equal(t, "Full name", *customers.Columns[1].Description)

	items := s.Tables[1]
	assert.Nil(t, items.Description)
	rel := items.Columns[0].Tests[1]
	assert.Equal(t, TagRelationships, rel.Name)
	require.NotNil(t, rel.Relationship)
	assert.Equal(t, "ref('orders')", *rel.Relationship.To)
	assert.Equal(t, "id", *rel.Relationship.Field)

	assert.Equal(t, "accepted_values", items.Columns[2].Tests[0].Name)
	assert.Nil(t, items.Columns[2].Tests[0].Relationship)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("models: [\n  - name"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "schema.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAllTestsIncludesDataTests(t *testing.T) {
	c := Column{
		Tests:     []Test{{Name: "unique"}},
		DataTests: []Test{{Name: "not_null"}},
	}
	assert.Equal(t, []Test{{Name: TagUnique}, {Name: TagNotNull}}, c.AllTests())
}

func TestMappingFormTestWithConfig(t *testing.T) {
	s := mustParse(t, `
models:
  - name: t
    columns:
      - name: c
        tests:
          - not_null:
              config:
                severity: warn
`)
	assert.Equal(t, []Test{{Name: TagNotNull}}, s.Tables[0].Columns[0].AllTests())
}

func TestFindTable(t *testing.T) {
	s := mustParse(t, sampleSchema)

	table, ok := s.FindTable("CUSTOMERS")
	require.True(t, ok)
	assert.Equal(t, "customers", table.Name)

	_, ok = s.FindTable("orders")
	assert.False(t, ok)
}

func TestFindTableFirstMatchWins(t *testing.T) {
	s := &Schema{Tables: []Table{{Name: "Dup"}, {Name: "dup", Columns: []Column{{Name: "x"}}}}}

	table, ok := s.FindTable("DUP")
	require.True(t, ok)
	assert.Equal(t, "Dup", table.Name)
}

func TestFindColumn(t *testing.T) {
	s := mustParse(t, sampleSchema)
	table := &s.Tables[0]

	col, ok := table.FindColumn("Name")
	require.True(t, ok)
	assert.Equal(t, "name", col.Name)

	_, ok = table.FindColumn("email")
	assert.False(t, ok)
}
