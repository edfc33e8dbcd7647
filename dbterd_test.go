package dbterd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/dbterd/schema"
)

const customersCatalog = `{
  "metadata": {"dbt_version": "1.7.0"},
  "nodes": {
    "model.shop.customers": {
      "metadata": {"type": "BASE TABLE", "name": "customers"},
      "columns": {
        "id": {"name": "id", "type": "integer", "index": 1},
        "name": {"name": "name", "type": "varchar", "index": 2}
      }
    }
  }
}`

const customersSchema = `
version: 2
models:
  - name: customers
    columns:
      - name: id
        tests:
          - unique
      - name: name
        description: "Full name"
`

type project struct {
	dir     string
	schema  string
	catalog string
	docs    string
	output  string
}

func writeProject(t *testing.T, catalogJSON, schemaYAML string, docFiles map[string]string) project {
	t.Helper()

	dir := t.TempDir()
	p := project{
		dir:     dir,
		schema:  filepath.Join(dir, "schema.yml"),
		catalog: filepath.Join(dir, "catalog.json"),
		docs:    filepath.Join(dir, "docs"),
		output:  filepath.Join(dir, "erd.dbml"),
	}

	require.NoError(t, os.WriteFile(p.catalog, []byte(catalogJSON), 0o644))
	require.NoError(t, os.WriteFile(p.schema, []byte(schemaYAML), 0o644))
	require.NoError(t, os.MkdirAll(p.docs, 0o755))
	for name, content := range docFiles {
		require.NoError(t, os.WriteFile(filepath.Join(p.docs, name), []byte(content), 0o644))
	}
	return p
}

func TestGenerateFilesEndToEnd(t *testing.T) {
	p := writeProject(t, customersCatalog, customersSchema, nil)

	require.NoError(t, GenerateFiles(p.schema, p.catalog, p.output, p.docs))

	out, err := os.ReadFile(p.output)
	require.NoError(t, err)

	expected := "Table customers { \n" +
		"id integer [unique, pk] \n" +
		"name varchar [note: 'Full name'] \n" +
		" \n" +
		"} \n"
	assert.Equal(t, expected, string(out))
}

func TestGenerateWithDocsAndRelationships(t *testing.T) {
	catalogJSON := `{
  "nodes": {
    "model.shop.orders": {
      "metadata": {"name": "ORDERS"},
      "columns": {
        "ID": {"name": "ID", "type": "NUMBER"},
        "CUSTOMER_ID": {"name": "CUSTOMER_ID", "type": "NUMBER"}
      }
    },
    "model.shop.stg_orders": {
      "metadata": {"name": "STG_ORDERS"},
      "columns": {"ID": {"name": "ID", "type": "NUMBER"}}
    },
    "model.shop.customers": {
      "metadata": {"name": "CUSTOMERS"},
      "columns": {"ID": {"name": "ID", "type": "NUMBER"}}
    }
  }
}`
	schemaYAML := `
models:
  - name: customers
    description: '{{ doc("customers") }}'
    columns:
      - name: id
        data_tests: [not_null, unique]
  - name: orders
    description: "One row per order"
    columns:
      - name: customer_id
        description: '{{ doc("customer_id") }}'
        tests:
          - relationships:
              to: ref('customers')
              field: id
`
	p := writeProject(t, catalogJSON, schemaYAML, map[string]string{
		"customers.md": "{% docs customers %}\nEveryone who ever ordered.\n{% enddocs %}",
		"orders.md":    "{%- docs customer_id -%} The buyer's id {%- enddocs -%}",
	})

	result, err := Generate(&Config{
		SchemaPath:     p.schema,
		CatalogPath:    p.catalog,
		OutputPath:     p.output,
		DocsPath:       p.docs,
		TrimWhitespace: true,
	})
	require.NoError(t, err)

	out, err := os.ReadFile(p.output)
	require.NoError(t, err)

	expected := "Table ORDERS {\n" +
		"ID NUMBER\n" +
		"CUSTOMER_ID NUMBER [note: 'The buyers id']\n" +
		"Note: 'One row per order'\n" +
		"}\n" +
		"Table CUSTOMERS {\n" +
		"ID NUMBER [not null, unique, pk]\n" +
		"Note: 'Everyone who ever ordered.'\n" +
		"}\n" +
		"Ref: CUSTOMERS.ID > ORDERS.CUSTOMER_ID\n"
	assert.Equal(t, expected, string(out))

	assert.Equal(t, 2, result.Tables)
	assert.Equal(t, 3, result.Columns)
	assert.Equal(t, 1, result.Relationships)
	assert.Equal(t, 1, result.SkippedTables)
	assert.Equal(t, 2, result.DocBlocks)
}

func TestGenerateMissingInputsLeaveNoOutput(t *testing.T) {
	p := writeProject(t, customersCatalog, customersSchema, nil)

	tests := []struct {
		name    string
		catalog string
		schema  string
		source  string
	}{
		{"missing catalog", filepath.Join(p.dir, "nope.json"), p.schema, SourceCatalog},
		{"missing schema", p.catalog, filepath.Join(p.dir, "nope.yml"), SourceSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GenerateFiles(tt.schema, tt.catalog, p.output, p.docs)
			require.Error(t, err)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.source, loadErr.Source)

			_, statErr := os.Stat(p.output)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestGenerateMalformedCatalog(t *testing.T) {
	p := writeProject(t, `{"nodes": [`, customersSchema, nil)

	err := GenerateFiles(p.schema, p.catalog, p.output, p.docs)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, SourceCatalog, loadErr.Source)
	assert.Equal(t, p.catalog, loadErr.Path)
}

func TestGenerateMissingDocsDirectory(t *testing.T) {
	p := writeProject(t, customersCatalog, customersSchema, nil)

	require.NoError(t, GenerateFiles(p.schema, p.catalog, p.output, filepath.Join(p.dir, "absent")))
	assert.FileExists(t, p.output)
}

func TestGenerateUnwritableDestination(t *testing.T) {
	p := writeProject(t, customersCatalog, customersSchema, nil)

	err := GenerateFiles(p.schema, p.catalog, filepath.Join(p.dir, "missing", "erd.dbml"), p.docs)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, filepath.Join(p.dir, "missing", "erd.dbml"), writeErr.Path)
}

const malformedSchema = `
models:
  - name: orders
    columns:
      - name: customer_id
        tests:
          - relationships:
              to: customers
              field: id
`

func TestStrictRelationshipsKeepsExistingOutput(t *testing.T) {
	p := writeProject(t, customersCatalog, malformedSchema, nil)
	require.NoError(t, os.WriteFile(p.output, []byte("previous"), 0o644))

	_, err := Generate(&Config{
		SchemaPath:          p.schema,
		CatalogPath:         p.catalog,
		OutputPath:          p.output,
		StrictRelationships: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrMalformedRelationship))

	out, readErr := os.ReadFile(p.output)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(out))

	entries, readErr := os.ReadDir(p.dir)
	require.NoError(t, readErr)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestMalformedRelationshipSkippedByDefault(t *testing.T) {
	p := writeProject(t, customersCatalog, malformedSchema, nil)

	result, err := Generate(&Config{SchemaPath: p.schema, CatalogPath: p.catalog, OutputPath: p.output})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedRelationships)
	assert.Equal(t, 0, result.Relationships)
}

func TestGenerateToWriter(t *testing.T) {
	p := writeProject(t, customersCatalog, customersSchema, nil)

	var buf bytes.Buffer
	result, err := GenerateToWriter(&buf, &Config{
		SchemaPath:     p.schema,
		CatalogPath:    p.catalog,
		TrimWhitespace: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Table customers {\nid integer [unique, pk]\nname varchar [note: 'Full name']\n}\n", buf.String())
	assert.Equal(t, 1, result.Tables)
}

func TestGenerateIncludeSourcesAndExclude(t *testing.T) {
	catalogJSON := `{
  "nodes": {
    "model.shop.customers": {"metadata": {"name": "customers"}, "columns": {"id": {"name": "id", "type": "integer"}}}
  },
  "sources": {
    "source.shop.raw.payments": {"metadata": {"name": "payments"}, "columns": {"id": {"name": "id", "type": "integer"}}}
  }
}`
	schemaYAML := `
models:
  - name: customers
  - name: payments
`
	p := writeProject(t, catalogJSON, schemaYAML, nil)

	var buf bytes.Buffer
	_, err := GenerateToWriter(&buf, &Config{SchemaPath: p.schema, CatalogPath: p.catalog, TrimWhitespace: true})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "payments")

	buf.Reset()
	_, err = GenerateToWriter(&buf, &Config{SchemaPath: p.schema, CatalogPath: p.catalog, TrimWhitespace: true, IncludeSources: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Table payments {\n")

	buf.Reset()
	_, err = GenerateToWriter(&buf, &Config{
		SchemaPath:     p.schema,
		CatalogPath:    p.catalog,
		TrimWhitespace: true,
		IncludeSources: true,
		ExcludeTables:  []string{"Customers"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Table payments {\nid integer\n}\n", buf.String())
}

func TestGenerateIncludeSourcesWritesSharedNameOnce(t *testing.T) {
	catalogJSON := `{
  "nodes": {
    "model.p.orders": {"metadata": {"name": "orders"}, "columns": {"id": {"name": "id", "type": "integer"}}}
  },
  "sources": {
    "source.p.raw.orders": {"metadata": {"name": "orders"}, "columns": {"payload": {"name": "payload", "type": "jsonb"}}}
  }
}`
	p := writeProject(t, catalogJSON, "models:\n  - name: orders\n", nil)

	var buf bytes.Buffer
	result, err := GenerateToWriter(&buf, &Config{SchemaPath: p.schema, CatalogPath: p.catalog, IncludeSources: true})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), "Table orders {"))
	assert.Contains(t, buf.String(), "id integer  \n")
	assert.NotContains(t, buf.String(), "payload")
	assert.Equal(t, 1, result.Tables)
	assert.Equal(t, 1, result.SkippedTables)
}

func TestGenerateMultiLineDocBlockIsOneNoteLine(t *testing.T) {
	schemaYAML := `
models:
  - name: customers
    description: '{{ doc("customers") }}'
`
	p := writeProject(t, customersCatalog, schemaYAML, map[string]string{
		"customers.md": "{% docs customers %}\nline one\n\nline two\n{% enddocs %}",
	})

	var buf bytes.Buffer
	_, err := GenerateToWriter(&buf, &Config{SchemaPath: p.schema, CatalogPath: p.catalog, DocsPath: p.docs, TrimWhitespace: true})
	require.NoError(t, err)

	assert.Equal(t, "Table customers {\nid integer\nname varchar\nNote: 'line one line two'\n}\n", buf.String())
}

func TestGenerateRequiresPaths(t *testing.T) {
	_, err := Generate(&Config{SchemaPath: "s.yml", CatalogPath: "c.json"})
	assert.EqualError(t, err, "output path is required")

	_, err = GenerateToWriter(&bytes.Buffer{}, &Config{CatalogPath: "c.json"})
	assert.EqualError(t, err, "schema path is required")

	_, err = Generate(nil)
	assert.Error(t, err)
}

func TestWriteCatalogRoundTrip(t *testing.T) {
	p := writeProject(t, customersCatalog, customersSchema, nil)

	cat, _, err := Load(p.catalog, p.schema)
	require.NoError(t, err)

	out := filepath.Join(p.dir, "copy.json")
	require.NoError(t, WriteCatalog(out, cat))

	var buf bytes.Buffer
	_, err = GenerateToWriter(&buf, &Config{SchemaPath: p.schema, CatalogPath: out})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "id integer [unique, pk] \n")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
