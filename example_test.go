package dbterd_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lucasefe/dbterd"
)

func ExampleGenerateToWriter() {
	dir, err := os.MkdirTemp("", "dbterd-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	files := map[string]string{
		"catalog.json": `{"nodes": {
  "model.shop.orders": {"metadata": {"name": "orders"}, "columns": {
    "id": {"name": "id", "type": "integer"},
    "customer_id": {"name": "customer_id", "type": "integer"}}},
  "model.shop.customers": {"metadata": {"name": "customers"}, "columns": {
    "id": {"name": "id", "type": "integer"}}}}}`,
		"schema.yml": `
models:
  - name: customers
    description: Everyone who ever ordered
    columns:
      - name: id
        tests: [not_null, unique]
  - name: orders
    columns:
      - name: customer_id
        tests:
          - relationships:
              to: ref('customers')
              field: id
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			log.Fatal(err)
		}
	}

	_, err = dbterd.GenerateToWriter(os.Stdout, &dbterd.Config{
		SchemaPath:     filepath.Join(dir, "schema.yml"),
		CatalogPath:    filepath.Join(dir, "catalog.json"),
		TrimWhitespace: true,
	})
	if err != nil {
		fmt.Println(err)
	}
	// Output:
	// Table orders {
	// id integer
	// customer_id integer
	// }
	// Table customers {
	// id integer [not null, unique, pk]
	// Note: 'Everyone who ever ordered'
	// }
	// Ref: CUSTOMERS.ID > ORDERS.CUSTOMER_ID
}
