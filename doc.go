// Package dbterd generates DBML (Database Markup Language) entity-relationship
// definitions from a dbt project.
//
// It merges the catalog a dbt docs build writes (catalog.json: tables,
// columns and physical types) with the project's schema YAML (descriptions,
// not_null and unique tests, relationships tests), resolves {{ doc("...") }}
// references against the project's doc blocks, and writes one Table block per
// documented model followed by one Ref line per relationships test.
//
// # Basic Usage
//
// Generate a file from the four paths:
//
//	import "github.com/lucasefe/dbterd"
//
//	err := dbterd.GenerateFiles("models/schema.yml", "target/catalog.json", "erd.dbml", "models/docs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Use Config for the optional behaviors:
//
//	result, err := dbterd.Generate(&dbterd.Config{
//	    SchemaPath:          "models/schema.yml",
//	    CatalogPath:         "target/catalog.json",
//	    OutputPath:          "erd.dbml",
//	    DocsPath:            "models/docs",
//	    ExcludeTables:       []string{"stg_events"},
//	    StrictRelationships: true,
//	    TrimWhitespace:      true,
//	})
//
// A Config can also be read from YAML with LoadConfig.
//
// # Errors
//
// Inputs are loaded before the output is opened, so a *LoadError never
// leaves an output behind. A *WriteError leaves any existing output file
// unchanged.
//
// # Subpackages
//
//   - github.com/lucasefe/dbterd/catalog - dbt catalog model, order-preserving JSON
//   - github.com/lucasefe/dbterd/schema - schema YAML model, matching and relationships
//   - github.com/lucasefe/dbterd/docs - doc block index and reference resolution
//   - github.com/lucasefe/dbterd/generator - DBML emission
//   - github.com/lucasefe/dbterd/introspect - build a catalog from PostgreSQL or SQLite
package dbterd
