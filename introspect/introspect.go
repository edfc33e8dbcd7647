// Package introspect builds a catalog from a live database, producing the
// same structure a dbt docs build writes to catalog.json. It supports
// PostgreSQL (github.com/lib/pq) and SQLite (modernc.org/sqlite).
//
// Basic usage:
//
//	cat, err := introspect.FromConnectionString(introspect.DialectPostgres, connStr,
//	    introspect.WithSchemas("public", "auth"),
//	    introspect.WithExcludeTables("migrations"),
//	)
//
// With DBML type names instead of raw database types:
//
//	mapper := introspect.NewDBMLTypeMapper(map[string]string{
//	    "citext": "varchar",
//	})
//	cat, err := introspect.Database(db, introspect.WithTypeMapper(mapper))
package introspect

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lucasefe/dbterd/catalog"
	"github.com/lucasefe/dbterd/internal/ident"
)

// CatalogSchemaVersion is written into the metadata of introspected catalogs.
const CatalogSchemaVersion = "https://schemas.getdbt.com/dbt/catalog/v1.json"

// Dialect names a supported database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DriverName returns the database/sql driver name registered for d.
func (d Dialect) DriverName() string {
	return string(d)
}

type relation struct {
	name string
	kind string
}

// introspector is implemented once per dialect.
type introspector interface {
	defaultSchemas() []string
	allSchemas(db *sql.DB) ([]string, error)
	relations(db *sql.DB, schemaName string) ([]relation, error)
	columns(db *sql.DB, schemaName, tableName string, mapper TypeMapper) ([]catalog.Column, error)
}

func introspectorFor(d Dialect) (introspector, error) {
	switch d {
	case DialectPostgres:
		return postgres{}, nil
	case DialectSQLite:
		return sqlite{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", d)
	}
}

// Database introspects db and returns its tables and views as a catalog.
// Use options to customize which schemas and tables to include.
func Database(db *sql.DB, opts ...Option) (*catalog.Catalog, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	in, err := introspectorFor(o.dialect)
	if err != nil {
		return nil, err
	}

	schemaNames := o.schemas
	if o.includeAllSchemas {
		schemaNames, err = in.allSchemas(db)
		if err != nil {
			return nil, fmt.Errorf("failed to get schemas: %w", err)
		}
	}
	if len(schemaNames) == 0 {
		schemaNames = in.defaultSchemas()
	}

	exclude := make(map[string]bool, len(o.excludeTables))
	for _, name := range o.excludeTables {
		exclude[ident.Key(name)] = true
	}

	result := &catalog.Catalog{
		Metadata: catalog.Metadata{
			SchemaVersion: CatalogSchemaVersion,
			GeneratedAt:   o.now().UTC().Format(time.RFC3339),
		},
	}

	for _, schemaName := range schemaNames {
		relations, err := in.relations(db, schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to get tables for schema %s: %w", schemaName, err)
		}

		project := o.project
		if project == "" {
			project = schemaName
		}

		for _, rel := range relations {
			if exclude[ident.Key(rel.name)] {
				continue
			}
			columns, err := in.columns(db, schemaName, rel.name, o.typeMapper)
			if err != nil {
				return nil, fmt.Errorf("failed to get columns for table %s.%s: %w", schemaName, rel.name, err)
			}
			result.Nodes = append(result.Nodes, catalog.Table{
				ID: fmt.Sprintf("model.%s.%s.%s", project, schemaName, rel.name),
				Metadata: catalog.TableMetadata{
					Type:   rel.kind,
					Schema: schemaName,
					Name:   rel.name,
				},
				Columns: columns,
			})
		}
	}

	return result, nil
}

// FromConnectionString connects to a database and introspects it.
// This is a convenience function that handles connection management.
func FromConnectionString(dialect Dialect, connStr string, opts ...Option) (*catalog.Catalog, error) {
	db, err := sql.Open(dialect.DriverName(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return Database(db, append([]Option{WithDialect(dialect)}, opts...)...)
}
