package introspect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lucasefe/dbterd/catalog"
)

// sqlite introspects attached SQLite databases. A schema is an attached
// database name, "main" by default.
type sqlite struct{}

func (sqlite) defaultSchemas() []string {
	return []string{"main"}
}

func (sqlite) allSchemas(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM pragma_database_list WHERE name <> 'temp' ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		schemas = append(schemas, name)
	}

	return schemas, rows.Err()
}

func (sqlite) relations(db *sql.DB, schemaName string) ([]relation, error) {
	query := fmt.Sprintf(`
		SELECT name, type
		FROM %s.sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%'
		ORDER BY name
	`, quoteIdent(schemaName))

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []relation
	for rows.Next() {
		var rel relation
		var kind string
		if err := rows.Scan(&rel.name, &kind); err != nil {
			return nil, err
		}
		rel.kind = "BASE TABLE"
		if kind == "view" {
			rel.kind = "VIEW"
		}
		relations = append(relations, rel)
	}

	return relations, rows.Err()
}

func (sqlite) columns(db *sql.DB, schemaName, tableName string, mapper TypeMapper) ([]catalog.Column, error) {
	rows, err := db.Query(`SELECT cid, name, type FROM pragma_table_info(?, ?) ORDER BY cid`, tableName, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []catalog.Column
	for rows.Next() {
		var cid int
		var col catalog.Column
		var declared string
		if err := rows.Scan(&cid, &col.Name, &declared); err != nil {
			return nil, err
		}
		col.Index = cid + 1
		col.Type = mapColumnType(mapper, ColumnType{DataType: declared, UDTName: declared})
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
