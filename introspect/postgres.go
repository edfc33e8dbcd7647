package introspect

import (
	"database/sql"

	"github.com/lucasefe/dbterd/catalog"
)

type postgres struct{}

func (postgres) defaultSchemas() []string {
	return []string{"public"}
}

func (postgres) allSchemas(db *sql.DB) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		  AND schema_name NOT LIKE 'pg_temp_%'
		  AND schema_name NOT LIKE 'pg_toast_temp_%'
		ORDER BY schema_name
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var schemaName string
		if err := rows.Scan(&schemaName); err != nil {
			return nil, err
		}
		schemas = append(schemas, schemaName)
	}

	return schemas, rows.Err()
}

func (postgres) relations(db *sql.DB, schemaName string) ([]relation, error) {
	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name
	`

	rows, err := db.Query(query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []relation
	for rows.Next() {
		var rel relation
		if err := rows.Scan(&rel.name, &rel.kind); err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}

	return relations, rows.Err()
}

func (postgres) columns(db *sql.DB, schemaName, tableName string, mapper TypeMapper) ([]catalog.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.ordinal_position,
			c.data_type,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			COALESCE(c.udt_name, c.data_type) AS udt_name,
			col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int)
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := db.Query(query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []catalog.Column
	for rows.Next() {
		var col catalog.Column
		var ct ColumnType
		var comment sql.NullString

		err := rows.Scan(
			&col.Name,
			&col.Index,
			&ct.DataType,
			&ct.CharMaxLength,
			&ct.NumericPrecision,
			&ct.NumericScale,
			&ct.UDTName,
			&comment,
		)
		if err != nil {
			return nil, err
		}

		col.Type = mapColumnType(mapper, ct)
		col.Comment = comment.String
		columns = append(columns, col)
	}

	return columns, rows.Err()
}
