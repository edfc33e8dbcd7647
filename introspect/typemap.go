package introspect

import (
	"database/sql"
	"fmt"
	"strings"
)

// ColumnType describes a column's type as the database reports it.
type ColumnType struct {
	// DataType is the base data type, e.g. "integer" or "character varying".
	DataType string
	// UDTName is the underlying type name; for arrays it carries a leading "_".
	UDTName          string
	CharMaxLength    sql.NullInt64
	NumericPrecision sql.NullInt64
	NumericScale     sql.NullInt64
}

// TypeMapper converts database column types into the type string written
// to the catalog. Implement it to customize type naming.
type TypeMapper interface {
	MapType(ct ColumnType) string
}

// TypeMapperFunc adapts a function to TypeMapper.
type TypeMapperFunc func(ct ColumnType) string

// MapType calls f(ct).
func (f TypeMapperFunc) MapType(ct ColumnType) string {
	return f(ct)
}

// DBMLTypeMapper maps database types to DBML types. Overrides are consulted
// first, by data type and then by UDT name, before the default table.
type DBMLTypeMapper struct {
	// Overrides keys are database type names (case-insensitive).
	Overrides map[string]string
}

// NewDBMLTypeMapper returns a DBMLTypeMapper with optional overrides.
//
// Example:
//
//	mapper := introspect.NewDBMLTypeMapper(map[string]string{
//	    "citext": "varchar",
//	    "ltree":  "text",
//	})
func NewDBMLTypeMapper(overrides map[string]string) *DBMLTypeMapper {
	normalized := make(map[string]string, len(overrides))
	for k, v := range overrides {
		normalized[strings.ToLower(k)] = v
	}
	return &DBMLTypeMapper{Overrides: normalized}
}

// MapType implements TypeMapper.
func (m *DBMLTypeMapper) MapType(ct ColumnType) string {
	for _, name := range []string{ct.DataType, ct.UDTName} {
		if mapped, ok := m.Overrides[strings.ToLower(name)]; ok {
			return mapped
		}
	}
	return DBMLType(ct)
}

// DefaultDBMLTypes holds the fixed database-to-DBML type names. Types with
// length or precision modifiers are handled by DBMLType.
var DefaultDBMLTypes = map[string]string{
	"integer":                     "int",
	"int4":                        "int",
	"int":                         "int",
	"bigint":                      "bigint",
	"int8":                        "bigint",
	"smallint":                    "smallint",
	"int2":                        "smallint",
	"boolean":                     "boolean",
	"bool":                        "boolean",
	"text":                        "text",
	"real":                        "float",
	"float4":                      "float",
	"double precision":            "double",
	"float8":                      "double",
	"timestamp without time zone": "timestamp",
	"timestamp":                   "timestamp",
	"timestamp with time zone":    "timestamptz",
	"timestamptz":                 "timestamptz",
	"date":                        "date",
	"time without time zone":      "time",
	"time":                        "time",
	"time with time zone":         "timetz",
	"timetz":                      "timetz",
	"uuid":                        "uuid",
	"json":                        "json",
	"jsonb":                       "jsonb",
	"bytea":                       "binary",
	"blob":                        "binary",
}

// DBMLType converts a column type to its DBML equivalent. Enum, domain and
// array types become "text"; unknown types pass through unchanged.
func DBMLType(ct ColumnType) string {
	dataType := strings.ToLower(ct.DataType)
	if mapped, ok := DefaultDBMLTypes[dataType]; ok {
		return mapped
	}

	switch dataType {
	case "character varying", "varchar":
		return withLength("varchar", ct.CharMaxLength)
	case "character", "char":
		return withLength("char", ct.CharMaxLength)
	case "numeric", "decimal":
		if ct.NumericPrecision.Valid && ct.NumericScale.Valid {
			return fmt.Sprintf("decimal(%d,%d)", ct.NumericPrecision.Int64, ct.NumericScale.Int64)
		}
		return "decimal"
	case "user-defined", "array":
		return "text"
	default:
		return ct.DataType
	}
}

// NativeType renders the type as the database spells it, with length,
// precision and array modifiers. This is what a dbt catalog carries.
func NativeType(ct ColumnType) string {
	switch strings.ToLower(ct.DataType) {
	case "character varying", "character":
		return withLength(ct.DataType, ct.CharMaxLength)
	case "numeric":
		if ct.NumericPrecision.Valid && ct.NumericScale.Valid {
			return fmt.Sprintf("%s(%d,%d)", ct.DataType, ct.NumericPrecision.Int64, ct.NumericScale.Int64)
		}
		return ct.DataType
	case "user-defined":
		return ct.UDTName
	case "array":
		return strings.TrimPrefix(ct.UDTName, "_") + "[]"
	default:
		return ct.DataType
	}
}

func withLength(name string, length sql.NullInt64) string {
	if length.Valid {
		return fmt.Sprintf("%s(%d)", name, length.Int64)
	}
	return name
}

func mapColumnType(mapper TypeMapper, ct ColumnType) string {
	if mapper != nil {
		return mapper.MapType(ct)
	}
	return NativeType(ct)
}
