package introspect

import "time"

// Option configures introspection behavior.
type Option func(*options)

type options struct {
	dialect           Dialect
	schemas           []string
	excludeTables     []string
	includeAllSchemas bool
	typeMapper        TypeMapper
	project           string
	now               func() time.Time
}

func defaultOptions() *options {
	return &options{
		dialect: DialectPostgres,
		now:     time.Now,
	}
}

// WithDialect selects the database dialect. Defaults to DialectPostgres.
// FromConnectionString sets it from its dialect argument.
func WithDialect(d Dialect) Option {
	return func(o *options) {
		o.dialect = d
	}
}

// WithSchemas specifies which database schemas to introspect.
// If not specified, defaults to "public" on PostgreSQL and "main" on SQLite.
func WithSchemas(schemas ...string) Option {
	return func(o *options) {
		o.schemas = schemas
	}
}

// WithExcludeTables specifies tables to leave out of the catalog.
// Names are matched case-insensitively.
func WithExcludeTables(tables ...string) Option {
	return func(o *options) {
		o.excludeTables = tables
	}
}

// WithAllSchemas includes all non-system schemas in the introspection.
// This overrides WithSchemas.
func WithAllSchemas() Option {
	return func(o *options) {
		o.includeAllSchemas = true
	}
}

// WithTypeMapper sets a mapper applied to every column type. Without one,
// columns carry the database's own type names, as a dbt catalog does.
func WithTypeMapper(mapper TypeMapper) Option {
	return func(o *options) {
		o.typeMapper = mapper
	}
}

// WithTypeMappings maps column types to DBML types with the given overrides.
// Keys are database type names (case-insensitive), values are DBML types.
func WithTypeMappings(mappings map[string]string) Option {
	return func(o *options) {
		o.typeMapper = NewDBMLTypeMapper(mappings)
	}
}

// WithProject sets the project segment of node IDs
// ("model.<project>.<schema>.<table>"). Defaults to the schema name.
func WithProject(name string) Option {
	return func(o *options) {
		o.project = name
	}
}
