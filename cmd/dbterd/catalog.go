package main

import (
	"os"

	"github.com/lucasefe/dbterd"
	"github.com/lucasefe/dbterd/catalog"
	"github.com/lucasefe/dbterd/internal/logfields"
	"github.com/lucasefe/dbterd/introspect"
)

// CatalogCmd implements the 'catalog' command.
type CatalogCmd struct {
	URL        string            `name:"url" required:"" help:"Database connection string (postgres URL or SQLite file path)" env:"DATABASE_URL"`
	Dialect    string            `help:"Database dialect" enum:"postgres,sqlite" default:"postgres" env:"DBTERD_DIALECT"`
	Output     string            `short:"o" help:"Output catalog.json, '-' for stdout" default:"-"`
	Schemas    []string          `help:"Schemas to include (default public, or main on SQLite)" sep:","`
	AllSchemas bool              `help:"Include all non-system schemas"`
	Exclude    []string          `help:"Tables to leave out" sep:","`
	Project    string            `help:"Project name used in node IDs (default: schema name)"`
	DBMLTypes  bool              `name:"dbml-types" help:"Record DBML type names instead of database types"`
	TypeMap    map[string]string `name:"type-map" help:"Type overrides, implies --dbml-types (e.g. citext=varchar)"`
}

func (c *CatalogCmd) Run(globals *Globals) error {
	cat, err := introspect.FromConnectionString(introspect.Dialect(c.Dialect), c.URL, c.options()...)
	if err != nil {
		return err
	}

	if c.Output == stdout {
		return catalog.Write(os.Stdout, cat)
	}
	if err := dbterd.WriteCatalog(c.Output, cat); err != nil {
		return err
	}
	globals.Logger.Info("Catalog written", logfields.Path(c.Output), logfields.Count(len(cat.Nodes)))
	return nil
}

func (c *CatalogCmd) options() []introspect.Option {
	var opts []introspect.Option
	if len(c.Schemas) > 0 {
		opts = append(opts, introspect.WithSchemas(c.Schemas...))
	}
	if c.AllSchemas {
		opts = append(opts, introspect.WithAllSchemas())
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, introspect.WithExcludeTables(c.Exclude...))
	}
	if c.Project != "" {
		opts = append(opts, introspect.WithProject(c.Project))
	}
	if c.DBMLTypes || len(c.TypeMap) > 0 {
		opts = append(opts, introspect.WithTypeMappings(c.TypeMap))
	}
	return opts
}
