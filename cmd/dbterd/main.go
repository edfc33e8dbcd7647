// Command dbterd writes a DBML entity-relationship file for a dbt project.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/lucasefe/dbterd/internal/logfields"
)

var version = "dev"

// Globals are bound into every command's Run method.
type Globals struct {
	Logger *slog.Logger
}

// CLI is the root command line grammar.
type CLI struct {
	Config  string           `short:"c" help:"YAML run configuration file. Flags override its values." env:"DBTERD_CONFIG" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging" env:"DBTERD_VERBOSE"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate DBML from a dbt catalog and schema (default)"`
	Catalog  CatalogCmd  `cmd:"" help:"Write a dbt-shaped catalog.json by introspecting a database"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("dbterd"),
		kong.Description("Generate DBML entity-relationship definitions from dbt catalogs and schema files."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	globals := &Globals{Logger: slog.Default().With(logfields.RunID(uuid.NewString()))}
	if err := ctx.Run(globals, &cli); err != nil {
		globals.Logger.Error("dbterd failed", logfields.Error(err))
		os.Exit(1)
	}
}
