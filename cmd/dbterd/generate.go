package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasefe/dbterd"
	"github.com/lucasefe/dbterd/internal/logfields"
	"github.com/lucasefe/dbterd/internal/metrics"
)

// stdout as an output path writes to standard output.
const stdout = "-"

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Schema  string `short:"s" help:"Schema YAML file (models, descriptions, tests)" env:"DBTERD_SCHEMA" type:"path"`
	Catalog string `help:"dbt catalog.json" env:"DBTERD_CATALOG" type:"path"`
	Output  string `short:"o" help:"Output DBML file, '-' for stdout" env:"DBTERD_OUTPUT"`
	Docs    string `short:"d" help:"Directory of doc block files" env:"DBTERD_DOCS" type:"path"`

	Exclude             []string `help:"Tables to leave out" env:"DBTERD_EXCLUDE_TABLES" sep:","`
	IncludeSources      bool     `help:"Also emit catalog sources" env:"DBTERD_INCLUDE_SOURCES"`
	StrictRelationships bool     `help:"Fail on malformed relationships tests instead of skipping them" env:"DBTERD_STRICT_RELATIONSHIPS"`
	KeepUnresolvedDocs  bool     `help:"Keep doc references that have no doc block" env:"DBTERD_KEEP_UNRESOLVED_DOCS"`
	PlainTextDocs       bool     `help:"Render doc block markdown as plain text" env:"DBTERD_PLAIN_TEXT_DOCS"`
	TrimWhitespace      bool     `help:"Drop trailing spaces from output lines" env:"DBTERD_TRIM_WHITESPACE"`
	DocExtensions       []string `help:"Doc block file extensions (default .md)" env:"DBTERD_DOC_EXTENSIONS" sep:","`

	MetricsFile string        `help:"Write Prometheus textfile metrics after each run" env:"DBTERD_METRICS_FILE" type:"path"`
	Watch       bool          `short:"w" help:"Regenerate whenever the schema, catalog or docs change"`
	Debounce    time.Duration `help:"Quiet period before regenerating in watch mode" default:"500ms"`
}

func (g *GenerateCmd) Run(globals *Globals, cli *CLI) error {
	config, err := g.config(cli.Config)
	if err != nil {
		return err
	}
	config.Logger = globals.Logger

	var recorder *metrics.PrometheusRecorder
	if g.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
	}

	if !g.Watch {
		return g.runOnce(config, recorder)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := g.runOnce(config, recorder); err != nil {
		globals.Logger.Error("Generation failed", logfields.Error(err))
	}
	return watchInputs(ctx, config, g.Debounce, globals.Logger, func() {
		if err := g.runOnce(config, recorder); err != nil {
			globals.Logger.Error("Generation failed", logfields.Error(err))
		}
	})
}

// config merges the optional config file with flags. Non-empty flags win.
func (g *GenerateCmd) config(path string) (*dbterd.Config, error) {
	config := &dbterd.Config{}
	if path != "" {
		loaded, err := dbterd.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	setString(&config.SchemaPath, g.Schema)
	setString(&config.CatalogPath, g.Catalog)
	setString(&config.OutputPath, g.Output)
	setString(&config.DocsPath, g.Docs)
	if len(g.Exclude) > 0 {
		config.ExcludeTables = g.Exclude
	}
	if len(g.DocExtensions) > 0 {
		config.DocExtensions = g.DocExtensions
	}
	config.IncludeSources = config.IncludeSources || g.IncludeSources
	config.StrictRelationships = config.StrictRelationships || g.StrictRelationships
	config.KeepUnresolvedDocs = config.KeepUnresolvedDocs || g.KeepUnresolvedDocs
	config.PlainTextDocs = config.PlainTextDocs || g.PlainTextDocs
	config.TrimWhitespace = config.TrimWhitespace || g.TrimWhitespace

	if config.OutputPath == "" {
		config.OutputPath = stdout
	}
	if config.SchemaPath == "" || config.CatalogPath == "" {
		return nil, errors.New("both --schema and --catalog are required (flags, environment or config file)")
	}
	return config, nil
}

func setString(dst *string, flag string) {
	if flag != "" {
		*dst = flag
	}
}

func (g *GenerateCmd) runOnce(config *dbterd.Config, recorder *metrics.PrometheusRecorder) error {
	start := time.Now()

	var result *dbterd.Result
	var err error
	if config.OutputPath == stdout {
		result, err = dbterd.GenerateToWriter(os.Stdout, config)
	} else {
		result, err = dbterd.Generate(config)
	}

	if recorder != nil {
		record(recorder, result, err, time.Since(start))
		if werr := recorder.WriteTextfile(g.MetricsFile); werr != nil {
			config.Logger.Warn("Could not write metrics", logfields.Path(g.MetricsFile), logfields.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	logSummary(config.Logger, result)
	return nil
}

func record(r metrics.Recorder, result *dbterd.Result, err error, d time.Duration) {
	var loadErr *dbterd.LoadError
	switch {
	case err == nil:
		r.ObserveRun(metrics.OutcomeSuccess, d)
		r.AddEmitted(result.Tables, result.Columns, result.Relationships)
		r.AddSkipped(metrics.SkippedTable, result.SkippedTables)
		r.AddSkipped(metrics.SkippedRelationship, result.SkippedRelationships)
	case errors.As(err, &loadErr):
		r.ObserveRun(metrics.OutcomeLoadError, d)
	default:
		r.ObserveRun(metrics.OutcomeFailed, d)
	}
}

func logSummary(logger *slog.Logger, result *dbterd.Result) {
	logger.Info("Generation complete",
		slog.Int("tables", result.Tables),
		slog.Int("columns", result.Columns),
		slog.Int("relationships", result.Relationships),
		slog.Int("skipped_tables", result.SkippedTables),
		slog.Int("skipped_relationships", result.SkippedRelationships),
		slog.Int("doc_blocks", result.DocBlocks),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
}
