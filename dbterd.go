package dbterd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lucasefe/dbterd/catalog"
	"github.com/lucasefe/dbterd/docs"
	"github.com/lucasefe/dbterd/generator"
	"github.com/lucasefe/dbterd/internal/logfields"
	"github.com/lucasefe/dbterd/schema"
)

// Result summarizes a successful run.
type Result struct {
	generator.Stats
	// DocBlocks is the number of documentation blocks indexed.
	DocBlocks int
	Duration  time.Duration
}

// Load reads the catalog and schema as a matched pair. Either failing
// yields a *LoadError.
func Load(catalogPath, schemaPath string) (*catalog.Catalog, *schema.Schema, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, nil, &LoadError{Source: SourceCatalog, Path: catalogPath, Err: err}
	}

	s, err := schema.Load(schemaPath)
	if err != nil {
		return nil, nil, &LoadError{Source: SourceSchema, Path: schemaPath, Err: err}
	}

	return cat, s, nil
}

// GenerateFiles writes the DBML for schemaPath and catalogPath to outputPath
// using the documentation in docsPath and default options.
func GenerateFiles(schemaPath, catalogPath, outputPath, docsPath string) error {
	_, err := Generate(&Config{
		SchemaPath:  schemaPath,
		CatalogPath: catalogPath,
		OutputPath:  outputPath,
		DocsPath:    docsPath,
	})
	return err
}

// Generate runs a full generation into config.OutputPath. Inputs are loaded
// before the output is touched, and the output replaces the destination
// only once it has been completely written.
func Generate(config *Config) (*Result, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	r, err := prepare(config)
	if err != nil {
		return nil, err
	}

	var stats generator.Stats
	err = writeAtomic(config.OutputPath, func(w io.Writer) error {
		var err error
		stats, err = r.emit(w)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := r.result(stats, start)
	config.logger().Info("DBML written",
		logfields.Path(config.OutputPath),
		logfields.Count(result.Tables),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return result, nil
}

// GenerateToWriter runs a full generation into w. OutputPath is ignored.
func GenerateToWriter(w io.Writer, config *Config) (*Result, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.validateInputs(); err != nil {
		return nil, err
	}

	start := time.Now()
	r, err := prepare(config)
	if err != nil {
		return nil, err
	}

	stats, err := r.emit(w)
	if err != nil {
		return nil, err
	}
	return r.result(stats, start), nil
}

// run holds the loaded, immutable inputs of one generation.
type run struct {
	config *Config
	tables []catalog.Table
	schema *schema.Schema
	index  *docs.Index
	gen    *generator.Generator
}

func prepare(config *Config) (*run, error) {
	logger := config.logger()

	cat, s, err := Load(config.CatalogPath, config.SchemaPath)
	if err != nil {
		return nil, err
	}

	if config.StrictRelationships {
		if err := checkRelationships(config, s); err != nil {
			return nil, err
		}
	}

	docOpts := []docs.Option{docs.WithLogger(logger)}
	if len(config.DocExtensions) > 0 {
		docOpts = append(docOpts, docs.WithExtensions(config.DocExtensions...))
	}
	if config.KeepUnresolvedDocs {
		docOpts = append(docOpts, docs.WithKeepUnresolved())
	}
	if config.PlainTextDocs {
		docOpts = append(docOpts, docs.WithPlainText())
	}
	idx := docs.Build(config.DocsPath, docOpts...)
	logger.Debug("Documentation indexed", logfields.Path(config.DocsPath), logfields.Count(idx.Len()))

	genOpts := []generator.Option{
		generator.WithIndex(idx),
		generator.WithLogger(logger),
	}
	if len(config.ExcludeTables) > 0 {
		genOpts = append(genOpts, generator.WithExcludeTables(config.ExcludeTables...))
	}
	if config.TrimWhitespace {
		genOpts = append(genOpts, generator.WithStyle(generator.StyleTrimmed))
	}

	return &run{
		config: config,
		tables: cat.Tables(config.IncludeSources),
		schema: s,
		index:  idx,
		gen:    generator.New(genOpts...),
	}, nil
}

func checkRelationships(config *Config, s *schema.Schema) error {
	if len(config.ExcludeTables) > 0 {
		s = schema.FilterTables(s, config.ExcludeTables)
	}
	if _, errs := s.Relationships(); len(errs) > 0 {
		return &LoadError{Source: SourceSchema, Path: config.SchemaPath, Err: errors.Join(errs...)}
	}
	return nil
}

func (r *run) emit(w io.Writer) (generator.Stats, error) {
	return r.gen.Generate(w, r.tables, r.schema)
}

func (r *run) result(stats generator.Stats, start time.Time) *Result {
	return &Result{
		Stats:     stats,
		DocBlocks: r.index.Len(),
		Duration:  time.Since(start),
	}
}

// WriteCatalog writes c as catalog.json to path, replacing any existing
// file only once the new one is complete.
func WriteCatalog(path string, c *catalog.Catalog) error {
	return writeAtomic(path, func(w io.Writer) error {
		return catalog.Write(w, c)
	})
}

// writeAtomic streams fn's output into a temporary file next to path and
// renames it over path after a successful flush and close. On failure the
// temporary file is removed and path is untouched.
func writeAtomic(path string, fn func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = fn(bw); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = bw.Flush(); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to flush output: %w", err)}
	}
	if err = tmp.Chmod(0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to close output: %w", err)}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to replace output: %w", err)}
	}
	return nil
}
