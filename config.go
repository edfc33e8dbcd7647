package dbterd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the inputs and options of one generation run.
type Config struct {
	SchemaPath  string `yaml:"schema"`
	CatalogPath string `yaml:"catalog"`
	OutputPath  string `yaml:"output"`
	// DocsPath is the documentation directory. Empty or missing means no docs.
	DocsPath string `yaml:"docs"`

	// ExcludeTables are left out of the output even when the schema lists them.
	ExcludeTables []string `yaml:"exclude_tables"`
	// IncludeSources emits catalog sources after catalog nodes.
	IncludeSources bool `yaml:"include_sources"`
	// StrictRelationships fails the run on a malformed relationships test
	// instead of skipping it.
	StrictRelationships bool `yaml:"strict_relationships"`
	// KeepUnresolvedDocs leaves unresolved doc references in place.
	KeepUnresolvedDocs bool `yaml:"keep_unresolved_docs"`
	// PlainTextDocs renders doc block markdown to single-line plain text.
	PlainTextDocs bool `yaml:"plain_text_docs"`
	// TrimWhitespace drops the trailing spaces of the historical layout.
	TrimWhitespace bool `yaml:"trim_whitespace"`
	// DocExtensions lists documentation file extensions. Defaults to ".md".
	DocExtensions []string `yaml:"doc_extensions"`

	Logger *slog.Logger `yaml:"-"`
}

// LoadConfig reads a YAML run configuration. Environment variables in the
// file are expanded, and relative paths are resolved against the file's
// directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: SourceConfig, Path: path, Err: err}
	}

	var config Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return nil, &LoadError{Source: SourceConfig, Path: path, Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	config.resolvePaths(filepath.Dir(path))
	return &config, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.SchemaPath, &c.CatalogPath, &c.OutputPath, &c.DocsPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks that every path a file-to-file run needs is set.
func (c *Config) Validate() error {
	if err := c.validateInputs(); err != nil {
		return err
	}
	if c.OutputPath == "" {
		return errors.New("output path is required")
	}
	return nil
}

func (c *Config) validateInputs() error {
	if c.SchemaPath == "" {
		return errors.New("schema path is required")
	}
	if c.CatalogPath == "" {
		return errors.New("catalog path is required")
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
