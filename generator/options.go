package generator

import (
	"log/slog"

	"github.com/lucasefe/dbterd/docs"
	"github.com/lucasefe/dbterd/schema"
)

// Style selects the whitespace layout of the output.
type Style int

const (
	// StyleCompat reproduces the historical layout byte for byte: every line
	// ends with a space before the newline, columns without annotations keep
	// an empty annotation slot, and the table note line is always written.
	StyleCompat Style = iota
	// StyleTrimmed drops trailing spaces and omits an empty table note line.
	StyleTrimmed
)

// Option configures a Generator.
type Option func(*options)

type options struct {
	index        *docs.Index
	style        Style
	exclude      schema.TableSet
	excludeNames []string
	logger       *slog.Logger
}

func defaultOptions() *options {
	return &options{
		index:  docs.NewIndex(nil),
		style:  StyleCompat,
		logger: slog.Default(),
	}
}

// WithIndex sets the documentation index used to resolve doc references.
// Without it, every doc reference is unresolved.
func WithIndex(idx *docs.Index) Option {
	return func(o *options) {
		if idx != nil {
			o.index = idx
		}
	}
}

// WithStyle sets the output whitespace style. Defaults to StyleCompat.
func WithStyle(style Style) Option {
	return func(o *options) {
		o.style = style
	}
}

// WithExcludeTables leaves the named tables, and relationships pointing at
// them, out of the output.
func WithExcludeTables(tables ...string) Option {
	return func(o *options) {
		o.excludeNames = tables
		o.exclude = schema.NewTableSet(tables...)
	}
}

// WithLogger sets the logger used for skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
