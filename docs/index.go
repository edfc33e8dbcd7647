// Package docs builds the documentation index from named doc blocks and
// resolves doc references in schema descriptions.
//
// A doc block looks like:
//
//	{% docs orders_status %}
//	One of placed, shipped or returned.
//	{% enddocs %}
//
// and is referenced from a description as {{ doc("orders_status") }}.
package docs

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/lucasefe/dbterd/internal/logfields"
)

var blockPattern = regexp.MustCompile(`(?s)\{%-?\s*docs\s+(.*?)\s*-?%\}(.*?)\{%-?\s*enddocs\s*-?%\}`)

// Index maps doc block names to their text. It is immutable once built.
type Index struct {
	entries        map[string]string
	keepUnresolved bool
	logger         *slog.Logger
}

// Build scans dir (non-recursively) for doc sources and indexes every doc
// block found. A missing directory yields an empty index. Files that cannot
// be read or are not valid UTF-8 are logged and skipped. When a block name
// occurs more than once, the block from the later file in directory order
// wins.
func Build(dir string, opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	idx := &Index{entries: make(map[string]string), keepUnresolved: o.keepUnresolved, logger: o.logger}
	if dir == "" {
		return idx
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			o.logger.Warn("Failed to list documentation directory", logfields.Path(dir), logfields.Error(err))
		}
		return idx
	}

	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(o.extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			o.logger.Warn("Skipping unreadable documentation file", logfields.File(path), logfields.Error(err))
			continue
		}
		if !utf8.Valid(content) {
			o.logger.Warn("Skipping documentation file with invalid UTF-8", logfields.File(path))
			continue
		}
		idx.add(string(content), o)
	}

	o.logger.Debug("Documentation index built", logfields.Path(dir), logfields.Count(len(idx.entries)))
	return idx
}

// NewIndex returns an index over the given entries, mostly useful in tests
// and for callers that source documentation elsewhere.
func NewIndex(entries map[string]string, opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	idx := &Index{entries: make(map[string]string, len(entries)), keepUnresolved: o.keepUnresolved, logger: o.logger}
	for k, v := range entries {
		idx.entries[k] = v
	}
	return idx
}

func (idx *Index) add(content string, o *options) {
	for _, m := range blockPattern.FindAllStringSubmatch(content, -1) {
		key := strings.TrimSpace(m[1])
		body := strings.TrimSpace(m[2])
		if o.plainText {
			body = PlainText(body)
		}
		idx.entries[key] = strings.ReplaceAll(body, "'", "")
	}
}

// Lookup returns the text of the named doc block.
func (idx *Index) Lookup(key string) (string, bool) {
	if idx == nil {
		return "", false
	}
	text, ok := idx.entries[key]
	return text, ok
}

// Len returns the number of indexed doc blocks.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Option configures index construction.
type Option func(*options)

type options struct {
	extensions     []string
	keepUnresolved bool
	plainText      bool
	logger         *slog.Logger
}

func defaultOptions() *options {
	return &options{
		extensions: []string{".md"},
		logger:     slog.Default(),
	}
}

// WithExtensions sets the file extensions treated as doc sources.
// Defaults to ".md". Extensions are matched case-insensitively.
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		if len(exts) == 0 {
			return
		}
		o.extensions = make([]string, 0, len(exts))
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			o.extensions = append(o.extensions, strings.ToLower(ext))
		}
	}
}

// WithKeepUnresolved keeps references to unknown doc blocks as literal text
// instead of removing them.
func WithKeepUnresolved() Option {
	return func(o *options) {
		o.keepUnresolved = true
	}
}

// WithPlainText renders each doc block's markdown to single-line plain text
// before indexing it.
func WithPlainText() Option {
	return func(o *options) {
		o.plainText = true
	}
}

// WithLogger sets the logger used for skipped-file warnings and unresolved
// reference debug messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
