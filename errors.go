package dbterd

import "fmt"

// Input sources named by LoadError.
const (
	SourceCatalog = "catalog"
	SourceSchema  = "schema"
	SourceConfig  = "config"
)

// LoadError reports an input that is missing, unreadable or unparsable.
// It is returned before any output is opened.
type LoadError struct {
	Source string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Source, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// WriteError reports an output destination that could not be created or
// written. The destination is left as it was before the run.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
