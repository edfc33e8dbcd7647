package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFile       = "file"
	KeyTable      = "table"
	KeyColumn     = "column"
	KeyDocKey     = "doc_key"
	KeyNodeID     = "node_id"
	KeyRunID      = "run_id"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Table(name string) slog.Attr     { return slog.String(KeyTable, name) }
func Column(name string) slog.Attr    { return slog.String(KeyColumn, name) }
func DocKey(k string) slog.Attr       { return slog.String(KeyDocKey, k) }
func NodeID(id string) slog.Attr      { return slog.String(KeyNodeID, id) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
