package docs

import (
	"regexp"

	"github.com/lucasefe/dbterd/internal/logfields"
)

// refPattern matches a doc reference with its optional surrounding quotes and
// a trailing newline: '{{ doc("name") }}'. Names are Unicode letters, digits
// and underscores.
var refPattern = regexp.MustCompile(`'?\{\{\s*doc\(\s*["']([\p{L}\p{N}_]+)["']\s*\)\s*\}\}'?\n?`)

// Resolve replaces every doc reference in text with the referenced block's
// text. References to unknown blocks are removed, or kept verbatim when the
// index was built with WithKeepUnresolved. Text without references is
// returned unchanged.
func (idx *Index) Resolve(text string) string {
	return refPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := refPattern.FindStringSubmatch(match)[1]
		if resolved, ok := idx.Lookup(key); ok {
			return resolved
		}
		if idx == nil {
			return ""
		}
		idx.logger.Debug("Unresolved doc reference", logfields.DocKey(key))
		if idx.keepUnresolved {
			return match
		}
		return ""
	})
}

// Resolve is a convenience wrapper around idx.Resolve that accepts a nil index.
func Resolve(text string, idx *Index) string {
	return idx.Resolve(text)
}
