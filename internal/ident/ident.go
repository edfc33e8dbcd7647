// Package ident normalizes table and column identifiers for comparison and
// for emission in relationship lines.
package ident

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key returns the case-folded form of name, suitable as a map key for
// case-insensitive lookups.
func Key(name string) string {
	return cases.Fold().String(name)
}

// Equal reports whether a and b are the same identifier ignoring case.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Upper returns name in upper case using full Unicode case mapping
// (e.g. "straße" becomes "STRASSE").
func Upper(name string) string {
	return cases.Upper(language.Und).String(name)
}
