// Package textnorm normalizes noisy bank-statement text so the
// classifier and fingerprinter see the same canonical form.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, maps the euro sign to "E", collapses
// whitespace runs to a single space, trims, and upper-cases.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// Transformers carry state, so build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ReplaceAll(out, "€", "E")
	out = strings.Join(strings.Fields(out), " ")
	return strings.ToUpper(out)
}
