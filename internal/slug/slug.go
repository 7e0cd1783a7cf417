// Package slug derives URL-safe identifiers from human-readable names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches characters that are not word characters, whitespace, or hyphens.
	disallowedRe = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// Matches runs of whitespace, underscores, and hyphens (replaced with one hyphen).
	separatorRe = regexp.MustCompile(`[\s_-]+`)
)

// foldAccents strips combining marks after NFKD decomposition,
// so "Café" contributes "cafe" rather than losing the accented rune.
var foldAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a name or title to its canonical slug.
// The function is pure, deterministic, and idempotent: Make(Make(x)) == Make(x).
//
// Rules:
//  1. Fold accented characters to their ASCII base
//  2. Lowercase and trim whitespace
//  3. Remove characters outside word chars, whitespace, and hyphens
//  4. Collapse whitespace/underscore/hyphen runs to a single hyphen
//  5. Trim leading/trailing hyphens
//
// Examples:
//
//	"Hello World"     → "hello-world"
//	"Tech & Design!!" → "tech-design"
//	"  multi   word " → "multi-word"
//	"Café au Lait"    → "cafe-au-lait"
func Make(name string) string {
	s, _, err := transform.String(foldAccents, name)
	if err != nil {
		s = name
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = disallowedRe.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
