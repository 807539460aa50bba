package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s\p{Zs}-]`)
	whitespaceRuns  = regexp.MustCompile(`[\s\p{Zs}]+`)
	hyphenRuns      = regexp.MustCompile(`-+`)
)

// Normalize turns free text into a URL-safe slug.
// Example: "  María  Gómez " -> "maria-gomez"
//
// Accents are folded by NFD decomposition followed by removal of combining
// marks; anything outside [a-z0-9], whitespace and '-' is dropped.
func Normalize(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), s)
	if err == nil {
		s = folded
	}

	s = disallowedChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithCounter returns base for counter 0 and "base-counter" otherwise
func WithCounter(base string, counter int) string {
	if counter <= 0 {
		return base
	}
	return base + "-" + strconv.Itoa(counter)
}

// WithSuffix appends a normalized suffix, e.g. a country, to slug.
// An empty or non-sluggable suffix leaves slug unchanged.
func WithSuffix(slug, suffix string) string {
	normalized := Normalize(suffix)
	if normalized == "" {
		return slug
	}
	return slug + "-" + normalized
}
