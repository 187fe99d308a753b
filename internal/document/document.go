// Package document builds the per-movie composite document: the single
// normalized string (title + cast + characters + crew) used as the unit of
// similarity comparison. Everything here is pure and deterministic; the same
// inputs always produce byte-identical output, which is what makes index
// rebuilds reproducible.
package document

import "strings"

// Normalize strips every character that is not an ASCII letter, digit, or
// space. Case is preserved; callers lowercase where needed. Empty output for
// empty or all-garbage input is valid.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTitle normalizes and lowercases a user-typed title for
// case-insensitive catalog lookup.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(Normalize(title)))
}

// Credits holds the cast and crew fields that feed the composite document.
// Actors and Characters are positionally aligned; Directors, Writers, and
// Composers each hold zero or more names.
type Credits struct {
	Actors     []string
	Characters []string
	Directors  []string
	Writers    []string
	Composers  []string
}

// Composite concatenates the normalized title, cast names, character names,
// and crew names in fixed order, joined with single spaces and lowercased.
// Entries that normalize to empty are dropped. A movie with no credits still
// yields a valid title-only document.
func Composite(title string, credits Credits) string {
	parts := make([]string, 0, 1+len(credits.Actors)+len(credits.Characters)+3)

	appendNormalized := func(values []string) {
		for _, v := range values {
			if n := strings.TrimSpace(Normalize(v)); n != "" {
				parts = append(parts, n)
			}
		}
	}

	if t := strings.TrimSpace(Normalize(title)); t != "" {
		parts = append(parts, t)
	}
	appendNormalized(credits.Actors)
	appendNormalized(credits.Characters)
	appendNormalized(credits.Directors)
	appendNormalized(credits.Writers)
	appendNormalized(credits.Composers)

	return strings.ToLower(strings.Join(parts, " "))
}
