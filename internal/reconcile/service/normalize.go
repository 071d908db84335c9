package service

import (
	"strings"
	"unicode"

	"casting_ops_backend/internal/notion"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var honorifics = []string{"様", "さん", "サン"}

// NormalizeName folds a cast name so roster spellings and sheet spellings
// match: NFKC, full-width to half-width, no inner spaces, no trailing
// honorifics.
func NormalizeName(name string) string {
	s := width.Fold.String(norm.NFKC.String(name))
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	for trimmed := true; trimmed; {
		trimmed = false
		for _, h := range honorifics {
			if rest, ok := strings.CutSuffix(s, h); ok && rest != "" {
				s = rest
				trimmed = true
			}
		}
	}
	return strings.ToLower(s)
}

// pageKey normalizes an external page id or URL to the key bookings store.
func pageKey(raw string) string {
	if key := notion.NormalizePageID(raw); key != "" {
		return key
	}
	return strings.TrimSpace(raw)
}
