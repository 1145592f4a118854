// Package textnorm cleans user-supplied single-line text and folds it into
// comparable keys.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanSingleLine normalizes to NFC, replaces control characters, trims the
// result and collapses internal whitespace to single ASCII spaces.
func CleanSingleLine(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\u007f' || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// FoldAccents strips combining marks, so "São Paulo" becomes "Sao Paulo".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key returns the lookup form of a name: cleaned, accent-folded, lowercased.
func Key(s string) string {
	return strings.ToLower(FoldAccents(CleanSingleLine(s)))
}

// Tokens splits a key into words of at least two runes, dropping punctuation.
func Tokens(key string) []string {
	fields := strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
