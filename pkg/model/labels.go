package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLabeler turns a machine name such as "acceptTerms" or "address_2"
// into a display label: "Accept Terms", "Address 2".
func DefaultLabeler(name string) string {
	words := labelWords(name)
	if len(words) == 0 {
		return ""
	}
	title := cases.Title(language.Und)
	for i, word := range words {
		words[i] = title.String(word)
	}
	return strings.Join(words, " ")
}

// labelWords splits on separators, lower to upper case changes and
// letter/digit transitions.
func labelWords(name string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	for _, r := range name {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if n := len(current); n > 0 && wordBoundary(current[n-1], r) {
			flush()
		}
		current = append(current, r)
	}
	flush()
	return words
}

func wordBoundary(prev, next rune) bool {
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(next):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(next):
		return true
	default:
		return unicode.IsDigit(prev) && unicode.IsLetter(next)
	}
}
