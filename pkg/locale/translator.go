// Package locale resolves the user-facing strings the designer generates on
// its own: palette labels, default field labels, default option labels and the
// marker appended to duplicated fields.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// ErrMissingTranslation is returned when a key has no entry in any language.
var ErrMissingTranslation = errors.New("locale: missing translation")

// Translator resolves a message key for a locale, formatting args with
// fmt-style verbs.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Translations maps a message key to its text per language.
type Translations map[string]map[language.Tag]string

// CatalogTranslator serves Translations through an x/text catalog. English is
// the fallback language.
type CatalogTranslator struct {
	catalog   catalog.Catalog
	languages []language.Tag
	matcher   language.Matcher
	keys      map[string]struct{}
}

// NewTranslator builds a translator from the built-in strings merged with
// extra. Entries in extra override built-ins for the same key and language.
func NewTranslator(extra Translations) (*CatalogTranslator, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	keys := make(map[string]struct{})

	for _, set := range []Translations{builtin, extra} {
		for key, byLang := range set {
			for tag, text := range byLang {
				if err := builder.SetString(tag, key, text); err != nil {
					return nil, fmt.Errorf("locale: set %q for %s: %w", key, tag, err)
				}
			}
			keys[key] = struct{}{}
		}
	}

	languages := builder.Languages()
	return &CatalogTranslator{
		catalog:   builder,
		languages: languages,
		matcher:   language.NewMatcher(languages),
		keys:      keys,
	}, nil
}

// MustTranslator is NewTranslator for package-level defaults.
func MustTranslator(extra Translations) *CatalogTranslator {
	t, err := NewTranslator(extra)
	if err != nil {
		panic(err)
	}
	return t
}

// Translate implements Translator.
func (t *CatalogTranslator) Translate(locale, key string, args ...any) (string, error) {
	if t == nil {
		return "", ErrMissingTranslation
	}
	if _, ok := t.keys[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingTranslation, key)
	}
	return message.NewPrinter(t.resolve(locale), message.Catalog(t.catalog)).Sprintf(key, args...), nil
}

// Languages lists the languages with at least one entry.
func (t *CatalogTranslator) Languages() []language.Tag {
	return append([]language.Tag(nil), t.languages...)
}

func (t *CatalogTranslator) resolve(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, index, confidence := t.matcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	return t.languages[index]
}

// Text resolves key through t, falling back to the built-in English entry
// when the translator is nil or has no entry. Unknown keys come back as is;
// key is never used as a format string.
func Text(t Translator, locale, key string, args ...any) string {
	if t != nil {
		if msg, err := t.Translate(locale, key, args...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if fallback, ok := builtin[key][language.English]; ok {
		return fmt.Sprintf(fallback, args...)
	}
	return key
}
