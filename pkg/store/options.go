package store

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/locale"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Option customises a Store.
type Option func(*Store)

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithNameGenerator overrides the default name generator.
func WithNameGenerator(gen NameGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.names = gen
		}
	}
}

// WithTranslator sets the translator used for default labels and the copy
// marker.
func WithTranslator(t locale.Translator) Option {
	return func(s *Store) {
		s.translator = t
	}
}

// WithLocale selects the language of generated labels.
func WithLocale(tag string) Option {
	return func(s *Store) {
		s.locale = tag
	}
}

// WithLogger attaches a logger. The store logs ignored operations at debug
// level only.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFields seeds the collection. Invalid seeds (duplicate ids) are dropped
// and logged; use Replace to observe the error.
func WithFields(fields []model.FieldDefinition) Option {
	return func(s *Store) {
		s.seed = fields
	}
}
