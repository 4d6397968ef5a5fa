// Package preview owns the values entered while previewing a form. A Session
// snapshots the field collection when it opens, accepts answers keyed by field
// id and recomputes visibility over the whole collection on every read. The
// values are discarded when the session closes.
package preview

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	// ErrUnknownField is returned for ids that are not part of the previewed
	// collection.
	ErrUnknownField = errors.New("preview: unknown field")
	// ErrClosed is returned by mutating calls after Close.
	ErrClosed = errors.New("preview: session closed")
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for submission failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithValues seeds the session with prefilled answers. Unknown ids and values
// that do not fit their field are skipped.
func WithValues(values model.ValueMap) Option {
	return func(s *Session) {
		s.prefill = values
	}
}

// Session is a single preview of a form. It is not safe for concurrent use.
type Session struct {
	fields    model.Collection
	values    model.ValueMap
	evaluator codec.VisibilityFilter
	logger    *zap.Logger
	prefill   model.ValueMap
	closed    bool
}

// NewSession opens a preview over a deep copy of fields.
func NewSession(fields model.Collection, evaluator codec.VisibilityFilter, opts ...Option) *Session {
	s := &Session{
		fields:    fields.Clone(),
		values:    make(model.ValueMap),
		evaluator: evaluator,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for id, raw := range s.prefill {
		if err := s.SetValue(id, raw); err != nil {
			s.logger.Debug("skipping prefilled value", zap.String("field_id", id), zap.Error(err))
		}
	}
	s.prefill = nil
	return s
}

// Fields returns the previewed collection.
func (s *Session) Fields() model.Collection {
	return s.fields.Clone()
}

// SetValue records an answer after normalising it for the field kind.
func (s *Session) SetValue(id string, raw any) error {
	if s.closed {
		return ErrClosed
	}
	field, ok := s.fields.Find(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	value, err := Normalize(field, raw)
	if err != nil {
		return err
	}
	if value == nil {
		delete(s.values, id)
		return nil
	}
	s.values[id] = value
	return nil
}

// Clear forgets the answer for id.
func (s *Session) Clear(id string) {
	delete(s.values, id)
}

// Value returns the answer recorded for id.
func (s *Session) Value(id string) (any, bool) {
	value, ok := s.values[id]
	return value, ok
}

// Values returns a copy of every recorded answer.
func (s *Session) Values() model.ValueMap {
	return s.values.Clone()
}

// IsVisible reports whether the field with id currently renders.
func (s *Session) IsVisible(id string) bool {
	field, ok := s.fields.Find(id)
	if !ok {
		return false
	}
	return s.evaluator.IsVisible(s.fields, s.values, field)
}

// Visible returns the fields that currently render, in canvas order.
func (s *Session) Visible() model.Collection {
	out := make(model.Collection, 0, len(s.fields))
	for _, field := range s.fields {
		if s.evaluator.IsVisible(s.fields, s.values, field) {
			out = append(out, field.Clone())
		}
	}
	return out
}

// VisibleIDs returns the ids of Visible.
func (s *Session) VisibleIDs() []string {
	visible := s.Visible()
	out := make([]string, len(visible))
	for i, field := range visible {
		out[i] = field.ID
	}
	return out
}

// Submit encodes the answers of the visible fields keyed by field name.
func (s *Session) Submit() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	out, err := codec.EncodeValues(s.fields, s.values,
		codec.WithVisibility(s.evaluator),
		codec.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("preview: submit: %w", err)
	}
	return out, nil
}

// Close discards every answer. The session cannot be written afterwards.
func (s *Session) Close() {
	s.values = make(model.ValueMap)
	s.closed = true
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	return s.closed
}
