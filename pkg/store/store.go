// Package store owns the ordered field collection and the selection pointer of
// a form being designed. It is the only component that mutates the
// collection; renderers read snapshots and translate gestures into calls.
//
// A Store is single-owner: every method runs to completion on the caller's
// goroutine and no internal locking is performed. Adapters that serve several
// goroutines (the HTTP server, for instance) must serialise access themselves.
package store

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/locale"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	copySuffix        = "_copy"
	defaultOptionSize = 2
	maxNameAttempts   = 64
)

// Store is the single source of truth for field order, content and selection.
type Store struct {
	fields     model.Collection
	selected   string
	newID      IDGenerator
	names      NameGenerator
	translator locale.Translator
	locale     string
	logger     *zap.Logger
	seed       []model.FieldDefinition

	listeners    map[int]Listener
	nextListener int
}

// New constructs an empty Store. Missing collaborators fall back to UUID ids,
// sqids-backed names, the built-in translator and a no-op logger.
func New(options ...Option) *Store {
	s := &Store{
		newID:  UUIDGenerator(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.names == nil {
		names, err := NewSqidNames()
		if err != nil {
			s.names = &SequenceNames{}
		} else {
			s.names = names
		}
	}
	if s.translator == nil {
		if t, err := locale.NewTranslator(nil); err == nil {
			s.translator = t
		}
	}
	if len(s.seed) > 0 {
		if err := s.Replace(s.seed); err != nil {
			s.logger.Warn("store: ignoring seed collection", zap.Error(err))
		}
		s.seed = nil
	}
	return s
}

// AddField appends a new field of the given kind with kind-derived defaults and
// selects it.
func (s *Store) AddField(kind model.FieldType) (model.FieldDefinition, error) {
	if !kind.Valid() {
		return model.FieldDefinition{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, kind)
	}

	typeLabel := locale.TypeLabel(s.translator, s.locale, kind)
	field := model.FieldDefinition{
		ID:       s.newID(),
		Type:     kind,
		Label:    locale.Text(s.translator, s.locale, locale.KeyNewField, typeLabel),
		Name:     s.generateName(),
		Required: false,
		Disabled: false,
	}
	if kind.HasOptions() {
		field.Options = s.defaultOptions()
	}

	s.fields = append(s.fields, field)
	s.selected = field.ID
	s.emit(Event{Kind: EventAdded, FieldID: field.ID, To: len(s.fields) - 1})
	return field.Clone(), nil
}

// UpdateField merges patch into the field with the given id. Attributes absent
// from the patch are preserved. Nothing is applied when an error is returned.
func (s *Store) UpdateField(id string, patch FieldPatch) error {
	idx := s.fields.Index(id)
	if idx < 0 {
		s.logger.Debug("store: update ignored", zap.String("field_id", id))
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if patch.Name != nil && *patch.Name != "" && s.nameTaken(*patch.Name, id) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, *patch.Name)
	}

	s.fields[idx] = patch.apply(s.fields[idx])
	s.emit(Event{Kind: EventUpdated, FieldID: id, To: idx})
	return nil
}

// DeleteField removes the field and clears the selection when it pointed at
// it. It reports whether a field was removed.
func (s *Store) DeleteField(id string) bool {
	idx := s.fields.Index(id)
	if idx < 0 {
		s.logger.Debug("store: delete ignored", zap.String("field_id", id))
		return false
	}
	s.fields = slices.Delete(s.fields, idx, idx+1)
	if s.selected == id {
		s.selected = ""
	}
	s.emit(Event{Kind: EventDeleted, FieldID: id, From: idx})
	return true
}

// DuplicateField appends a deep copy of the field with a fresh id, a "_copy"
// name suffix and a localized copy marker on the label. The copy is appended
// at the end of the collection and the selection is left untouched.
func (s *Store) DuplicateField(id string) (model.FieldDefinition, bool) {
	source, ok := s.fields.Find(id)
	if !ok {
		s.logger.Debug("store: duplicate ignored", zap.String("field_id", id))
		return model.FieldDefinition{}, false
	}

	dup := source.Clone()
	dup.ID = s.newID()
	dup.Name = s.copyName(source.Name)
	dup.Label = locale.Text(s.translator, s.locale, locale.KeyCopyMarker, source.Label)

	s.fields = append(s.fields, dup)
	s.emit(Event{Kind: EventDuplicated, FieldID: dup.ID, SourceID: id, To: len(s.fields) - 1})
	return dup.Clone(), true
}

// MoveField removes the element at from and reinserts it at to. Indices come
// from a drag gesture that already constrains them; out of range values are
// ignored and reported as false.
func (s *Store) MoveField(from, to int) bool {
	n := len(s.fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.logger.Debug("store: move ignored",
			zap.Int("from", from), zap.Int("to", to), zap.Int("len", n))
		return false
	}
	if from == to {
		return true
	}
	moved := s.fields[from]
	s.fields = slices.Delete(s.fields, from, from+1)
	s.fields = slices.Insert(s.fields, to, moved)
	s.emit(Event{Kind: EventMoved, FieldID: moved.ID, From: from, To: to})
	return true
}

// SelectField points the selection at id. An empty id or an id absent from the
// collection clears the selection; the latter reports false.
func (s *Store) SelectField(id string) bool {
	if id == "" {
		s.ClearSelection()
		return true
	}
	if s.fields.Index(id) < 0 {
		s.logger.Debug("store: select of unknown field", zap.String("field_id", id))
		s.ClearSelection()
		return false
	}
	s.selected = id
	s.emit(Event{Kind: EventSelected, FieldID: id})
	return true
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	if s.selected == "" {
		return
	}
	s.selected = ""
	s.emit(Event{Kind: EventSelected})
}

// SelectedField returns the selected field, if any.
func (s *Store) SelectedField() (model.FieldDefinition, bool) {
	if s.selected == "" {
		return model.FieldDefinition{}, false
	}
	field, ok := s.fields.Find(s.selected)
	if !ok {
		return model.FieldDefinition{}, false
	}
	return field.Clone(), true
}

// SelectedID returns the selected id or "".
func (s *Store) SelectedID() string {
	return s.selected
}

// Fields returns a deep copy of the collection in canvas order.
func (s *Store) Fields() model.Collection {
	return s.fields.Clone()
}

// Field returns a copy of the field with the given id.
func (s *Store) Field(id string) (model.FieldDefinition, bool) {
	field, ok := s.fields.Find(id)
	if !ok {
		return model.FieldDefinition{}, false
	}
	return field.Clone(), true
}

// IndexOf returns the canvas position of id, or -1.
func (s *Store) IndexOf(id string) int {
	return s.fields.Index(id)
}

// Len returns the number of fields.
func (s *Store) Len() int {
	return len(s.fields)
}

// Replace swaps the whole collection, typically with a decoded document, and
// clears the selection.
func (s *Store) Replace(fields []model.FieldDefinition) error {
	next := model.Collection(fields).Clone()
	if dup, ok := next.DuplicateID(); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, dup)
	}
	for i := range next {
		if !next[i].Type.Valid() {
			return fmt.Errorf("%w: %q (field %s)", ErrUnknownFieldType, next[i].Type, next[i].ID)
		}
		if !next[i].Type.HasOptions() {
			next[i].Options = nil
		}
	}
	s.fields = next
	s.selected = ""
	s.emit(Event{Kind: EventReplaced})
	return nil
}

func (s *Store) defaultOptions() []model.Option {
	options := make([]model.Option, defaultOptionSize)
	for i := range options {
		options[i] = model.Option{
			Label: locale.Text(s.translator, s.locale, locale.KeyOption, i+1),
			Value: fmt.Sprintf("option%d", i+1),
		}
	}
	return options
}

func (s *Store) generateName() string {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := s.names.Next()
		if name != "" && !s.nameTaken(name, "") {
			return name
		}
	}
	return s.uniqueName(defaultNamePrefix + s.newID())
}

func (s *Store) copyName(name string) string {
	return s.uniqueName(name + copySuffix)
}

// uniqueName returns base, or base_N with the smallest N >= 2 not in use.
func (s *Store) uniqueName(base string) string {
	if !s.nameTaken(base, "") {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !s.nameTaken(candidate, "") {
			return candidate
		}
	}
}

func (s *Store) nameTaken(name, exceptID string) bool {
	return slices.ContainsFunc(s.fields, func(f model.FieldDefinition) bool {
		return f.Name == name && f.ID != exceptID
	})
}
