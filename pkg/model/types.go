package model

import (
	"slices"
	"time"
)

// FieldType is the closed set of field kinds a form can contain.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeSwitch      FieldType = "switch"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeFile        FieldType = "file"
	FieldTypeImage       FieldType = "image"
	FieldTypeDate        FieldType = "date"
	FieldTypeTime        FieldType = "time"
	FieldTypeDatetime    FieldType = "datetime"
)

var fieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeSelect,
	FieldTypeMultiselect,
	FieldTypeCheckbox,
	FieldTypeSwitch,
	FieldTypeRadio,
	FieldTypeFile,
	FieldTypeImage,
	FieldTypeDate,
	FieldTypeTime,
	FieldTypeDatetime,
}

// FieldTypes returns every field kind in palette order.
func FieldTypes() []FieldType {
	return slices.Clone(fieldTypes)
}

// Valid reports whether t belongs to the closed set of field kinds.
func (t FieldType) Valid() bool {
	return slices.Contains(fieldTypes, t)
}

// HasOptions reports whether the kind carries an options list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeMultiselect, FieldTypeRadio:
		return true
	default:
		return false
	}
}

// IsToggle reports whether the kind produces a boolean value.
func (t FieldType) IsToggle() bool {
	return t == FieldTypeSwitch || t == FieldTypeCheckbox
}

// RuleStringifies reports whether declarative rules compare the kind's
// boolean answer as "true"/"false". Only switches do; a checkbox answer is a
// bool and never equals a target string.
func (t FieldType) RuleStringifies() bool {
	return t == FieldTypeSwitch
}

// IsTemporal reports whether the kind produces a date and/or time value.
func (t FieldType) IsTemporal() bool {
	switch t {
	case FieldTypeDate, FieldTypeTime, FieldTypeDatetime:
		return true
	default:
		return false
	}
}

// HasDateBounds reports whether minDate/maxDate apply to the kind.
func (t FieldType) HasDateBounds() bool {
	return t == FieldTypeDate || t == FieldTypeDatetime
}

// IsBinary reports whether the kind records an opaque binary reference.
func (t FieldType) IsBinary() bool {
	return t == FieldTypeFile || t == FieldTypeImage
}

// Option is a single {label, value} choice of a select, multiselect or radio
// field.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Validation is carried as data only; nothing in this module enforces it.
type Validation struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// FieldDefinition is the design-time description of one form field.
type FieldDefinition struct {
	ID             string          `json:"id" yaml:"id" validate:"required"`
	Type           FieldType       `json:"type" yaml:"type" validate:"required,fieldtype"`
	Label          string          `json:"label" yaml:"label"`
	Name           string          `json:"name" yaml:"name"`
	Placeholder    string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelperText     string          `json:"helperText,omitempty" yaml:"helperText,omitempty"`
	Required       bool            `json:"required" yaml:"required"`
	Disabled       bool            `json:"disabled" yaml:"disabled"`
	Hidden         bool            `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Options        []Option        `json:"options,omitempty" yaml:"options,omitempty" validate:"omitempty,dive"`
	MinDate        string          `json:"minDate,omitempty" yaml:"minDate,omitempty"`
	MaxDate        string          `json:"maxDate,omitempty" yaml:"maxDate,omitempty"`
	Validation     *Validation     `json:"validation,omitempty" yaml:"validation,omitempty"`
	VisibilityRule *VisibilityRule `json:"visibilityRule,omitempty" yaml:"visibilityRule,omitempty"`
}

// Clone returns a deep copy so options, validation and the visibility rule of
// the copy never alias the receiver.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if f.Options != nil {
		out.Options = slices.Clone(f.Options)
	}
	if f.Validation != nil {
		v := f.Validation.Clone()
		out.Validation = &v
	}
	if f.VisibilityRule != nil {
		r := f.VisibilityRule.Clone()
		out.VisibilityRule = &r
	}
	return out
}

// Clone returns a copy whose numeric bounds do not share pointers with v.
func (v Validation) Clone() Validation {
	out := v
	if v.Min != nil {
		value := *v.Min
		out.Min = &value
	}
	if v.Max != nil {
		value := *v.Max
		out.Max = &value
	}
	return out
}

// Collection is an ordered sequence of field definitions. Order is both the
// canvas order and the preview render order.
type Collection []FieldDefinition

// Clone deep-copies every definition.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for i, field := range c {
		out[i] = field.Clone()
	}
	return out
}

// Index returns the position of the field with the given id, or -1.
func (c Collection) Index(id string) int {
	return slices.IndexFunc(c, func(f FieldDefinition) bool { return f.ID == id })
}

// Find returns the field with the given id.
func (c Collection) Find(id string) (FieldDefinition, bool) {
	idx := c.Index(id)
	if idx < 0 {
		return FieldDefinition{}, false
	}
	return c[idx], true
}

// FindByName returns the first field using name.
func (c Collection) FindByName(name string) (FieldDefinition, bool) {
	idx := slices.IndexFunc(c, func(f FieldDefinition) bool { return f.Name == name })
	if idx < 0 {
		return FieldDefinition{}, false
	}
	return c[idx], true
}

// DuplicateID returns the first id that appears more than once.
func (c Collection) DuplicateID() (string, bool) {
	seen := make(map[string]struct{}, len(c))
	for _, field := range c {
		if _, ok := seen[field.ID]; ok {
			return field.ID, true
		}
		seen[field.ID] = struct{}{}
	}
	return "", false
}

// FileRef is the opaque binary reference recorded for file and image fields.
// Handle is owned by the rendering layer (a blob URL, a temp path, ...).
type FileRef struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	Handle      string `json:"-"`
}

// Resolvable reports whether the reference identifies anything.
func (r FileRef) Resolvable() bool {
	return r.Name != "" || r.Handle != ""
}

// ValueMap holds the answers entered during a preview session keyed by field
// id. Absent keys mean untouched. Values are string, bool, []string,
// time.Time or FileRef depending on the field kind.
type ValueMap map[string]any

// Clone copies the map and any slice values it holds.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for key, value := range m {
		switch typed := value.(type) {
		case []string:
			out[key] = slices.Clone(typed)
		case []any:
			out[key] = slices.Clone(typed)
		default:
			out[key] = value
		}
	}
	return out
}

// Time returns the value for id when it holds a time.Time.
func (m ValueMap) Time(id string) (time.Time, bool) {
	value, ok := m[id].(time.Time)
	return value, ok
}
