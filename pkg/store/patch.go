package store

import (
	"slices"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FieldPatch lists the attributes an update changes. Nil members are left as
// they are. The kind of a field cannot be patched: changing kind is delete
// plus add.
type FieldPatch struct {
	Label       *string `json:"label,omitempty"`
	Name        *string `json:"name,omitempty"`
	Placeholder *string `json:"placeholder,omitempty"`
	HelperText  *string `json:"helperText,omitempty"`
	Required    *bool   `json:"required,omitempty"`
	Disabled    *bool   `json:"disabled,omitempty"`
	Hidden      *bool   `json:"hidden,omitempty"`
	// Options replaces the whole list when non-nil. Ignored for kinds without
	// options.
	Options []model.Option `json:"options,omitempty"`
	MinDate *string        `json:"minDate,omitempty"`
	MaxDate *string        `json:"maxDate,omitempty"`

	Validation      *model.Validation `json:"validation,omitempty"`
	ClearValidation bool              `json:"clearValidation,omitempty"`

	VisibilityRule      *model.VisibilityRule `json:"visibilityRule,omitempty"`
	ClearVisibilityRule bool                  `json:"clearVisibilityRule,omitempty"`
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// Empty reports whether the patch changes nothing.
func (p FieldPatch) Empty() bool {
	return p.Label == nil && p.Name == nil && p.Placeholder == nil && p.HelperText == nil &&
		p.Required == nil && p.Disabled == nil && p.Hidden == nil && p.Options == nil &&
		p.MinDate == nil && p.MaxDate == nil && p.Validation == nil && !p.ClearValidation &&
		p.VisibilityRule == nil && !p.ClearVisibilityRule
}

func (p FieldPatch) apply(field model.FieldDefinition) model.FieldDefinition {
	out := field.Clone()
	if p.Label != nil {
		out.Label = *p.Label
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Placeholder != nil {
		out.Placeholder = *p.Placeholder
	}
	if p.HelperText != nil {
		out.HelperText = *p.HelperText
	}
	if p.Required != nil {
		out.Required = *p.Required
	}
	if p.Disabled != nil {
		out.Disabled = *p.Disabled
	}
	if p.Hidden != nil {
		out.Hidden = *p.Hidden
	}
	if p.Options != nil && out.Type.HasOptions() {
		out.Options = slices.Clone(p.Options)
	}
	if !out.Type.HasOptions() {
		out.Options = nil
	}
	if p.MinDate != nil {
		out.MinDate = *p.MinDate
	}
	if p.MaxDate != nil {
		out.MaxDate = *p.MaxDate
	}
	switch {
	case p.ClearValidation:
		out.Validation = nil
	case p.Validation != nil:
		v := p.Validation.Clone()
		out.Validation = &v
	}
	switch {
	case p.ClearVisibilityRule:
		out.VisibilityRule = nil
	case p.VisibilityRule != nil:
		r := p.VisibilityRule.Clone()
		out.VisibilityRule = &r
	}
	return out
}
