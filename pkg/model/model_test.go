package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func TestFieldDefinitionCloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	min := 1.0
	original := model.FieldDefinition{
		ID:             "a",
		Type:           model.FieldTypeSelect,
		Options:        []model.Option{{Label: "One", Value: "1"}},
		Validation:     &model.Validation{Min: &min, Pattern: "^x"},
		VisibilityRule: model.DeclarativeRule("b", "yes", model.ActionShow),
	}

	clone := original.Clone()
	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	clone.Options[0].Label = "changed"
	*clone.Validation.Min = 5
	clone.Validation.Pattern = "changed"
	clone.VisibilityRule.Condition.TargetValue = "no"

	if original.Options[0].Label != "One" {
		t.Fatalf("options aliased: %q", original.Options[0].Label)
	}
	if *original.Validation.Min != 1 || original.Validation.Pattern != "^x" {
		t.Fatalf("validation aliased: %+v", original.Validation)
	}
	if original.VisibilityRule.Condition.TargetValue != "yes" {
		t.Fatalf("rule aliased: %+v", original.VisibilityRule.Condition)
	}
}

func TestVisibilityRuleKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rule *model.VisibilityRule
		want model.RuleKind
	}{
		{name: "nil", rule: nil, want: model.RuleNone},
		{name: "declarative", rule: model.DeclarativeRule("a", "yes", model.ActionShow), want: model.RuleDeclarative},
		{name: "incomplete declarative", rule: model.DeclarativeRule("a", "", model.ActionShow), want: model.RuleNone},
		{name: "expression", rule: model.ExpressionRule("a == true"), want: model.RuleExpression},
		{name: "blank expression", rule: model.ExpressionRule("   "), want: model.RuleNone},
		{
			name: "both prefers declarative",
			rule: &model.VisibilityRule{
				Condition:  &model.Condition{SourceFieldID: "a", TargetValue: "x", Action: model.ActionHide},
				Expression: "b",
			},
			want: model.RuleDeclarative,
		},
		{
			name: "incomplete declarative falls back to expression",
			rule: &model.VisibilityRule{
				Condition:  &model.Condition{SourceFieldID: "a"},
				Expression: "b",
			},
			want: model.RuleExpression,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.rule.Kind(); got != tc.want {
				t.Fatalf("Kind() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFieldTypePredicates(t *testing.T) {
	t.Parallel()

	if got := len(model.FieldTypes()); got != 12 {
		t.Fatalf("expected 12 field types, got %d", got)
	}
	for _, kind := range model.FieldTypes() {
		if !kind.Valid() {
			t.Fatalf("%q should be valid", kind)
		}
	}
	if model.FieldType("color").Valid() {
		t.Fatalf("unexpected valid type")
	}
	for _, kind := range []model.FieldType{model.FieldTypeSelect, model.FieldTypeMultiselect, model.FieldTypeRadio} {
		if !kind.HasOptions() {
			t.Fatalf("%q should carry options", kind)
		}
	}
	if model.FieldTypeCheckbox.HasOptions() {
		t.Fatalf("checkbox should not carry options")
	}
	if !model.FieldTypeSwitch.IsToggle() || model.FieldTypeText.IsToggle() {
		t.Fatalf("toggle predicate mismatch")
	}
	if !model.FieldTypeSwitch.RuleStringifies() || model.FieldTypeCheckbox.RuleStringifies() {
		t.Fatalf("only switches stringify for declarative rules")
	}
}

func TestCollectionLookup(t *testing.T) {
	t.Parallel()

	fields := model.Collection{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "second"},
		{ID: "a", Name: "third"},
	}

	if idx := fields.Index("b"); idx != 1 {
		t.Fatalf("Index(b) = %d", idx)
	}
	if _, ok := fields.Find("missing"); ok {
		t.Fatalf("expected missing field")
	}
	if field, ok := fields.FindByName("second"); !ok || field.ID != "b" {
		t.Fatalf("FindByName returned %+v, %v", field, ok)
	}
	if id, ok := fields.DuplicateID(); !ok || id != "a" {
		t.Fatalf("DuplicateID = %q, %v", id, ok)
	}
}

func TestDefaultLabeler(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"first_name":  "First Name",
		"acceptTerms": "Accept Terms",
		"address-2":   "Address 2",
		"":            "",
	}
	for input, want := range cases {
		if got := model.DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
