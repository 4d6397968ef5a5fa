package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

var flagLabels = []string{"Required", "Disabled", "Hidden"}

var ruleLabels = []string{
	"Always visible",
	"Depends on another field",
	"Expression",
}

var actionChoices = []model.Action{model.ActionShow, model.ActionHide}

// edit walks the properties of the selected field and applies them as one
// patch, so observers see a single update.
func (d *Designer) edit(ctx context.Context) error {
	field, ok := d.store.SelectedField()
	if !ok {
		return ErrNoSelection
	}

	var patch store.FieldPatch
	var err error

	if patch.Label, err = d.inputPtr(ctx, "Label", field.Label, nil); err != nil {
		return err
	}
	if patch.Name, err = d.inputPtr(ctx, "Name", field.Name, nil); err != nil {
		return err
	}
	if !field.Type.IsToggle() && !field.Type.IsBinary() {
		if patch.Placeholder, err = d.inputPtr(ctx, "Placeholder", field.Placeholder, nil); err != nil {
			return err
		}
	}
	if patch.HelperText, err = d.inputPtr(ctx, "Helper text", field.HelperText, nil); err != nil {
		return err
	}

	if err := d.editFlags(ctx, field, &patch); err != nil {
		return err
	}

	if field.Type.HasOptions() {
		raw, err := d.driver.TextArea(ctx, TextAreaConfig{
			Message: "Options",
			Help:    "One per line, as label or label=value",
			Default: formatOptions(field.Options),
		})
		if err != nil {
			return err
		}
		patch.Options = parseOptions(raw)
	}

	if field.Type.HasDateBounds() {
		if patch.MinDate, err = d.inputPtr(ctx, "Earliest date (YYYY-MM-DD)", field.MinDate, validDate); err != nil {
			return err
		}
		if patch.MaxDate, err = d.inputPtr(ctx, "Latest date (YYYY-MM-DD)", field.MaxDate, validDate); err != nil {
			return err
		}
	}

	if err := d.editRule(ctx, field, &patch); err != nil {
		return err
	}
	return d.store.UpdateField(field.ID, patch)
}

func (d *Designer) inputPtr(ctx context.Context, message, current string, validate func(string) error) (*string, error) {
	value, err := d.driver.Input(ctx, InputConfig{
		Message:   message,
		Default:   current,
		Validator: validate,
	})
	if err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	if validate != nil {
		if err := validate(value); err != nil {
			return nil, err
		}
	}
	return &value, nil
}

func (d *Designer) editFlags(ctx context.Context, field model.FieldDefinition, patch *store.FieldPatch) error {
	current := []bool{field.Required, field.Disabled, field.Hidden}
	var defaults []int
	for i, on := range current {
		if on {
			defaults = append(defaults, i)
		}
	}
	chosen, err := d.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Flags",
		Options:  flagLabels,
		Defaults: defaults,
	})
	if err != nil {
		return err
	}
	patch.Required = store.Ptr(slices.Contains(chosen, 0))
	patch.Disabled = store.Ptr(slices.Contains(chosen, 1))
	patch.Hidden = store.Ptr(slices.Contains(chosen, 2))
	return nil
}

func (d *Designer) editRule(ctx context.Context, field model.FieldDefinition, patch *store.FieldPatch) error {
	kind := field.VisibilityRule.Kind()
	currentIdx := 0
	switch kind {
	case model.RuleDeclarative:
		currentIdx = 1
	case model.RuleExpression:
		currentIdx = 2
	}
	idx, err := d.driver.Select(ctx, SelectConfig{
		Message:      "Visibility",
		Options:      ruleLabels,
		DefaultIndex: currentIdx,
	})
	if err != nil {
		return err
	}

	switch idx {
	case 1:
		rule, err := d.promptCondition(ctx, field)
		if err != nil {
			return err
		}
		if rule == nil {
			return nil
		}
		patch.VisibilityRule = rule
	case 2:
		current := ""
		if field.VisibilityRule != nil {
			current = field.VisibilityRule.Expression
		}
		expression, err := d.inputPtr(ctx, "Expression", current, validExpression)
		if err != nil {
			return err
		}
		if *expression == "" {
			patch.ClearVisibilityRule = true
			return nil
		}
		patch.VisibilityRule = model.ExpressionRule(*expression)
	default:
		patch.ClearVisibilityRule = true
	}
	return nil
}

// promptCondition asks for the source field, target value and action of a
// declarative rule. It returns nil when no other field can act as source.
func (d *Designer) promptCondition(ctx context.Context, field model.FieldDefinition) (*model.VisibilityRule, error) {
	var sources model.Collection
	for _, candidate := range d.store.Fields() {
		if candidate.ID != field.ID {
			sources = append(sources, candidate)
		}
	}
	if len(sources) == 0 {
		return nil, d.driver.Info(ctx, "Add another field to use as a source")
	}

	var current model.Condition
	if field.VisibilityRule != nil && field.VisibilityRule.Condition != nil {
		current = *field.VisibilityRule.Condition
	}

	sourceIdx, err := d.driver.Select(ctx, SelectConfig{
		Message:      "Source field",
		Options:      fieldLabels(sources),
		DefaultIndex: max(sources.Index(current.SourceFieldID), 0),
	})
	if err != nil {
		return nil, err
	}
	if sourceIdx < 0 || sourceIdx >= len(sources) {
		return nil, fmt.Errorf("tui: invalid source choice %d", sourceIdx)
	}
	source := sources[sourceIdx]

	target, err := d.promptTargetValue(ctx, source, current.TargetValue)
	if err != nil {
		return nil, err
	}

	actionIdx, err := d.driver.Select(ctx, SelectConfig{
		Message:      "When it matches",
		Options:      []string{"Show this field", "Hide this field"},
		DefaultIndex: max(slices.Index(actionChoices, current.Action), 0),
	})
	if err != nil {
		return nil, err
	}
	action := model.ActionShow
	if actionIdx == 1 {
		action = model.ActionHide
	}
	return model.DeclarativeRule(source.ID, target, action), nil
}

// promptTargetValue offers the source's options, or true/false for switches,
// and falls back to free text.
func (d *Designer) promptTargetValue(ctx context.Context, source model.FieldDefinition, current string) (string, error) {
	var choices []string
	switch {
	case source.Type.RuleStringifies():
		choices = []string{"true", "false"}
	case source.Type.HasOptions():
		for _, opt := range source.Options {
			choices = append(choices, opt.Value)
		}
	}
	if len(choices) == 0 {
		value, err := d.inputPtr(ctx, "Target value", current, nonEmpty)
		if err != nil {
			return "", err
		}
		return *value, nil
	}
	idx, err := d.driver.Select(ctx, SelectConfig{
		Message:      "Target value",
		Options:      choices,
		DefaultIndex: max(slices.Index(choices, current), 0),
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(choices) {
		return "", fmt.Errorf("tui: invalid target choice %d", idx)
	}
	return choices[idx], nil
}

func formatOptions(options []model.Option) string {
	lines := make([]string, len(options))
	for i, opt := range options {
		lines[i] = opt.Label + "=" + opt.Value
	}
	return strings.Join(lines, "\n")
}

// parseOptions reads one option per line. A line without "=" uses a
// snake_case form of the label as value.
func parseOptions(raw string) []model.Option {
	out := []model.Option{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, "=")
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			value = strings.ToLower(strings.Join(strings.Fields(label), "_"))
		}
		out = append(out, model.Option{Label: label, Value: value})
	}
	return out
}

func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("tui: %q is not a YYYY-MM-DD date", s)
	}
	return nil
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("tui: a value is required")
	}
	return nil
}

// validExpression rejects expressions that do not parse. Evaluation errors
// against empty values are fine since the preview supplies real ones.
func validExpression(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := expr.New().Eval("", s, visibility.Context{}); errors.Is(err, visibility.ErrSyntax) {
		return err
	}
	return nil
}
