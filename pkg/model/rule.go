package model

import "strings"

// Action decides what a met declarative condition does to its field.
type Action string

const (
	ActionShow Action = "show"
	ActionHide Action = "hide"
)

// RuleKind names the active variant of a VisibilityRule.
type RuleKind string

const (
	RuleNone        RuleKind = ""
	RuleDeclarative RuleKind = "declarative"
	RuleExpression  RuleKind = "expression"
)

// Condition is the declarative variant: the field reacts to another field's
// current value.
type Condition struct {
	SourceFieldID string `json:"sourceFieldId" yaml:"sourceFieldId"`
	TargetValue   string `json:"targetValue" yaml:"targetValue"`
	Action        Action `json:"action,omitempty" yaml:"action,omitempty" validate:"omitempty,oneof=show hide"`
}

// Complete reports whether both the source and the target value are set.
func (c Condition) Complete() bool {
	return c.SourceFieldID != "" && c.TargetValue != ""
}

// VisibilityRule is a tagged variant. Construct it with DeclarativeRule or
// ExpressionRule; decoded documents may carry both members, in which case a
// complete condition takes precedence.
type VisibilityRule struct {
	Condition  *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	Expression string     `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// DeclarativeRule builds a source-field/target-value rule.
func DeclarativeRule(sourceFieldID, targetValue string, action Action) *VisibilityRule {
	return &VisibilityRule{Condition: &Condition{
		SourceFieldID: sourceFieldID,
		TargetValue:   targetValue,
		Action:        action,
	}}
}

// ExpressionRule builds a user-authored expression rule.
func ExpressionRule(expression string) *VisibilityRule {
	return &VisibilityRule{Expression: expression}
}

// Kind reports the variant that evaluation will use.
func (r *VisibilityRule) Kind() RuleKind {
	if r == nil {
		return RuleNone
	}
	if r.Condition != nil && r.Condition.Complete() {
		return RuleDeclarative
	}
	if strings.TrimSpace(r.Expression) != "" {
		return RuleExpression
	}
	return RuleNone
}

// Clone returns a copy that does not share the condition pointer.
func (r VisibilityRule) Clone() VisibilityRule {
	out := r
	if r.Condition != nil {
		cond := *r.Condition
		out.Condition = &cond
	}
	return out
}

// Empty reports whether neither variant carries data.
func (r *VisibilityRule) Empty() bool {
	return r == nil || (r.Condition == nil && r.Expression == "")
}
