package visibility

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Failure reasons reported for expression rules.
const (
	ReasonSyntax      = "syntax"
	ReasonEvaluation  = "evaluation"
	ReasonPanic       = "panic"
	ReasonUnavailable = "unavailable"
)

// Failure describes an expression rule that could not be evaluated. The field
// was reported visible.
type Failure struct {
	FieldID    string
	Expression string
	Reason     string
	Err        error
}

// FailureHandler receives expression failures, e.g. to count them.
type FailureHandler func(Failure)

// Option configures a FieldEvaluator.
type Option func(*FieldEvaluator)

// WithLogger routes expression failures to logger at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(e *FieldEvaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFailureHandler registers an additional observer for expression failures.
func WithFailureHandler(fn FailureHandler) Option {
	return func(e *FieldEvaluator) {
		if fn != nil {
			e.handlers = append(e.handlers, fn)
		}
	}
}

// FieldEvaluator evaluates visibility for the fields of a collection. It holds
// no per-call state, so the same instance can be shared and repeated calls
// with the same inputs give the same answer.
type FieldEvaluator struct {
	expressions Evaluator
	logger      *zap.Logger
	handlers    []FailureHandler
}

// NewFieldEvaluator builds a FieldEvaluator that delegates expression rules to
// expressions. A nil expressions evaluator makes every expression rule fail
// open.
func NewFieldEvaluator(expressions Evaluator, options ...Option) *FieldEvaluator {
	e := &FieldEvaluator{
		expressions: expressions,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// IsVisible reports whether target renders given the collection and the
// entered values.
func (e *FieldEvaluator) IsVisible(fields model.Collection, values model.ValueMap, target model.FieldDefinition) bool {
	if target.Hidden {
		return false
	}

	switch target.VisibilityRule.Kind() {
	case model.RuleDeclarative:
		return evaluateCondition(fields, values, *target.VisibilityRule.Condition)
	case model.RuleExpression:
		return e.evaluateExpression(fields, values, target)
	default:
		return true
	}
}

// VisibleIDs evaluates every field and returns the visible ids in canvas
// order.
func (e *FieldEvaluator) VisibleIDs(fields model.Collection, values model.ValueMap) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if e.IsVisible(fields, values, field) {
			out = append(out, field.ID)
		}
	}
	return out
}

// Visible evaluates every field and returns the visible definitions in canvas
// order.
func (e *FieldEvaluator) Visible(fields model.Collection, values model.ValueMap) model.Collection {
	out := make(model.Collection, 0, len(fields))
	for _, field := range fields {
		if e.IsVisible(fields, values, field) {
			out = append(out, field)
		}
	}
	return out
}

func evaluateCondition(fields model.Collection, values model.ValueMap, cond model.Condition) bool {
	current, present := values[cond.SourceFieldID]

	var normalized any = current
	if source, ok := fields.Find(cond.SourceFieldID); ok && source.Type.RuleStringifies() && present {
		normalized = toggleString(current)
	}

	text, isString := normalized.(string)
	met := present && isString && text == cond.TargetValue

	if cond.Action == model.ActionShow {
		return met
	}
	return !met
}

func toggleString(value any) any {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (e *FieldEvaluator) evaluateExpression(fields model.Collection, values model.ValueMap, target model.FieldDefinition) (visible bool) {
	rule := target.VisibilityRule.Expression

	defer func() {
		if r := recover(); r != nil {
			e.fail(target.ID, rule, ReasonPanic, fmt.Errorf("%w: panic: %v", ErrEvaluation, r))
			visible = true
		}
	}()

	if e.expressions == nil {
		e.fail(target.ID, rule, ReasonUnavailable, errors.New("visibility: no expression evaluator configured"))
		return true
	}

	ok, err := e.expressions.Eval(target.ID, rule, Context{Values: expressionValues(fields, values)})
	if err != nil {
		reason := ReasonEvaluation
		if errors.Is(err, ErrSyntax) {
			reason = ReasonSyntax
		}
		e.fail(target.ID, rule, reason, err)
		return true
	}
	return ok
}

func (e *FieldEvaluator) fail(fieldID, rule, reason string, err error) {
	e.logger.Warn("visibility expression failed, showing field",
		zap.String("field_id", fieldID),
		zap.String("expression", rule),
		zap.String("reason", reason),
		zap.Error(err),
	)
	failure := Failure{FieldID: fieldID, Expression: rule, Reason: reason, Err: err}
	for _, handler := range e.handlers {
		handler(failure)
	}
}

// expressionValues exposes the value map keyed by id and, where unambiguous,
// by field name. Nothing beyond the entered values is reachable.
func expressionValues(fields model.Collection, values model.ValueMap) map[string]any {
	out := make(map[string]any, len(values)*2)
	for key, value := range values {
		out[key] = value
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if _, clash := out[field.Name]; clash {
			continue
		}
		if value, ok := values[field.ID]; ok {
			out[field.Name] = value
		}
	}
	return out
}
