// Package visibility decides which fields of a form render in the live
// preview. FieldEvaluator applies the precedence hidden flag, declarative
// condition, expression, default visible. Expression rules are delegated to an
// Evaluator (see the expr sub-package) that only ever sees the entered values.
package visibility

import "errors"

var (
	// ErrSyntax wraps expression tokenizer and parser failures.
	ErrSyntax = errors.New("visibility: invalid expression")
	// ErrEvaluation wraps failures raised while evaluating a parsed expression.
	ErrEvaluation = errors.New("visibility: expression evaluation failed")
)

// Evaluator determines whether a field should be visible based on a rule
// string and the values entered so far.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the preview ValueMap
// (plus field-name aliases). Extras lets non-form callers inject additional
// context; form expressions never receive it.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
