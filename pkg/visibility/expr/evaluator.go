package expr

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Evaluator is a small, dependency-free expression evaluator for user-authored
// visibility rules. It has no access to anything but the supplied context.
//
// Supported operators:
// - boolean checks: `accept_terms`, `!newsletter`
// - equality: `plan == "pro"`, `accept_terms == true`, `age != 3`
// - ordering: `age >= 18`, `start_date < "2025-01-01"`
// - boolean composition: `a == true && b != false`, `a || (b && c)`
//
// Identifiers are looked up in visibility.Context.Values (with dot-path
// traversal); the `formValues.` and `values.` prefixes are accepted and
// ignored, `extras.` reads visibility.Context.Extras. Comparing a list value
// (multiselect answers) against a string with `==` tests membership.
type Evaluator struct{}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval parses and evaluates rule. Syntax problems wrap visibility.ErrSyntax and
// evaluation problems wrap visibility.ErrEvaluation.
func (e *Evaluator) Eval(_, rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	tokens, err := lex(trimmed)
	if err != nil {
		return false, fmt.Errorf("%w: %w", visibility.ErrSyntax, err)
	}
	root, err := parse(tokens)
	if err != nil {
		return false, fmt.Errorf("%w: %w", visibility.ErrSyntax, err)
	}
	if bare, isBare := root.(truthyNode); isBare {
		root = strictNode(bare)
	}
	ok, err := root.eval(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", visibility.ErrEvaluation, err)
	}
	return ok, nil
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.identifier)

	switch n.literal.kind {
	case litNull:
		if !n.op.equality() {
			return false, fmt.Errorf("visibility/expr: operator %q not supported for null", n.op)
		}
		return n.op.apply(boolOrder(value == nil, true)), nil
	case litBool:
		if !n.op.equality() {
			return false, fmt.Errorf("visibility/expr: operator %q not supported for booleans", n.op)
		}
		got, _ := coerceBool(value)
		return n.op.apply(boolOrder(got, n.literal.raw == "true")), nil
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number %q", n.literal.raw)
		}
		got, ok := coerceNumber(value)
		if !ok {
			// Missing or non-numeric values are unequal and unordered.
			return n.op == tokenNeq, nil
		}
		return n.op.apply(cmp.Compare(got, want)), nil
	case litString:
		if items, ok := listValue(value); ok {
			if !n.op.equality() {
				return false, fmt.Errorf("visibility/expr: operator %q not supported for lists", n.op)
			}
			return n.op.apply(boolOrder(slices.Contains(items, n.literal.raw), true)), nil
		}
		if value == nil && !n.op.equality() {
			return false, nil
		}
		return n.op.apply(strings.Compare(coerceString(value), n.literal.raw)), nil
	default:
		return false, errors.New("visibility/expr: unsupported literal")
	}
}

func (k tokenKind) equality() bool {
	return k == tokenEq || k == tokenNeq
}

// apply maps a three-way comparison result onto the operator.
func (k tokenKind) apply(order int) bool {
	switch k {
	case tokenEq:
		return order == 0
	case tokenNeq:
		return order != 0
	case tokenLt:
		return order < 0
	case tokenLte:
		return order <= 0
	case tokenGt:
		return order > 0
	case tokenGte:
		return order >= 0
	default:
		return false
	}
}

func (k tokenKind) String() string {
	switch k {
	case tokenEq:
		return "=="
	case tokenNeq:
		return "!="
	case tokenLt:
		return "<"
	case tokenLte:
		return "<="
	case tokenGt:
		return ">"
	case tokenGte:
		return ">="
	default:
		return "?"
	}
}

func boolOrder(got, want bool) int {
	if got == want {
		return 0
	}
	return 1
}
