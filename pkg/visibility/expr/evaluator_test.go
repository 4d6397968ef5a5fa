package expr

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func TestEvaluatorRules(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"accept":    true,
		"accept_s":  "true",
		"plan":      "pro",
		"age":       21,
		"score":     "7.5",
		"empty":     "",
		"interests": []string{"music", "sports"},
		"tags":      []any{"a", 2},
		"start":     time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		"cta.title": "Hello",
		"address":   map[string]any{"city": "Lisbon"},
		"4f1c-uuid": "yes",
	}

	tests := []struct {
		name string
		rule string
		want bool
	}{
		{name: "empty rule", rule: "   ", want: true},
		{name: "bool equality", rule: "accept == true", want: true},
		{name: "string bool equality", rule: "accept_s == true", want: true},
		{name: "truthy", rule: "accept", want: true},
		{name: "negation", rule: "!accept", want: false},
		{name: "bool string", rule: "accept_s", want: true},
		{name: "empty string falsy in composition", rule: "!empty", want: true},
		{name: "missing falsy in composition", rule: "missing || plan == \"free\"", want: false},
		{name: "string equality", rule: `plan == "pro"`, want: true},
		{name: "single quotes", rule: `plan == 'pro'`, want: true},
		{name: "bare word literal", rule: `plan == pro`, want: true},
		{name: "string inequality", rule: `plan != "free"`, want: true},
		{name: "number equality", rule: "age == 21", want: true},
		{name: "number ordering", rule: "age >= 18 && age < 65", want: true},
		{name: "number ordering false", rule: "age > 30", want: false},
		{name: "numeric string", rule: "score <= 7.5", want: true},
		{name: "missing number", rule: "missing > 1", want: false},
		{name: "missing number inequality", rule: "missing != 1", want: true},
		{name: "list membership", rule: `interests == "music"`, want: true},
		{name: "list non membership", rule: `interests != "art"`, want: true},
		{name: "any list membership", rule: `tags == "2"`, want: true},
		{name: "time as RFC3339", rule: `start >= "2025-01-01"`, want: true},
		{name: "time equality", rule: `start == "2025-03-01T09:30:00Z"`, want: true},
		{name: "null literal", rule: "missing == null", want: true},
		{name: "present not null", rule: "accept != null", want: true},
		{name: "formValues prefix", rule: `formValues.plan == "pro"`, want: true},
		{name: "values prefix", rule: `values.age == 21`, want: true},
		{name: "dotted key", rule: `cta.title == "Hello"`, want: true},
		{name: "nested map", rule: `address.city == "Lisbon"`, want: true},
		{name: "digit led identifier", rule: `4f1c-uuid == "yes"`, want: true},
		{name: "or", rule: `plan == "free" || accept`, want: true},
		{name: "and short circuit", rule: `plan == "free" && accept`, want: false},
		{name: "grouping", rule: `!(plan == "free" || age < 18)`, want: true},
	}

	eval := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Eval("target", tt.rule, visibility.Context{Values: values})
			if err != nil {
				t.Fatalf("Eval(%q) returned error: %v", tt.rule, err)
			}
			if got != tt.want {
				t.Fatalf("Eval(%q) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestEvaluatorSyntaxErrors(t *testing.T) {
	t.Parallel()

	rules := []string{
		"plan = 'pro'",
		"a & b",
		"a | b",
		`plan == "pro`,
		"(accept",
		"accept)",
		"plan ==",
		"== 3",
		"()",
	}

	eval := New()
	for _, rule := range rules {
		_, err := eval.Eval("target", rule, visibility.Context{})
		if err == nil {
			t.Fatalf("Eval(%q) expected error", rule)
		}
		if !errors.Is(err, visibility.ErrSyntax) {
			t.Fatalf("Eval(%q) error %v should wrap ErrSyntax", rule, err)
		}
	}
}

func TestEvaluatorEvaluationErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	ctx := visibility.Context{Values: map[string]any{
		"accept":    true,
		"plan":      "pro",
		"empty":     "",
		"interests": []string{"a"},
	}}

	for _, rule := range []string{"accept > true", "accept < null", `interests > "a"`, "plan", "empty", "missing", "interests"} {
		_, err := eval.Eval("target", rule, ctx)
		if !errors.Is(err, visibility.ErrEvaluation) {
			t.Fatalf("Eval(%q) error %v should wrap ErrEvaluation", rule, err)
		}
	}
}

func TestEvaluatorExtras(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("target", `extras.locale == "pt-BR"`, visibility.Context{
		Extras: map[string]any{"locale": "pt-BR"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected extras lookup to match")
	}
}
