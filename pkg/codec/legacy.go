package codec

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// wireField is the decoded shape of one array element. Besides the current
// schema it accepts the members written by older exports.
type wireField struct {
	model.FieldDefinition `yaml:",inline"`

	DisplayConditionConfig *model.Condition `json:"displayConditionConfig,omitempty" yaml:"displayConditionConfig,omitempty"`
	CustomCode             string           `json:"customCode,omitempty" yaml:"customCode,omitempty"`
}

func (w wireField) field() model.FieldDefinition {
	field := w.FieldDefinition
	if w.DisplayConditionConfig == nil && strings.TrimSpace(w.CustomCode) == "" {
		return field
	}

	rule := model.VisibilityRule{}
	if field.VisibilityRule != nil {
		rule = field.VisibilityRule.Clone()
	}
	if rule.Condition == nil && w.DisplayConditionConfig != nil {
		cond := *w.DisplayConditionConfig
		rule.Condition = &cond
	}
	if strings.TrimSpace(rule.Expression) == "" {
		rule.Expression = legacyExpression(w.CustomCode)
	}
	field.VisibilityRule = &rule
	return field
}

var (
	returnPrefix = regexp.MustCompile(`^\s*return\s+`)
	strictEq     = strings.NewReplacer("===", "==", "!==", "!=")
)

// legacyExpression turns a stored function body such as
// `return formValues.plan === 'pro';` into the expression grammar.
func legacyExpression(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	code = returnPrefix.ReplaceAllString(code, "")
	code = strings.TrimSpace(strings.TrimSuffix(code, ";"))
	return strictEq.Replace(code)
}
