package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

// Validator returns the shared validator with the model's custom tags
// registered and JSON member names used in error paths.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
			return model.FieldType(fl.Field().String()).Valid()
		}); err != nil {
			panic(fmt.Sprintf("codec: register fieldtype validation: %v", err))
		}
		validatorInstance = v
	})
	return validatorInstance
}

// Problem is one invalid member of a decoded document.
type Problem struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a decoded document.
type ValidationError struct {
	Problems []Problem `json:"problems"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Path+": "+p.Message)
	}
	return "codec: invalid document: " + strings.Join(parts, "; ")
}

func validateCollection(fields model.Collection) error {
	var problems []Problem
	seen := make(map[string]int, len(fields))

	for i, field := range fields {
		prefix := fmt.Sprintf("[%d]", i)
		if err := Validator().Struct(field); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return fmt.Errorf("codec: validate %s: %w", prefix, err)
			}
			for _, fe := range verrs {
				problems = append(problems, Problem{
					Path:    prefix + trimRoot(fe.Namespace()),
					Rule:    fe.Tag(),
					Message: describe(fe),
				})
			}
		}
		if field.ID == "" {
			continue
		}
		if first, ok := seen[field.ID]; ok {
			problems = append(problems, Problem{
				Path:    prefix + ".id",
				Rule:    "unique",
				Message: fmt.Sprintf("id %q already used at [%d]", field.ID, first),
			})
			continue
		}
		seen[field.ID] = i
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// trimRoot drops the struct name from a validator namespace
// ("FieldDefinition.visibilityRule.condition.action" -> ".visibilityRule.condition.action").
func trimRoot(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx:]
	}
	return "." + namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "fieldtype":
		return fmt.Sprintf("unknown field type %q", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
