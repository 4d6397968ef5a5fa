package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

type violation struct {
	file     string
	location string
	message  string
}

func newValidateCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <form>...",
		Short: "Check form documents and their visibility rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var violations []violation
			for _, path := range args {
				fields, err := formbuilder.ReadForm(cmd.Context(), path)
				if err != nil {
					var invalid *codec.ValidationError
					if !errors.As(err, &invalid) {
						return fmt.Errorf("validate %s: %w", path, err)
					}
					for _, p := range invalid.Problems {
						violations = append(violations, violation{file: path, location: p.Path, message: p.Message})
					}
					continue
				}
				violations = append(violations, lintRules(path, fields)...)
			}

			if len(violations) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d form(s) ok\n", len(args))
				return nil
			}
			sort.Slice(violations, func(i, j int) bool {
				if violations[i].file == violations[j].file {
					if violations[i].location == violations[j].location {
						return violations[i].message < violations[j].message
					}
					return violations[i].location < violations[j].location
				}
				return violations[i].file < violations[j].file
			})
			for _, v := range violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", v.file, v.location, v.message)
			}
			return fmt.Errorf("%d problem(s) found", len(violations))
		},
	}
}

// lintRules reports rules that decode but can never work: conditions on
// missing or self sources and expressions that do not parse.
func lintRules(path string, fields model.Collection) []violation {
	var out []violation
	sandbox := expr.New()
	for i, field := range fields {
		location := fmt.Sprintf("[%d].visibilityRule", i)
		switch field.VisibilityRule.Kind() {
		case model.RuleDeclarative:
			source := field.VisibilityRule.Condition.SourceFieldID
			if source == field.ID {
				out = append(out, violation{path, location, "field depends on itself"})
			} else if _, ok := fields.Find(source); !ok {
				out = append(out, violation{path, location, fmt.Sprintf("source field %q not found", source)})
			}
		case model.RuleExpression:
			_, err := sandbox.Eval(field.ID, field.VisibilityRule.Expression, visibility.Context{})
			if errors.Is(err, visibility.ErrSyntax) {
				out = append(out, violation{path, location, err.Error()})
			}
		}
	}
	return out
}
