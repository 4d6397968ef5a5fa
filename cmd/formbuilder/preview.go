package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		valuesPath string
		renderer   string
		title      string
		out        string
		submit     bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the visible fields for a set of answers",
		Long: `Render the form as HTML or JSON, showing only the fields visible for the
answers in --values (a JSON object keyed by field id). With --submit the
submission document is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.newBuilder(ctx, true)
			if err != nil {
				return err
			}
			values, err := readValues(valuesPath)
			if err != nil {
				return err
			}

			session := b.Preview(values)
			defer session.Close()

			var data []byte
			if submit {
				data, err = session.Submit()
			} else {
				data, err = b.Render(ctx, renderer, formbuilder.RenderOptions{
					Values: session.Values(),
					Title:  title,
				})
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "JSON file with answers keyed by field id")
	cmd.Flags().StringVar(&renderer, "renderer", "html", "html or json")
	cmd.Flags().StringVar(&title, "title", "", "preview heading")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&submit, "submit", false, "print the submission instead of the rendered form")
	return cmd
}

func readValues(path string) (model.ValueMap, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var values model.ValueMap
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	return values, nil
}
