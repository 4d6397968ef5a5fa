package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

func newDesignCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Design a form interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.newBuilder(ctx, false)
			if err != nil {
				return err
			}
			designer, err := tui.NewDesigner(b.Store(),
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithVisibility(b.Evaluator()),
				tui.WithLocale(a.cfg.Designer.Locale),
				tui.WithExportPath(a.cfg.Designer.ExportPath),
				tui.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}

			if err := designer.Run(ctx); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "aborted, nothing saved")
					return nil
				}
				return err
			}
			if save && a.cfg.Designer.FormFile != "" {
				return b.Save(a.cfg.Designer.FormFile)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", true, "write the canvas back to the form file on quit")
	return cmd
}
