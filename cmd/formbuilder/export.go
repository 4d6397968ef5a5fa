package main

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

const formatOpenAPI = "openapi"

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
		opts   openapi.ExportOptions
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert the form to JSON, YAML or an OpenAPI request schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.newBuilder(ctx, true)
			if err != nil {
				return err
			}
			fields := b.Store().Fields()

			var data []byte
			if strings.EqualFold(format, formatOpenAPI) {
				doc, err := openapi.Export(ctx, fields, opts)
				if err != nil {
					return err
				}
				data, err = openapi.MarshalDocument(doc)
				if err != nil {
					return err
				}
			} else {
				data, err = marshalForm(format, out, fields)
				if err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&format, "format", "", "json, yaml or openapi (default from --out, then json)")
	flags.StringVarP(&out, "out", "o", "", "output file (stdout if empty)")
	flags.StringVar(&opts.Title, "title", "", "OpenAPI info title")
	flags.StringVar(&opts.Version, "version", "", "OpenAPI info version")
	flags.StringVar(&opts.Path, "path", "", "OpenAPI path of the submit operation")
	flags.StringVar(&opts.OperationID, "operation", "", "OpenAPI operation id")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		operation string
		out       string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "import <openapi document>",
		Short: "Build a form from the request body of an OpenAPI operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := formbuilder.ReadForm(cmd.Context(), args[0],
				formbuilder.FromOpenAPI(operation),
				formbuilder.WithHTTPClient(&http.Client{}),
				formbuilder.WithTimeout(fetchTimeout),
			)
			if err != nil {
				return err
			}
			data, err := marshalForm(format, out, fields)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "operation id (default: first POST operation)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --out, then json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout if empty)")
	return cmd
}

// marshalForm encodes fields in the named format, falling back to the output
// file extension and then JSON.
func marshalForm(name, out string, fields model.Collection) ([]byte, error) {
	format := codec.FormatJSON
	switch {
	case name != "":
		f, err := codec.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		format = f
	case out != "":
		f, err := codec.FormatFromPath(out)
		if err != nil {
			return nil, err
		}
		format = f
	}
	return codec.Marshal(format, fields)
}
