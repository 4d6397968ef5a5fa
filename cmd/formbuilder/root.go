package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/logger"
	"github.com/goliatone/go-formbuilder/internal/metrics"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

const fetchTimeout = 30 * time.Second

var errNoForm = errors.New("no form file given (use --form or designer.form_file)")

// app carries the flags shared by every command and the state built from
// them before a command runs.
type app struct {
	configPath string
	envFiles   []string
	logLevel   string
	locale     string
	formFile   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:               "formbuilder <command> [flags]",
		Short:             "Design forms with conditional field visibility",
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML configuration file")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the configuration")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&a.locale, "locale", "", "language of labels and preview chrome (en, pt-BR)")
	flags.StringVarP(&a.formFile, "form", "f", "", "form document to open (.json, .yaml or a URL)")

	cmd.AddCommand(
		newServeCmd(a),
		newDesignCmd(a),
		newPreviewCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newValidateCmd(a),
	)
	return cmd
}

// init loads dotenv files and the configuration, applies flag overrides and
// builds the logger.
func (a *app) init() error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.locale != "" {
		cfg.Designer.Locale = a.locale
	}
	if a.formFile != "" {
		cfg.Designer.FormFile = a.formFile
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	log, err := logger.New(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = log
	return nil
}

// engine returns the template engine for a configured templates directory, or
// nil for the embedded templates.
func (a *app) engine() (*render.Engine, error) {
	if a.cfg.Designer.TemplatesDir == "" {
		return nil, nil
	}
	return render.NewEngine(render.WithBaseDir(a.cfg.Designer.TemplatesDir))
}

// newBuilder assembles a builder and loads the configured form. When the form
// is optional a missing file starts an empty canvas.
func (a *app) newBuilder(ctx context.Context, required bool) (*formbuilder.Builder, error) {
	options := []formbuilder.Option{
		formbuilder.WithLogger(a.logger),
		formbuilder.WithLocale(a.cfg.Designer.Locale),
		formbuilder.WithFailureHandler(metrics.RecordExpressionFailure),
	}
	engine, err := a.engine()
	if err != nil {
		return nil, err
	}
	if engine != nil {
		options = append(options, formbuilder.WithEngine(engine))
	}
	b, err := formbuilder.New(options...)
	if err != nil {
		return nil, err
	}

	path := a.cfg.Designer.FormFile
	if path == "" {
		if required {
			return nil, errNoForm
		}
		return b, nil
	}
	err = b.Load(ctx, path, formbuilder.WithHTTPClient(&http.Client{}), formbuilder.WithTimeout(fetchTimeout))
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			a.logger.Info("form file not found, starting empty", zap.String("path", path))
			return b, nil
		}
		return nil, err
	}
	return b, nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
