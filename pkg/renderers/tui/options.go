package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/locale"
)

// Option configures the Designer.
type Option func(*Designer)

// WithPromptDriver overrides the prompt driver used by the designer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(d *Designer) {
		if driver != nil {
			d.driver = driver
		}
	}
}

// WithVisibility sets the filter used by the preview flow.
func WithVisibility(filter codec.VisibilityFilter) Option {
	return func(d *Designer) {
		if filter != nil {
			d.visibility = filter
		}
	}
}

// WithTranslator localizes palette labels and prompts.
func WithTranslator(t locale.Translator) Option {
	return func(d *Designer) {
		d.translator = t
	}
}

// WithLocale selects the prompt language.
func WithLocale(tag string) Option {
	return func(d *Designer) {
		d.locale = tag
	}
}

// WithExportPath sets the default export destination. The file extension
// picks the format.
func WithExportPath(path string) Option {
	return func(d *Designer) {
		if path != "" {
			d.exportPath = path
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Designer) {
		if logger != nil {
			d.logger = logger
		}
	}
}
