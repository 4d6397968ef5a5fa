// Package formbuilder wires the designer core into one value: a field store,
// the visibility evaluator and the preview renderers sharing a logger and a
// locale.
package formbuilder

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/locale"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

// FieldDefinition aliases model.FieldDefinition for callers that only import
// the root package.
type FieldDefinition = model.FieldDefinition

// Collection aliases model.Collection.
type Collection = model.Collection

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// Option configures a Builder.
type Option func(*config)

type config struct {
	logger     *zap.Logger
	translator locale.Translator
	locale     string
	onFailure  visibility.FailureHandler
	storeOpts  []store.Option
	engine     *render.Engine
}

// WithLogger shares logger with every component.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTranslator replaces the built-in label catalog.
func WithTranslator(t locale.Translator) Option {
	return func(c *config) {
		c.translator = t
	}
}

// WithLocale sets the language of generated labels and preview chrome.
func WithLocale(tag string) Option {
	return func(c *config) {
		c.locale = tag
	}
}

// WithFailureHandler observes expression failures, typically to count them.
func WithFailureHandler(fn visibility.FailureHandler) Option {
	return func(c *config) {
		c.onFailure = fn
	}
}

// WithStoreOptions forwards options to store.New.
func WithStoreOptions(options ...store.Option) Option {
	return func(c *config) {
		c.storeOpts = append(c.storeOpts, options...)
	}
}

// WithEngine renders the HTML preview with a custom template engine.
func WithEngine(engine *render.Engine) Option {
	return func(c *config) {
		c.engine = engine
	}
}

// Builder owns one form being designed. Like the store it wraps, it is not
// safe for concurrent use.
type Builder struct {
	store     *store.Store
	evaluator *visibility.FieldEvaluator
	renderers *render.Registry
	locale    string
	logger    *zap.Logger
}

// New assembles a Builder with an empty canvas.
func New(options ...Option) (*Builder, error) {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.translator == nil {
		t, err := locale.NewTranslator(nil)
		if err != nil {
			return nil, err
		}
		cfg.translator = t
	}

	storeOpts := []store.Option{
		store.WithLogger(cfg.logger),
		store.WithTranslator(cfg.translator),
	}
	if cfg.locale != "" {
		storeOpts = append(storeOpts, store.WithLocale(cfg.locale))
	}
	storeOpts = append(storeOpts, cfg.storeOpts...)

	evalOpts := []visibility.Option{visibility.WithLogger(cfg.logger)}
	if cfg.onFailure != nil {
		evalOpts = append(evalOpts, visibility.WithFailureHandler(cfg.onFailure))
	}
	evaluator := visibility.NewFieldEvaluator(expr.New(), evalOpts...)

	htmlOpts := []render.HTMLOption{
		render.WithTranslator(cfg.translator),
		render.WithLogger(cfg.logger),
	}
	if cfg.engine != nil {
		htmlOpts = append(htmlOpts, render.WithEngine(cfg.engine))
	}
	html, err := render.NewHTML(evaluator, htmlOpts...)
	if err != nil {
		return nil, err
	}
	renderers, err := render.NewRegistry(html, render.NewJSON(evaluator, codec.WithLogger(cfg.logger)))
	if err != nil {
		return nil, err
	}

	return &Builder{
		store:     store.New(storeOpts...),
		evaluator: evaluator,
		renderers: renderers,
		locale:    cfg.locale,
		logger:    cfg.logger,
	}, nil
}

// Store exposes the underlying field store.
func (b *Builder) Store() *store.Store { return b.store }

// Evaluator exposes the visibility evaluator.
func (b *Builder) Evaluator() *visibility.FieldEvaluator { return b.evaluator }

// Renderers lists the preview renderer names.
func (b *Builder) Renderers() []string { return b.renderers.List() }

// Preview opens a preview session over a snapshot of the canvas.
func (b *Builder) Preview(values model.ValueMap) *preview.Session {
	return preview.NewSession(b.store.Fields(), b.evaluator,
		preview.WithValues(values),
		preview.WithLogger(b.logger),
	)
}

// Render draws the visible fields with the named renderer ("html" or
// "json").
func (b *Builder) Render(ctx context.Context, name string, options RenderOptions) ([]byte, error) {
	renderer, err := b.renderers.Get(name)
	if err != nil {
		return nil, err
	}
	if options.Locale == "" {
		options.Locale = b.locale
	}
	return renderer.Render(ctx, b.store.Fields(), options)
}

// Save writes the canvas to path, picking JSON or YAML from the extension.
func (b *Builder) Save(path string) error {
	format, err := codec.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(format, b.store.Fields(), codec.WithLogger(b.logger))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("formbuilder: write %s: %w", path, err)
	}
	b.logger.Info("form saved", zap.String("path", path), zap.Int("fields", b.store.Len()))
	return nil
}
