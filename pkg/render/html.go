package render

import (
	"context"
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/locale"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

const formTemplate = "form.html"

// HTMLOption configures an HTMLRenderer.
type HTMLOption func(*HTMLRenderer)

// WithEngine replaces the embedded template engine.
func WithEngine(engine *Engine) HTMLOption {
	return func(r *HTMLRenderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithTranslator localizes the preview chrome.
func WithTranslator(t locale.Translator) HTMLOption {
	return func(r *HTMLRenderer) {
		r.translator = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) HTMLOption {
	return func(r *HTMLRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// HTMLRenderer renders the visible fields as an HTML form fragment. Every
// user-authored string is reduced to plain text before the template escapes
// it.
type HTMLRenderer struct {
	engine     *Engine
	filter     VisibilityFilter
	translator locale.Translator
	logger     *zap.Logger
}

var _ Renderer = (*HTMLRenderer)(nil)

// NewHTML builds an HTMLRenderer that asks filter which fields are visible.
func NewHTML(filter VisibilityFilter, options ...HTMLOption) (*HTMLRenderer, error) {
	if filter == nil {
		return nil, fmt.Errorf("render: visibility filter is required")
	}
	r := &HTMLRenderer{filter: filter, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.engine == nil {
		engine, err := NewEngine()
		if err != nil {
			return nil, err
		}
		r.engine = engine
	}
	return r, nil
}

func (r *HTMLRenderer) Name() string        { return "html" }
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Render executes the form template over the currently visible fields.
func (r *HTMLRenderer) Render(ctx context.Context, fields model.Collection, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	visible := r.filter.Visible(fields, options.Values)
	views := make([]fieldView, 0, len(visible))
	for _, field := range visible {
		views = append(views, newFieldView(field, options.Values[field.ID], options.Errors[field.ID]))
	}

	title := options.Title
	if title == "" {
		title = r.text(options.Locale, locale.KeyPreviewTitle)
	}
	data := pongo2.Context{
		"locale":        options.Locale,
		"title":         plainText(title),
		"fields":        views,
		"submit_text":   r.text(options.Locale, locale.KeyPreviewSubmit),
		"empty_text":    r.text(options.Locale, locale.KeyPreviewEmpty),
		"required_text": r.text(options.Locale, locale.KeyRequired),
		"choose_text":   r.text(options.Locale, locale.KeyChoosePrompt),
	}

	out, err := r.engine.Execute(formTemplate, data)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("rendered html preview",
		zap.Int("fields", len(fields)),
		zap.Int("visible", len(visible)),
	)
	return out, nil
}

func (r *HTMLRenderer) text(loc, key string) string {
	return locale.Text(r.translator, loc, key)
}

type optionView struct {
	Label    string
	Value    string
	Selected bool
}

type fieldView struct {
	ID          string
	Name        string
	Type        string
	InputType   string
	Accept      string
	Label       string
	Placeholder string
	HelperText  string
	Required    bool
	Disabled    bool
	Toggle      bool
	Checked     bool
	Value       string
	Min         string
	Max         string
	Options     []optionView
	Errors      []string
}

func newFieldView(field model.FieldDefinition, value any, errs []string) fieldView {
	view := fieldView{
		ID:          field.ID,
		Name:        field.Name,
		Type:        string(field.Type),
		InputType:   inputType(field.Type),
		Label:       plainText(field.Label),
		Placeholder: plainText(field.Placeholder),
		HelperText:  plainText(field.HelperText),
		Required:    field.Required,
		Disabled:    field.Disabled,
		Toggle:      field.Type.IsToggle(),
		Min:         field.MinDate,
		Max:         field.MaxDate,
		Errors:      errs,
	}
	if view.Name == "" {
		view.Name = field.ID
	}
	if field.Type == model.FieldTypeImage {
		view.Accept = "image/*"
	}
	if field.Type == model.FieldTypeDatetime {
		view.Min, view.Max = dateTimeBound(field.MinDate), dateTimeBound(field.MaxDate)
	}

	var selected []string
	switch v := value.(type) {
	case bool:
		view.Checked = v
	case string:
		view.Value = v
		selected = []string{v}
	case []string:
		selected = v
	case time.Time:
		view.Value = inputTime(field.Type, v)
	}
	if field.Type.IsBinary() {
		view.Value = ""
	}

	for _, opt := range field.Options {
		view.Options = append(view.Options, optionView{
			Label:    plainText(opt.Label),
			Value:    opt.Value,
			Selected: slices.Contains(selected, opt.Value),
		})
	}
	return view
}

func inputType(kind model.FieldType) string {
	switch kind {
	case model.FieldTypeDate:
		return "date"
	case model.FieldTypeTime:
		return "time"
	case model.FieldTypeDatetime:
		return "datetime-local"
	case model.FieldTypeFile, model.FieldTypeImage:
		return "file"
	default:
		return "text"
	}
}

// inputTime formats t the way the matching HTML input expects.
func inputTime(kind model.FieldType, t time.Time) string {
	if kind == model.FieldTypeDatetime {
		return t.Format("2006-01-02T15:04")
	}
	if s, ok := codec.SubmissionValue(model.FieldDefinition{Type: kind}, t).(string); ok {
		return s
	}
	return ""
}

// dateTimeBound widens a bare date bound to the datetime-local format.
func dateTimeBound(bound string) string {
	if bound != "" && !strings.Contains(bound, "T") {
		return bound + "T00:00"
	}
	return bound
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// plainText strips every tag from user-authored strings. The template escapes
// the result again, so entities are decoded here to avoid double escaping.
func plainText(raw string) string {
	if raw == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(raw)))
}
