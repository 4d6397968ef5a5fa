package render

import "github.com/goliatone/go-formbuilder/pkg/model"

// RenderOptions carry per-request data.
type RenderOptions struct {
	// Values are the answers entered so far, keyed by field id. They drive
	// visibility and pre-populate controls.
	Values model.ValueMap
	// Errors surfaces validation feedback keyed by field id.
	Errors map[string][]string
	// Locale selects the language of the preview chrome ("en", "pt-BR").
	Locale string
	// Title overrides the localized preview heading.
	Title string
}
