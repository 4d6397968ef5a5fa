// Package render produces the live preview of a form. Renderers receive the
// whole collection plus the entered values and emit only the fields that are
// currently visible, in canvas order.
package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Renderer converts a previewed collection into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, fields model.Collection, options RenderOptions) ([]byte, error)
}

// VisibilityFilter decides which fields render. *visibility.FieldEvaluator
// satisfies it.
type VisibilityFilter interface {
	Visible(fields model.Collection, values model.ValueMap) model.Collection
}
