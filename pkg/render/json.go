package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// JSONRenderer emits the visible fields as an interchange document, which is
// what a headless client needs to draw the preview itself.
type JSONRenderer struct {
	filter VisibilityFilter
	opts   []codec.Option
}

var _ Renderer = (*JSONRenderer)(nil)

// NewJSON builds a JSONRenderer. Codec options are passed to codec.Encode.
func NewJSON(filter VisibilityFilter, opts ...codec.Option) *JSONRenderer {
	return &JSONRenderer{filter: filter, opts: opts}
}

func (r *JSONRenderer) Name() string        { return "json" }
func (r *JSONRenderer) ContentType() string { return "application/json" }

// Render encodes the fields visible for options.Values.
func (r *JSONRenderer) Render(ctx context.Context, fields model.Collection, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return codec.Encode(r.filter.Visible(fields, options.Values), r.opts...)
}
