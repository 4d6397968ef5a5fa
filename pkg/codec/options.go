package codec

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

// VisibilityFilter decides whether a field takes part in a submission.
// *visibility.FieldEvaluator satisfies it.
type VisibilityFilter interface {
	IsVisible(fields model.Collection, values model.ValueMap, target model.FieldDefinition) bool
}

// Option customises encoding and decoding.
type Option func(*config)

type config struct {
	logger *zap.Logger
	filter VisibilityFilter
}

// WithLogger receives serialization failures (non-finite bounds, unresolvable
// file references) at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithVisibility replaces the filter EncodeValues uses to drop invisible
// fields.
func WithVisibility(filter VisibilityFilter) Option {
	return func(c *config) {
		if filter != nil {
			c.filter = filter
		}
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *config) visibility() VisibilityFilter {
	if c.filter == nil {
		c.filter = visibility.NewFieldEvaluator(expr.New(), visibility.WithLogger(c.logger))
	}
	return c.filter
}
