package formbuilder

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	client      *http.Client
	timeout     time.Duration
	openAPI     bool
	operationID string
}

// WithHTTPClient allows http(s) locations.
func WithHTTPClient(client *http.Client) LoadOption {
	return func(c *loadConfig) {
		c.client = client
	}
}

// WithTimeout caps remote fetches.
func WithTimeout(timeout time.Duration) LoadOption {
	return func(c *loadConfig) {
		c.timeout = timeout
	}
}

// FromOpenAPI reads the location as an OpenAPI document and imports the
// request body of operationID. An empty id picks the first POST operation.
func FromOpenAPI(operationID string) LoadOption {
	return func(c *loadConfig) {
		c.openAPI = true
		c.operationID = operationID
	}
}

// ReadForm reads a form document from a file path or URL. Interchange
// documents pick JSON or YAML from the extension.
func ReadForm(ctx context.Context, location string, options ...LoadOption) (model.Collection, error) {
	var cfg loadConfig
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var loadOpts []openapi.LoadOption
	if cfg.client != nil {
		loadOpts = append(loadOpts, openapi.WithHTTPClient(cfg.client))
	}
	if cfg.timeout > 0 {
		loadOpts = append(loadOpts, openapi.WithTimeout(cfg.timeout))
	}
	src := openapi.SourceFromLocation(location)
	data, err := openapi.Load(ctx, src, loadOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.openAPI {
		return openapi.Import(ctx, data, openapi.ImportOptions{OperationID: cfg.operationID})
	}
	format, err := codec.FormatFromPath(documentPath(src))
	if err != nil {
		return nil, err
	}
	return codec.Unmarshal(format, data)
}

// documentPath is the part of src that carries the file extension. Query
// strings and fragments of URL sources are dropped.
func documentPath(src openapi.Source) string {
	if src.Kind != openapi.SourceKindURL {
		return src.Location
	}
	u, err := url.Parse(src.Location)
	if err != nil {
		return src.Location
	}
	return u.Path
}

// Load replaces the canvas with the document at location.
func (b *Builder) Load(ctx context.Context, location string, options ...LoadOption) error {
	fields, err := ReadForm(ctx, location, options...)
	if err != nil {
		return err
	}
	if err := b.store.Replace(fields); err != nil {
		return err
	}
	b.logger.Info("form loaded", zap.String("location", location), zap.Int("fields", len(fields)))
	return nil
}
