package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// SourceKind enumerates the supported document sources.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindURL  SourceKind = "url"
)

// Source identifies where a document lives.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromLocation classifies location as an http(s) URL or a file path.
func SourceFromLocation(location string) Source {
	if u, err := url.ParseRequestURI(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return Source{Kind: SourceKindURL, Location: location}
	}
	return Source{Kind: SourceKindFile, Location: filepath.Clean(location)}
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	client  *http.Client
	timeout time.Duration
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) LoadOption {
	return func(o *loadOptions) {
		o.client = client
	}
}

// WithTimeout caps remote fetch durations.
func WithTimeout(timeout time.Duration) LoadOption {
	return func(o *loadOptions) {
		o.timeout = timeout
	}
}

// Load reads the raw bytes of a document. URL sources require WithHTTPClient.
func Load(ctx context.Context, src Source, opts ...LoadOption) ([]byte, error) {
	options := loadOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindURL:
		if options.client == nil {
			return nil, errors.New("openapi: http support disabled")
		}
		return loadHTTP(ctx, options.client, src.Location, options.timeout)
	default:
		return nil, fmt.Errorf("openapi: unsupported source kind %q", src.Kind)
	}
}

func loadHTTP(ctx context.Context, client *http.Client, location string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("openapi: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: unexpected status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openapi: read body: %w", err)
	}
	return data, nil
}
