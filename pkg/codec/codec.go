package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// DefaultFileName is the file name proposed when exporting a form.
const DefaultFileName = "formulario.json"

// Format names an interchange encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for unknown formats or file extensions.
var ErrUnsupportedFormat = errors.New("codec: unsupported format")

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseFormat normalises a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Marshal encodes fields in the requested format.
func Marshal(format Format, fields model.Collection, opts ...Option) ([]byte, error) {
	switch format {
	case FormatJSON:
		return Encode(fields, opts...)
	case FormatYAML:
		return EncodeYAML(fields, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Unmarshal decodes data in the requested format.
func Unmarshal(format Format, data []byte, opts ...Option) (model.Collection, error) {
	switch format {
	case FormatJSON:
		return Decode(data, opts...)
	case FormatYAML:
		return DecodeYAML(data, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Encode renders fields as a JSON array indented with two spaces, in canvas
// order and without an envelope.
func Encode(fields model.Collection, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)
	out, err := json.MarshalIndent(prepare(fields, cfg.logger), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("codec: encode json: %w", err)
	}
	return out, nil
}

// EncodeYAML renders fields as a YAML sequence using the JSON member names.
func EncodeYAML(fields model.Collection, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(prepare(fields, cfg.logger)); err != nil {
		return nil, fmt.Errorf("codec: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("codec: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON interchange document. Unknown members are rejected, the
// result is validated and legacy members are mapped onto visibilityRule.
func Decode(data []byte, opts ...Option) (model.Collection, error) {
	cfg := newConfig(opts)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("codec: decode json: empty document")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var wire []wireField
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("codec: decode json: trailing data after document")
	}
	return finish(wire, cfg.logger)
}

// DecodeYAML parses a YAML interchange document with the same schema and
// checks as Decode.
func DecodeYAML(data []byte, opts ...Option) (model.Collection, error) {
	cfg := newConfig(opts)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("codec: decode yaml: empty document")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var wire []wireField
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("codec: decode yaml: %w", err)
	}
	return finish(wire, cfg.logger)
}

func finish(wire []wireField, logger *zap.Logger) (model.Collection, error) {
	fields := make(model.Collection, 0, len(wire))
	for _, w := range wire {
		fields = append(fields, w.field())
	}
	if err := validateCollection(fields); err != nil {
		return nil, err
	}
	return prepare(fields, logger), nil
}

// prepare returns a copy that is always serialisable: options are dropped for
// kinds without choices and non-finite bounds are nulled out.
func prepare(fields model.Collection, logger *zap.Logger) model.Collection {
	out := fields.Clone()
	if out == nil {
		out = model.Collection{}
	}
	for i := range out {
		field := &out[i]
		if !field.Type.HasOptions() {
			field.Options = nil
		}
		if field.Validation == nil {
			continue
		}
		if nonFinite(field.Validation.Min) {
			logger.Warn("dropping non-finite validation bound",
				zap.String("field_id", field.ID), zap.String("bound", "min"))
			field.Validation.Min = nil
		}
		if nonFinite(field.Validation.Max) {
			logger.Warn("dropping non-finite validation bound",
				zap.String("field_id", field.ID), zap.String("bound", "max"))
			field.Validation.Max = nil
		}
	}
	return out
}

func nonFinite(v *float64) bool {
	return v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0))
}
