package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Extension keys written on exported schemas.
const (
	FieldExtension      = "x-formbuilder-field"
	VisibilityExtension = "x-formbuilder-visibility"
	OrderExtension      = "x-formbuilder-order"
)

const jsonMediaType = "application/json"

// ExportOptions describes the submission endpoint.
type ExportOptions struct {
	Title       string
	Version     string
	Path        string
	OperationID string
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.Title == "" {
		o.Title = "Form"
	}
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	if o.Path == "" {
		o.Path = "/submissions"
	}
	if o.OperationID == "" {
		o.OperationID = "submitForm"
	}
	return o
}

// fieldMeta is the payload of FieldExtension.
type fieldMeta struct {
	ID          string          `json:"id"`
	Type        model.FieldType `json:"type"`
	Placeholder string          `json:"placeholder,omitempty"`
	Hidden      bool            `json:"hidden,omitempty"`
	MinDate     string          `json:"minDate,omitempty"`
	MaxDate     string          `json:"maxDate,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// Export describes fields as the JSON request body of one POST operation and
// validates the result.
func Export(ctx context.Context, fields model.Collection, opts ExportOptions) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	body, err := RequestSchema(fields)
	if err != nil {
		return nil, err
	}

	op := openapi3.NewOperation()
	op.OperationID = opts.OperationID
	op.Summary = "Submit " + opts.Title
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Submission accepted"),
		}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Submission rejected"),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: opts.Title, Version: opts.Version},
		Paths:   openapi3.NewPaths(openapi3.WithPath(opts.Path, &openapi3.PathItem{Post: op})),
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate export: %w", err)
	}
	return doc, nil
}

// MarshalDocument renders doc as indented JSON.
func MarshalDocument(doc *openapi3.T) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("openapi: document is nil")
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}
	return out, nil
}

// RequestSchema builds the object schema with one property per field, keyed by
// field name (or id when the name is empty or already used).
func RequestSchema(fields model.Collection) (*openapi3.Schema, error) {
	schema := openapi3.NewObjectSchema()
	order := make([]string, 0, len(fields))

	for _, field := range fields {
		key := field.Name
		if _, taken := schema.Properties[key]; key == "" || taken {
			key = field.ID
		}
		if _, taken := schema.Properties[key]; taken {
			return nil, fmt.Errorf("openapi: property %q used by more than one field", key)
		}

		prop, err := propertySchema(field)
		if err != nil {
			return nil, err
		}
		schema.WithProperty(key, prop)
		order = append(order, key)
		if field.Required {
			schema.Required = append(schema.Required, key)
		}
	}

	schema.Extensions = map[string]any{OrderExtension: order}
	return schema, nil
}

func propertySchema(field model.FieldDefinition) (*openapi3.Schema, error) {
	var schema *openapi3.Schema
	switch field.Type {
	case model.FieldTypeCheckbox, model.FieldTypeSwitch:
		schema = openapi3.NewBoolSchema()
	case model.FieldTypeMultiselect:
		schema = openapi3.NewArraySchema().WithItems(withEnum(openapi3.NewStringSchema(), field.Options))
	case model.FieldTypeSelect, model.FieldTypeRadio:
		schema = withEnum(openapi3.NewStringSchema(), field.Options)
	case model.FieldTypeDate:
		schema = openapi3.NewStringSchema().WithFormat("date")
	case model.FieldTypeTime:
		schema = openapi3.NewStringSchema().WithFormat("time")
	case model.FieldTypeDatetime:
		schema = openapi3.NewDateTimeSchema()
	case model.FieldTypeFile, model.FieldTypeImage:
		schema = openapi3.NewStringSchema().WithFormat("binary")
	case model.FieldTypeText, model.FieldTypeTextarea:
		schema = openapi3.NewStringSchema()
	default:
		return nil, fmt.Errorf("openapi: field %q has unknown type %q", field.ID, field.Type)
	}

	schema.Title = field.Label
	schema.Description = field.HelperText
	schema.ReadOnly = field.Disabled
	applyValidation(schema, field)

	meta := fieldMeta{
		ID:          field.ID,
		Type:        field.Type,
		Placeholder: field.Placeholder,
		Hidden:      field.Hidden,
		MinDate:     field.MinDate,
		MaxDate:     field.MaxDate,
	}
	if field.Validation != nil {
		meta.Message = field.Validation.Message
	}
	schema.Extensions = map[string]any{FieldExtension: meta}
	if field.VisibilityRule != nil && field.VisibilityRule.Kind() != model.RuleNone {
		schema.Extensions[VisibilityExtension] = field.VisibilityRule.Clone()
	}
	return schema, nil
}

func withEnum(schema *openapi3.Schema, options []model.Option) *openapi3.Schema {
	if len(options) == 0 {
		return schema
	}
	values := make([]any, len(options))
	for i, opt := range options {
		values[i] = opt.Value
	}
	return schema.WithEnum(values...)
}

// applyValidation maps min/max onto lengths for strings and item counts for
// lists. Booleans carry no bounds.
func applyValidation(schema *openapi3.Schema, field model.FieldDefinition) {
	v := field.Validation
	if v == nil {
		return
	}
	switch {
	case schema.Type.Is(openapi3.TypeArray):
		if v.Min != nil && *v.Min >= 0 {
			schema.MinItems = uint64(*v.Min)
		}
		if v.Max != nil && *v.Max >= 0 {
			n := uint64(*v.Max)
			schema.MaxItems = &n
		}
	case schema.Type.Is(openapi3.TypeString) && schema.Format == "":
		if v.Min != nil && *v.Min >= 0 {
			schema.MinLength = uint64(*v.Min)
		}
		if v.Max != nil && *v.Max >= 0 {
			n := uint64(*v.Max)
			schema.MaxLength = &n
		}
		schema.Pattern = v.Pattern
	}
}
