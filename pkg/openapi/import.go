package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrOperationNotFound is returned when the requested operation is missing or
// has no JSON object request body.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// ImportOptions configures Import.
type ImportOptions struct {
	// OperationID selects the operation; empty picks the first POST operation
	// in path order.
	OperationID string
	// NewID generates ids for properties without field metadata.
	NewID func() string
	// Labeler derives labels for properties without a title.
	Labeler func(string) string
}

// Import loads a document and converts the JSON request body of one operation
// into field definitions.
func Import(ctx context.Context, data []byte, opts ImportOptions) (model.Collection, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Labeler == nil {
		opts.Labeler = model.DefaultLabeler
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	op := findOperation(doc, opts.OperationID)
	if op == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, opts.OperationID)
	}
	body := requestBodySchema(op)
	if body == nil || !body.Type.Is(openapi3.TypeObject) {
		return nil, fmt.Errorf("%w: %q has no JSON object request body", ErrOperationNotFound, op.OperationID)
	}

	fields := make(model.Collection, 0, len(body.Properties))
	seen := make(map[string]struct{}, len(body.Properties))
	for _, key := range propertyOrder(body) {
		ref := body.Properties[key]
		if ref == nil || ref.Value == nil {
			continue
		}
		field := importField(key, ref.Value, slices.Contains(body.Required, key), opts)
		if _, dup := seen[field.ID]; dup {
			field.ID = opts.NewID()
		}
		seen[field.ID] = struct{}{}
		fields = append(fields, field)
	}
	return fields, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		if operationID == "" {
			if item.Post != nil {
				return item.Post
			}
			continue
		}
		for _, op := range item.Operations() {
			if op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestBodySchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.GetMediaType(jsonMediaType)
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

// propertyOrder honours OrderExtension and appends any remaining properties in
// name order.
func propertyOrder(schema *openapi3.Schema) []string {
	var order []string
	decodeExtension(schema.Extensions, OrderExtension, &order)

	out := make([]string, 0, len(schema.Properties))
	listed := make(map[string]struct{}, len(order))
	for _, key := range order {
		if _, ok := schema.Properties[key]; ok {
			out = append(out, key)
			listed[key] = struct{}{}
		}
	}
	rest := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		if _, ok := listed[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func importField(key string, schema *openapi3.Schema, required bool, opts ImportOptions) model.FieldDefinition {
	var meta fieldMeta
	hasMeta := decodeExtension(schema.Extensions, FieldExtension, &meta) && meta.Type.Valid()

	field := model.FieldDefinition{
		ID:          meta.ID,
		Type:        meta.Type,
		Label:       schema.Title,
		Name:        key,
		Placeholder: meta.Placeholder,
		HelperText:  schema.Description,
		Required:    required,
		Disabled:    schema.ReadOnly,
		Hidden:      meta.Hidden,
		MinDate:     meta.MinDate,
		MaxDate:     meta.MaxDate,
	}
	if !hasMeta {
		field.Type = inferType(schema)
	}
	if field.ID == "" {
		field.ID = opts.NewID()
	}
	if field.Label == "" {
		field.Label = opts.Labeler(key)
	}

	enumSource := schema
	if schema.Items != nil && schema.Items.Value != nil {
		enumSource = schema.Items.Value
	}
	if field.Type.HasOptions() {
		for _, value := range enumSource.Enum {
			text := fmt.Sprint(value)
			field.Options = append(field.Options, model.Option{Label: opts.Labeler(text), Value: text})
		}
	}

	field.Validation = importValidation(schema, meta.Message)

	var rule model.VisibilityRule
	if decodeExtension(schema.Extensions, VisibilityExtension, &rule) && rule.Kind() != model.RuleNone {
		field.VisibilityRule = &rule
	}
	return field
}

func inferType(schema *openapi3.Schema) model.FieldType {
	switch {
	case schema.Type.Is(openapi3.TypeBoolean):
		return model.FieldTypeCheckbox
	case schema.Type.Is(openapi3.TypeArray):
		return model.FieldTypeMultiselect
	case len(schema.Enum) > 0:
		return model.FieldTypeSelect
	}
	switch strings.ToLower(schema.Format) {
	case "date":
		return model.FieldTypeDate
	case "time":
		return model.FieldTypeTime
	case "date-time":
		return model.FieldTypeDatetime
	case "binary", "byte":
		return model.FieldTypeFile
	}
	if schema.MaxLength != nil && *schema.MaxLength > 255 {
		return model.FieldTypeTextarea
	}
	return model.FieldTypeText
}

func importValidation(schema *openapi3.Schema, message string) *model.Validation {
	v := model.Validation{Pattern: schema.Pattern, Message: message}
	switch {
	case schema.Type.Is(openapi3.TypeArray):
		if schema.MinItems > 0 {
			n := float64(schema.MinItems)
			v.Min = &n
		}
		if schema.MaxItems != nil {
			n := float64(*schema.MaxItems)
			v.Max = &n
		}
	default:
		if schema.MinLength > 0 {
			n := float64(schema.MinLength)
			v.Min = &n
		}
		if schema.MaxLength != nil {
			n := float64(*schema.MaxLength)
			v.Max = &n
		}
	}
	if v == (model.Validation{}) {
		return nil
	}
	return &v
}

// decodeExtension re-marshals an extension value into target. Loaded documents
// hold generic JSON values while freshly exported ones hold typed structs.
func decodeExtension(extensions map[string]any, key string, target any) bool {
	raw, ok := extensions[key]
	if !ok || raw == nil {
		return false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}
