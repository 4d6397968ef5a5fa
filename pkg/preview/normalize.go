package preview

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrInvalidValue is returned when an answer does not fit its field kind.
var ErrInvalidValue = errors.New("preview: invalid value")

var (
	dateLayouts     = []string{"2006-01-02"}
	timeLayouts     = []string{"15:04", "15:04:05"}
	dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02T15:04:05"}
)

// Normalize converts a raw answer (as typed in a prompt or decoded from JSON)
// into the ValueMap representation for the field kind: bool for toggles,
// []string for multiselect, time.Time for temporal kinds, FileRef for file and
// image, string otherwise. A nil raw value yields nil.
func Normalize(field model.FieldDefinition, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch {
	case field.Type.IsToggle():
		return normalizeBool(field, raw)
	case field.Type == model.FieldTypeMultiselect:
		return normalizeList(field, raw)
	case field.Type.IsTemporal():
		return normalizeTime(field, raw)
	case field.Type.IsBinary():
		return normalizeFile(field, raw)
	default:
		return normalizeText(field, raw)
	}
}

func invalid(field model.FieldDefinition, raw any) error {
	return fmt.Errorf("%w: %T for %s field %q", ErrInvalidValue, raw, field.Type, field.ID)
}

func normalizeBool(field model.FieldDefinition, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
		}
		return parsed, nil
	default:
		return nil, invalid(field, raw)
	}
}

func normalizeList(field model.FieldDefinition, raw any) (any, error) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(field, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalid(field, raw)
	}
}

func normalizeTime(field model.FieldDefinition, raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		layouts := dateTimeLayouts
		switch field.Type {
		case model.FieldTypeDate:
			layouts = dateLayouts
		case model.FieldTypeTime:
			layouts = timeLayouts
		}
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidValue, v, field.Type)
	default:
		return nil, invalid(field, raw)
	}
}

func normalizeFile(field model.FieldDefinition, raw any) (any, error) {
	switch v := raw.(type) {
	case model.FileRef:
		return v, nil
	case *model.FileRef:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case string:
		return model.FileRef{Name: v, Handle: v}, nil
	case map[string]any:
		ref := model.FileRef{}
		ref.Name, _ = v["name"].(string)
		ref.ContentType, _ = v["contentType"].(string)
		ref.Handle, _ = v["handle"].(string)
		if size, ok := v["size"].(float64); ok {
			ref.Size = int64(size)
		}
		return ref, nil
	default:
		return nil, invalid(field, raw)
	}
}

func normalizeText(field model.FieldDefinition, raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, invalid(field, raw)
	}
}
