package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Layouts used for temporal answers.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = time.RFC3339
)

type fileJSON struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// EncodeValues renders the answers of the visible fields as one JSON object
// keyed by field name, members in canvas order. Fields without an answer are
// omitted. A field without a name, or whose name was already emitted, is
// keyed by id. Values that cannot be represented are written as null and
// logged.
func EncodeValues(fields model.Collection, values model.ValueMap, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)
	filter := cfg.visibility()

	var buf bytes.Buffer
	buf.WriteString("{\n")
	used := make(map[string]struct{}, len(fields))
	first := true

	for _, field := range fields {
		value, ok := values[field.ID]
		if !ok || !filter.IsVisible(fields, values, field) {
			continue
		}

		key := field.Name
		if _, taken := used[key]; key == "" || taken {
			key = field.ID
		}
		used[key] = struct{}{}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("codec: encode values: key %q: %w", key, err)
		}
		encodedValue := submissionValue(field, value, cfg.logger)

		if !first {
			buf.WriteString(",\n")
		}
		first = false
		buf.WriteString("  ")
		buf.Write(encodedKey)
		buf.WriteString(": ")
		buf.Write(encodedValue)
	}

	if first {
		return []byte("{}"), nil
	}
	buf.WriteString("\n}")
	return buf.Bytes(), nil
}

// SubmissionValue converts one answer to its submitted representation. It
// returns nil when the answer cannot be represented.
func SubmissionValue(field model.FieldDefinition, value any) any {
	switch v := value.(type) {
	case time.Time:
		return formatTime(field.Type, v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return formatTime(field.Type, *v)
	case model.FileRef:
		if !v.Resolvable() {
			return nil
		}
		return fileJSON{Name: v.Name, Size: v.Size, ContentType: v.ContentType}
	case *model.FileRef:
		if v == nil || !v.Resolvable() {
			return nil
		}
		return fileJSON{Name: v.Name, Size: v.Size, ContentType: v.ContentType}
	default:
		return value
	}
}

func submissionValue(field model.FieldDefinition, value any, logger *zap.Logger) []byte {
	converted := SubmissionValue(field, value)
	if converted == nil && value != nil {
		logger.Warn("answer cannot be serialized, writing null",
			zap.String("field_id", field.ID),
			zap.String("type", string(field.Type)),
		)
		return []byte("null")
	}
	out, err := json.Marshal(converted)
	if err != nil {
		logger.Warn("answer cannot be serialized, writing null",
			zap.String("field_id", field.ID),
			zap.String("type", string(field.Type)),
			zap.Error(err),
		)
		return []byte("null")
	}
	return out
}

func formatTime(kind model.FieldType, t time.Time) string {
	switch kind {
	case model.FieldTypeDate:
		return t.Format(DateLayout)
	case model.FieldTypeTime:
		return t.Format(TimeLayout)
	default:
		return t.Format(DateTimeLayout)
	}
}
