package tui

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/locale"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/preview"
)

const skipChoice = "(skip)"

// Preview fills in the form as a respondent would. After every answer the
// visible set is recomputed, so a field that appears because of an answer is
// asked next and one that disappears is never asked. It returns the encoded
// submission, which is also printed through the driver.
func (d *Designer) Preview(ctx context.Context) ([]byte, error) {
	session := preview.NewSession(d.store.Fields(), d.visibility, preview.WithLogger(d.logger))
	defer session.Close()

	if err := d.driver.Info(ctx, d.text(locale.KeyPreviewTitle)); err != nil {
		return nil, err
	}

	asked := make(map[string]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		field, ok := nextField(session, asked)
		if !ok {
			break
		}
		asked[field.ID] = struct{}{}
		if field.Disabled {
			continue
		}
		if err := d.answer(ctx, session, field); err != nil {
			return nil, err
		}
	}

	if len(asked) == 0 {
		if err := d.driver.Info(ctx, d.text(locale.KeyPreviewEmpty)); err != nil {
			return nil, err
		}
	}
	out, err := session.Submit()
	if err != nil {
		return nil, err
	}
	if err := d.driver.Info(ctx, string(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// nextField returns the first visible field, in canvas order, that has not
// been asked yet.
func nextField(session *preview.Session, asked map[string]struct{}) (model.FieldDefinition, bool) {
	for _, field := range session.Visible() {
		if _, done := asked[field.ID]; !done {
			return field, true
		}
	}
	return model.FieldDefinition{}, false
}

// answer prompts for one field until the answer fits its kind or is skipped.
func (d *Designer) answer(ctx context.Context, session *preview.Session, field model.FieldDefinition) error {
	for {
		raw, err := d.ask(ctx, field)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		err = session.SetValue(field.ID, raw)
		if err == nil {
			return nil
		}
		d.logger.Debug("preview answer rejected", zap.String("field_id", field.ID), zap.Error(err))
		if err := d.driver.Info(ctx, err.Error()); err != nil {
			return err
		}
	}
}

// ask returns the raw answer for field, or nil when it was left empty.
func (d *Designer) ask(ctx context.Context, field model.FieldDefinition) (any, error) {
	message := questionText(field)
	switch {
	case field.Type.IsToggle():
		checked, err := d.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: field.HelperText})
		if err != nil {
			return nil, err
		}
		return checked, nil

	case field.Type == model.FieldTypeMultiselect:
		labels := optionLabels(field.Options)
		chosen, err := d.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Help: field.HelperText})
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(chosen))
		for _, idx := range chosen {
			if idx >= 0 && idx < len(field.Options) {
				values = append(values, field.Options[idx].Value)
			}
		}
		if len(values) == 0 {
			return nil, nil
		}
		return values, nil

	case field.Type.HasOptions():
		if len(field.Options) == 0 {
			return nil, nil
		}
		labels := optionLabels(field.Options)
		if !field.Required {
			labels = append(labels, skipChoice)
		}
		idx, err := d.driver.Select(ctx, SelectConfig{Message: message, Options: labels, Help: field.HelperText, DefaultIndex: -1})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil, nil
		}
		return field.Options[idx].Value, nil

	case field.Type == model.FieldTypeTextarea:
		text, err := d.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: field.HelperText})
		if err != nil {
			return nil, err
		}
		return emptyAsNil(text), nil

	case field.Type.IsBinary():
		path, err := d.driver.Input(ctx, InputConfig{Message: message, Help: "Path to a local file"})
		if err != nil {
			return nil, err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, nil
		}
		return fileRef(path), nil

	default:
		help := field.HelperText
		if field.Type.IsTemporal() {
			help = temporalHelp(field)
		}
		var validate func(string) error
		if field.Required {
			validate = nonEmpty
		}
		text, err := d.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   "",
			Help:      help,
			Validator: validate,
		})
		if err != nil {
			return nil, err
		}
		return emptyAsNil(text), nil
	}
}

func questionText(field model.FieldDefinition) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}

func optionLabels(options []model.Option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.Label
	}
	return out
}

func temporalHelp(field model.FieldDefinition) string {
	parts := []string{}
	switch field.Type {
	case model.FieldTypeDate:
		parts = append(parts, "YYYY-MM-DD")
	case model.FieldTypeTime:
		parts = append(parts, "HH:MM")
	default:
		parts = append(parts, "YYYY-MM-DDTHH:MM")
	}
	if field.MinDate != "" {
		parts = append(parts, "from "+field.MinDate)
	}
	if field.MaxDate != "" {
		parts = append(parts, "until "+field.MaxDate)
	}
	return strings.Join(parts, ", ")
}

func emptyAsNil(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// fileRef describes a local file. A path that cannot be read still yields a
// reference carrying the base name.
func fileRef(path string) model.FileRef {
	ref := model.FileRef{
		Name:        filepath.Base(path),
		Handle:      path,
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		ref.Size = info.Size()
	}
	return ref
}
