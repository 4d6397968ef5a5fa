// Package tui is a terminal front end for the form designer. It translates
// prompt answers into store operations and runs previews through a
// preview.Session, asking only for the fields that are currently visible.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/locale"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

// Action is one entry of the designer menu.
type Action int

const (
	ActionAdd Action = iota
	ActionSelect
	ActionEdit
	ActionMove
	ActionDuplicate
	ActionDelete
	ActionPreview
	ActionExport
	ActionQuit
)

var actionLabels = []string{
	ActionAdd:       "Add field",
	ActionSelect:    "Select field",
	ActionEdit:      "Edit selected field",
	ActionMove:      "Move field",
	ActionDuplicate: "Duplicate selected field",
	ActionDelete:    "Delete selected field",
	ActionPreview:   "Preview",
	ActionExport:    "Export",
	ActionQuit:      "Quit",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionLabels) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionLabels[a]
}

// Designer drives a store from terminal prompts. Like the store it is single
// owner and must not be shared between goroutines.
type Designer struct {
	store      *store.Store
	driver     PromptDriver
	visibility codec.VisibilityFilter
	translator locale.Translator
	locale     string
	exportPath string
	logger     *zap.Logger
}

// NewDesigner builds a Designer over s. Without options it prompts through
// survey on stdout and exports to codec.DefaultFileName.
func NewDesigner(s *store.Store, options ...Option) (*Designer, error) {
	if s == nil {
		return nil, errors.New("tui: store is required")
	}
	d := &Designer{
		store:      s,
		exportPath: codec.DefaultFileName,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	if d.driver == nil {
		d.driver = NewSurveyDriver(nil)
	}
	if d.visibility == nil {
		d.visibility = visibility.NewFieldEvaluator(expr.New(), visibility.WithLogger(d.logger))
	}
	return d, nil
}

// Run shows the action menu until the user quits, aborts or ctx is done.
// Errors raised by a single action are reported and the loop continues.
func (d *Designer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, err := d.driver.Select(ctx, SelectConfig{
			Message:  d.text(locale.KeyDesignerAction),
			Options:  actionLabels,
			PageSize: len(actionLabels),
		})
		if err != nil {
			return err
		}
		action := Action(idx)
		if action == ActionQuit {
			return nil
		}
		if err := d.Do(ctx, action); err != nil {
			if fatal(err) {
				return err
			}
			d.logger.Debug("designer action failed", zap.Stringer("action", action), zap.Error(err))
			if err := d.driver.Info(ctx, err.Error()); err != nil {
				return err
			}
		}
	}
}

// Do runs a single menu action.
func (d *Designer) Do(ctx context.Context, action Action) error {
	switch action {
	case ActionAdd:
		return d.add(ctx)
	case ActionSelect:
		return d.selectField(ctx)
	case ActionEdit:
		return d.edit(ctx)
	case ActionMove:
		return d.move(ctx)
	case ActionDuplicate:
		return d.duplicate(ctx)
	case ActionDelete:
		return d.remove(ctx)
	case ActionPreview:
		_, err := d.Preview(ctx)
		return err
	case ActionExport:
		return d.export(ctx)
	case ActionQuit:
		return nil
	default:
		return fmt.Errorf("tui: unknown action %d", int(action))
	}
}

func fatal(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (d *Designer) add(ctx context.Context) error {
	kinds := model.FieldTypes()
	labels := make([]string, len(kinds))
	for i, kind := range kinds {
		labels[i] = locale.TypeLabel(d.translator, d.locale, kind)
	}
	idx, err := d.driver.Select(ctx, SelectConfig{
		Message:  "Field type",
		Options:  labels,
		PageSize: len(labels),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(kinds) {
		return fmt.Errorf("tui: invalid palette choice %d", idx)
	}
	field, err := d.store.AddField(kinds[idx])
	if err != nil {
		return err
	}
	return d.driver.Info(ctx, fmt.Sprintf("Added %q (%s)", field.Label, field.Name))
}

func (d *Designer) selectField(ctx context.Context) error {
	fields := d.store.Fields()
	if len(fields) == 0 {
		return d.driver.Info(ctx, d.text(locale.KeyPreviewEmpty))
	}
	options := append(fieldLabels(fields), "(none)")
	current := fields.Index(d.store.SelectedID())
	if current < 0 {
		current = len(fields)
	}
	idx, err := d.driver.Select(ctx, SelectConfig{
		Message:      "Select field",
		Options:      options,
		DefaultIndex: current,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(fields) {
		d.store.ClearSelection()
		return nil
	}
	d.store.SelectField(fields[idx].ID)
	return nil
}

func (d *Designer) move(ctx context.Context) error {
	fields := d.store.Fields()
	if len(fields) < 2 {
		return d.driver.Info(ctx, "Nothing to move")
	}
	labels := fieldLabels(fields)
	from, err := d.driver.Select(ctx, SelectConfig{
		Message:      "Field to move",
		Options:      labels,
		DefaultIndex: max(fields.Index(d.store.SelectedID()), 0),
	})
	if err != nil {
		return err
	}
	positions := make([]string, len(fields))
	for i := range positions {
		positions[i] = fmt.Sprintf("Position %d", i+1)
	}
	to, err := d.driver.Select(ctx, SelectConfig{
		Message:      "New position",
		Options:      positions,
		DefaultIndex: from,
	})
	if err != nil {
		return err
	}
	if !d.store.MoveField(from, to) {
		return fmt.Errorf("tui: cannot move %d to %d", from, to)
	}
	return nil
}

func (d *Designer) duplicate(ctx context.Context) error {
	id := d.store.SelectedID()
	if id == "" {
		return ErrNoSelection
	}
	dup, ok := d.store.DuplicateField(id)
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrFieldNotFound, id)
	}
	return d.driver.Info(ctx, fmt.Sprintf("Added %q (%s)", dup.Label, dup.Name))
}

func (d *Designer) remove(ctx context.Context) error {
	field, ok := d.store.SelectedField()
	if !ok {
		return ErrNoSelection
	}
	confirmed, err := d.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Delete %q?", field.Label),
	})
	if err != nil || !confirmed {
		return err
	}
	d.store.DeleteField(field.ID)
	return nil
}

func (d *Designer) export(ctx context.Context) error {
	path, err := d.driver.Input(ctx, InputConfig{
		Message: "Export to",
		Default: d.exportPath,
		Validator: func(s string) error {
			_, err := codec.FormatFromPath(s)
			return err
		},
	})
	if err != nil {
		return err
	}
	if path == "" {
		path = d.exportPath
	}
	format, err := codec.FormatFromPath(path)
	if err != nil {
		return err
	}
	fields := d.store.Fields()
	data, err := codec.Marshal(format, fields, codec.WithLogger(d.logger))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("tui: write export: %w", err)
	}
	d.logger.Info("exported form", zap.String("path", path), zap.Int("fields", len(fields)))
	return d.driver.Info(ctx, fmt.Sprintf("Exported %d fields to %s", len(fields), path))
}

func (d *Designer) text(key string, args ...any) string {
	return locale.Text(d.translator, d.locale, key, args...)
}

func fieldLabels(fields model.Collection) []string {
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = fmt.Sprintf("%d. %s (%s) [%s]", i+1, field.Label, field.Name, field.Type)
	}
	return out
}
