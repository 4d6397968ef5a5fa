package tui_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// keepDefault answers an input prompt with its default, like pressing enter.
type keepDefault struct{}

var errScriptDone = errors.New("script exhausted")

// scriptedDriver replays answers in order and records what it was asked.
type scriptedDriver struct {
	answers []any
	prompts []string
	infos   []string
}

func script(answers ...any) *scriptedDriver {
	return &scriptedDriver{answers: answers}
}

func (s *scriptedDriver) next(message string) (any, error) {
	s.prompts = append(s.prompts, message)
	if len(s.answers) == 0 {
		return nil, fmt.Errorf("%w at %q", errScriptDone, message)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	if err, ok := answer.(error); ok {
		return nil, err
	}
	return answer, nil
}

func (s *scriptedDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	answer, err := s.next(cfg.Message)
	if err != nil {
		return "", err
	}
	if _, ok := answer.(keepDefault); ok {
		return cfg.Default, nil
	}
	text, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("input %q got %T", cfg.Message, answer)
	}
	return text, nil
}

func (s *scriptedDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	answer, err := s.next(cfg.Message)
	if err != nil {
		return false, err
	}
	value, ok := answer.(bool)
	if !ok {
		return false, fmt.Errorf("confirm %q got %T", cfg.Message, answer)
	}
	return value, nil
}

func (s *scriptedDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	answer, err := s.next(cfg.Message)
	if err != nil {
		return -1, err
	}
	idx, ok := answer.(int)
	if !ok {
		return -1, fmt.Errorf("select %q got %T", cfg.Message, answer)
	}
	return idx, nil
}

func (s *scriptedDriver) MultiSelect(_ context.Context, cfg tui.SelectConfig) ([]int, error) {
	answer, err := s.next(cfg.Message)
	if err != nil {
		return nil, err
	}
	idx, ok := answer.([]int)
	if !ok {
		return nil, fmt.Errorf("multiselect %q got %T", cfg.Message, answer)
	}
	return idx, nil
}

func (s *scriptedDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	answer, err := s.next(cfg.Message)
	if err != nil {
		return "", err
	}
	text, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("textarea %q got %T", cfg.Message, answer)
	}
	return text, nil
}

func (s *scriptedDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func (s *scriptedDriver) done(t *testing.T) {
	t.Helper()
	if len(s.answers) != 0 {
		t.Fatalf("%d scripted answers left unused: %v", len(s.answers), s.answers)
	}
}

func sequentialIDs() store.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newDesigner(t *testing.T, driver tui.PromptDriver, fields model.Collection) (*tui.Designer, *store.Store) {
	t.Helper()
	s := store.New(
		store.WithIDGenerator(sequentialIDs()),
		store.WithNameGenerator(&store.SequenceNames{}),
		store.WithFields(fields),
	)
	d, err := tui.NewDesigner(s, tui.WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("NewDesigner: %v", err)
	}
	return d, s
}

func paletteIndex(kind model.FieldType) int {
	for i, k := range model.FieldTypes() {
		if k == kind {
			return i
		}
	}
	return -1
}

func TestDesignerBuildsAndPreviewsForm(t *testing.T) {
	t.Parallel()

	driver := script(
		int(tui.ActionAdd), paletteIndex(model.FieldTypeSelect),
		int(tui.ActionAdd), paletteIndex(model.FieldTypeText),
		int(tui.ActionEdit),
		"Company", "company", keepDefault{}, keepDefault{}, // label, name, placeholder, helper
		[]int{0}, // required
		1,        // depends on another field
		0,        // source: the select
		1,        // target: option2
		0,        // show
		int(tui.ActionPreview),
		1,      // select answers option2
		"Acme", // company becomes visible
		int(tui.ActionQuit),
	)
	d, s := newDesigner(t, driver, nil)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	driver.done(t)

	fields := s.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	company := fields[1]
	if company.Label != "Company" || company.Name != "company" || !company.Required {
		t.Fatalf("edit not applied: %+v", company)
	}
	want := model.DeclarativeRule("id-1", "option2", model.ActionShow)
	if diff := cmp.Diff(want, company.VisibilityRule); diff != "" {
		t.Fatalf("rule mismatch (-want +got):\n%s", diff)
	}

	submission := driver.infos[len(driver.infos)-1]
	for _, wantPart := range []string{`"field_1": "option2"`, `"company": "Acme"`} {
		if !strings.Contains(submission, wantPart) {
			t.Fatalf("submission %q lacks %s", submission, wantPart)
		}
	}
}

func TestDesignerPreviewAsksOnlyVisibleFields(t *testing.T) {
	t.Parallel()

	driver := script(
		"Ada",        // full name
		0,            // plan: free, so company stays hidden
		true,         // newsletter reveals age
		"42",         // age
		"2025-13-01", // invalid start date is asked again
		"2025-02-03",
	)
	d, _ := newDesigner(t, driver, testsupport.ContactForm())

	out, err := d.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	driver.done(t)

	for _, prompt := range driver.prompts {
		if strings.HasPrefix(prompt, "Company") {
			t.Fatalf("hidden field was asked: %v", driver.prompts)
		}
	}
	submission := string(out)
	for _, wantPart := range []string{
		`"full_name": "Ada"`,
		`"plan": "free"`,
		`"newsletter": true`,
		`"age": "42"`,
		`"start": "2025-02-03"`,
	} {
		if !strings.Contains(submission, wantPart) {
			t.Fatalf("submission lacks %s:\n%s", wantPart, submission)
		}
	}
	if strings.Contains(submission, "company") {
		t.Fatalf("hidden field leaked into submission:\n%s", submission)
	}
}

func TestDesignerEditOptionsAndClearRule(t *testing.T) {
	t.Parallel()

	radio := model.FieldDefinition{
		ID:             "r",
		Type:           model.FieldTypeRadio,
		Label:          "Size",
		Name:           "size",
		Options:        []model.Option{{Label: "One", Value: "1"}},
		VisibilityRule: model.ExpressionRule("x == 1"),
	}
	driver := script(
		keepDefault{}, keepDefault{}, keepDefault{}, keepDefault{},
		[]int{1, 2},
		"Small\nLarge = xl\n\nExtra Large",
		0,
	)
	d, s := newDesigner(t, driver, model.Collection{radio})
	s.SelectField("r")

	if err := d.Do(context.Background(), tui.ActionEdit); err != nil {
		t.Fatalf("Do: %v", err)
	}
	driver.done(t)

	got, _ := s.Field("r")
	wantOptions := []model.Option{
		{Label: "Small", Value: "small"},
		{Label: "Large", Value: "xl"},
		{Label: "Extra Large", Value: "extra_large"},
	}
	if diff := cmp.Diff(wantOptions, got.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if got.Required || !got.Disabled || !got.Hidden {
		t.Fatalf("flags not applied: %+v", got)
	}
	if got.VisibilityRule != nil {
		t.Fatalf("rule should be cleared, got %+v", got.VisibilityRule)
	}
}

func TestDesignerRejectsBadExpression(t *testing.T) {
	t.Parallel()

	driver := script(
		keepDefault{}, keepDefault{}, keepDefault{}, keepDefault{},
		[]int{},
		2,
		"plan ==",
	)
	d, s := newDesigner(t, driver, model.Collection{{ID: "a", Type: model.FieldTypeText, Label: "A", Name: "a"}})
	s.SelectField("a")

	err := d.Do(context.Background(), tui.ActionEdit)
	if !errors.Is(err, visibility.ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if got, _ := s.Field("a"); got.VisibilityRule != nil {
		t.Fatalf("failed edit must not change the field: %+v", got)
	}
}

func TestDesignerMoveDuplicateDelete(t *testing.T) {
	t.Parallel()

	driver := script(
		int(tui.ActionMove), 0, 2,
		int(tui.ActionDuplicate), // nothing selected yet
		int(tui.ActionSelect), 0,
		int(tui.ActionDuplicate),
		int(tui.ActionSelect), 1,
		int(tui.ActionDelete), true,
		int(tui.ActionQuit),
	)
	d, s := newDesigner(t, driver, testsupport.ContactForm())

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	driver.done(t)

	got := make([]string, 0, s.Len())
	for _, field := range s.Fields() {
		got = append(got, field.Name)
	}
	want := []string{"plan", "full_name", "newsletter", "age", "start", "plan_copy"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !slicesContain(driver.infos, tui.ErrNoSelection.Error()) {
		t.Fatalf("missing selection error should be reported, got %v", driver.infos)
	}
}

func TestDesignerExport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "form.yaml")
	driver := script(path)
	d, _ := newDesigner(t, driver, testsupport.ContactForm())

	if err := d.Do(context.Background(), tui.ActionExport); err != nil {
		t.Fatalf("Do: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	got, err := codec.DecodeYAML(data)
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if diff := testsupport.CollectionDiff(testsupport.ContactForm(), got); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestDesignerAbortStopsRun(t *testing.T) {
	t.Parallel()

	d, _ := newDesigner(t, script(tui.ErrAborted), nil)
	if err := d.Run(context.Background()); !errors.Is(err, tui.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, _ = newDesigner(t, script(), nil)
	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func slicesContain(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
