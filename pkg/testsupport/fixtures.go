package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ContactForm returns a small collection touching every rule variant. Ids are
// fixed so goldens stay stable.
func ContactForm() model.Collection {
	minAge := 18.0
	return model.Collection{
		{
			ID:          "f-name",
			Type:        model.FieldTypeText,
			Label:       "Full Name",
			Name:        "full_name",
			Placeholder: "Jane Doe",
			Required:    true,
		},
		{
			ID:    "f-plan",
			Type:  model.FieldTypeSelect,
			Label: "Plan",
			Name:  "plan",
			Options: []model.Option{
				{Label: "Free", Value: "free"},
				{Label: "Pro", Value: "pro"},
			},
		},
		{
			ID:             "f-company",
			Type:           model.FieldTypeText,
			Label:          "Company",
			Name:           "company",
			VisibilityRule: model.DeclarativeRule("f-plan", "pro", model.ActionShow),
		},
		{
			ID:    "f-news",
			Type:  model.FieldTypeSwitch,
			Label: "Newsletter",
			Name:  "newsletter",
		},
		{
			ID:             "f-age",
			Type:           model.FieldTypeText,
			Label:          "Age",
			Name:           "age",
			HelperText:     "Years",
			Validation:     &model.Validation{Min: &minAge, Message: "Adults only"},
			VisibilityRule: model.ExpressionRule("newsletter == true"),
		},
		{
			ID:      "f-start",
			Type:    model.FieldTypeDate,
			Label:   "Start",
			Name:    "start",
			MinDate: "2025-01-01",
		},
	}
}

// FuzzCollection builds n random but valid field definitions with ids
// "fuzz-0".."fuzz-n-1". Options only appear on choice kinds.
func FuzzCollection(seed int64, n int) model.Collection {
	kinds := model.FieldTypes()
	actions := []model.Action{model.ActionShow, model.ActionHide, ""}

	f := fuzz.NewWithSeed(seed).NilChance(0.3).NumElements(0, 4).Funcs(
		func(t *model.FieldType, c fuzz.Continue) {
			*t = kinds[c.Intn(len(kinds))]
		},
		func(a *model.Action, c fuzz.Continue) {
			*a = actions[c.Intn(len(actions))]
		},
	)

	out := make(model.Collection, n)
	for i := range out {
		var field model.FieldDefinition
		f.Fuzz(&field)
		field.ID = fmt.Sprintf("fuzz-%d", i)
		if !field.Type.HasOptions() {
			field.Options = nil
		}
		out[i] = field
	}
	return out
}

// CollectionDiff compares collections treating nil and empty slices alike.
func CollectionDiff(want, got model.Collection) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

// LoadCollection reads a JSON array of field definitions without going through
// the codec, so codec tests can use it as an independent oracle.
func LoadCollection(path string) (model.Collection, error) {
	if path == "" {
		return nil, errors.New("testsupport: collection path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read collection: %w", err)
	}
	var out model.Collection
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal collection: %w", err)
	}
	return out, nil
}

// MustLoadCollection is LoadCollection for tests.
func MustLoadCollection(t *testing.T, path string) model.Collection {
	t.Helper()

	fields, err := LoadCollection(path)
	if err != nil {
		t.Fatalf("load collection: %v", err)
	}
	return fields
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden diffs got against the golden file at path, ignoring a single
// trailing newline. It returns an empty string on match.
func CompareGolden(t *testing.T, path string, got []byte) string {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return ""
	}
	want := bytes.TrimRight(MustReadGolden(t, path), "\n")
	return cmp.Diff(string(want), string(bytes.TrimRight(got, "\n")))
}
