package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-level", "error", "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeForm(t *testing.T, fields model.Collection) string {
	t.Helper()
	data, err := codec.Encode(fields)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), codec.DefaultFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write form: %v", err)
	}
	return path
}

func TestExportYAML(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "export", "--form", writeForm(t, testsupport.ContactForm()), "--format", "yaml")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := codec.DecodeYAML([]byte(stdout))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if diff := testsupport.CollectionDiff(testsupport.ContactForm(), got); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExportOpenAPIThenImport(t *testing.T) {
	t.Parallel()

	spec := filepath.Join(t.TempDir(), "openapi.json")
	_, _, err := run(t, "export", "-f", writeForm(t, testsupport.ContactForm()),
		"--format", "openapi", "--title", "Contact", "-o", spec)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	stdout, _, err := run(t, "import", spec, "--operation", "submitForm")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := codec.Decode([]byte(stdout))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := testsupport.CollectionDiff(testsupport.ContactForm(), got); diff != "" {
		t.Fatalf("import mismatch (-want +got):\n%s", diff)
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	form := writeForm(t, testsupport.ContactForm())
	values := filepath.Join(t.TempDir(), "values.json")
	if err := os.WriteFile(values, []byte(`{"f-plan":"pro","f-company":"Acme"}`), 0o644); err != nil {
		t.Fatalf("write values: %v", err)
	}

	stdout, _, err := run(t, "preview", "-f", form, "--values", values, "--submit")
	if err != nil {
		t.Fatalf("preview --submit: %v", err)
	}
	for _, want := range []string{`"plan": "pro"`, `"company": "Acme"`} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("submission lacks %s:\n%s", want, stdout)
		}
	}

	stdout, _, err = run(t, "preview", "-f", form, "--title", "Contato", "--locale", "pt-BR")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if strings.Contains(stdout, `data-field-id="f-company"`) || !strings.Contains(stdout, "Contato") {
		t.Fatalf("unexpected html preview:\n%s", stdout)
	}

	if _, _, err := run(t, "preview"); !errors.Is(err, errNoForm) {
		t.Fatalf("expected errNoForm, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "validate", writeForm(t, testsupport.ContactForm()))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(stdout, "1 form(s) ok") {
		t.Fatalf("unexpected output %q", stdout)
	}

	broken := writeForm(t, model.Collection{
		{
			ID: "a", Type: model.FieldTypeText, Label: "A", Name: "a",
			VisibilityRule: model.DeclarativeRule("ghost", "x", model.ActionShow),
		},
		{
			ID: "b", Type: model.FieldTypeText, Label: "B", Name: "b",
			VisibilityRule: model.ExpressionRule("a =="),
		},
	})
	_, stderr, err := run(t, "validate", broken)
	if err == nil {
		t.Fatalf("broken rules should fail validation")
	}
	for _, want := range []string{`[0].visibilityRule -> source field "ghost" not found`, "[1].visibilityRule -> "} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr lacks %q:\n%s", want, stderr)
		}
	}
}
