package codec_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func TestEncodeMatchesGolden(t *testing.T) {
	t.Parallel()

	out, err := codec.Encode(testsupport.ContactForm())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if diff := testsupport.CompareGolden(t, "testdata/contact_form.json", out); diff != "" {
		t.Fatalf("encoded document mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	t.Parallel()

	for _, fields := range []model.Collection{nil, {}} {
		out, err := codec.Encode(fields)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if string(out) != "[]" {
			t.Fatalf("expected empty array, got %s", out)
		}
	}
}

func TestDecodeGolden(t *testing.T) {
	t.Parallel()

	data := testsupport.MustReadGolden(t, "testdata/contact_form.json")
	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := testsupport.CollectionDiff(testsupport.ContactForm(), got); diff != "" {
		t.Fatalf("decoded collection mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripEveryKindAndRule(t *testing.T) {
	t.Parallel()

	var fields model.Collection
	for _, kind := range model.FieldTypes() {
		base := model.FieldDefinition{
			ID:    "id-" + string(kind),
			Type:  kind,
			Label: string(kind),
			Name:  string(kind) + "_field",
		}
		if kind.HasOptions() {
			base.Options = []model.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}}
		}
		if kind.HasDateBounds() {
			base.MinDate, base.MaxDate = "2025-01-01", "2025-12-31"
		}

		declarative := base.Clone()
		declarative.ID += "-decl"
		declarative.VisibilityRule = model.DeclarativeRule("id-text", "yes", model.ActionHide)

		expression := base.Clone()
		expression.ID += "-expr"
		expression.VisibilityRule = model.ExpressionRule(`text_field == "yes" || !switch_field`)

		fields = append(fields, base, declarative, expression)
	}

	for _, format := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		data, err := codec.Marshal(format, fields)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", format, err)
		}
		got, err := codec.Unmarshal(format, data)
		if err != nil {
			t.Fatalf("%s: Unmarshal: %v", format, err)
		}
		if diff := testsupport.CollectionDiff(fields, got); diff != "" {
			t.Fatalf("%s: round trip mismatch (-want +got):\n%s", format, diff)
		}
	}
}

func TestRoundTripFuzzedCollections(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 25; seed++ {
		fields := testsupport.FuzzCollection(seed, int(seed%7))
		data, err := codec.Encode(fields)
		if err != nil {
			t.Fatalf("seed %d: Encode: %v", seed, err)
		}
		got, err := codec.Decode(data)
		if err != nil {
			t.Fatalf("seed %d: Decode: %v\n%s", seed, err, data)
		}
		if diff := testsupport.CollectionDiff(fields, got); diff != "" {
			t.Fatalf("seed %d: round trip mismatch (-want +got):\n%s", seed, diff)
		}
	}
}

func TestYAMLMatchesJSON(t *testing.T) {
	t.Parallel()

	fields := testsupport.ContactForm()
	data, err := codec.EncodeYAML(fields)
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	if !strings.Contains(string(data), "sourceFieldId: f-plan") {
		t.Fatalf("yaml should use the JSON member names:\n%s", data)
	}
	fromYAML, err := codec.DecodeYAML(data)
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	jsonData, err := codec.Encode(fields)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	fromJSON, err := codec.Decode(jsonData)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := testsupport.CollectionDiff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("yaml and json disagree (-json +yaml):\n%s", diff)
	}
}

func TestDecodeLegacyExport(t *testing.T) {
	t.Parallel()

	got, err := codec.Decode(testsupport.MustReadGolden(t, "testdata/legacy_export.json"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(got))
	}

	if diff := cmp.Diff(model.DeclarativeRule("a1", "sim", model.ActionShow), got[1].VisibilityRule); diff != "" {
		t.Fatalf("displayConditionConfig mapping (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.ExpressionRule("formValues.a1 == 'nao'"), got[2].VisibilityRule); diff != "" {
		t.Fatalf("customCode mapping (-want +got):\n%s", diff)
	}
	if got[0].VisibilityRule != nil || got[3].VisibilityRule != nil {
		t.Fatalf("fields without legacy members should have no rule")
	}
	if got[3].MinDate != "2024-01-01" || got[3].MaxDate != "2024-12-31" {
		t.Fatalf("date bounds lost: %+v", got[3])
	}
	if got[0].Options[1].Label != "Não" {
		t.Fatalf("unexpected option label %q", got[0].Options[1].Label)
	}
}

func TestDecodeRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		paths []string
	}{
		{
			name:  "missing id",
			input: `[{"type":"text","label":"A","name":"a","required":false,"disabled":false}]`,
			paths: []string{"[0].id"},
		},
		{
			name:  "unknown type",
			input: `[{"id":"x","type":"slider","label":"A","name":"a","required":false,"disabled":false}]`,
			paths: []string{"[0].type"},
		},
		{
			name:  "bad action",
			input: `[{"id":"x","type":"text","label":"A","name":"a","visibilityRule":{"condition":{"sourceFieldId":"y","targetValue":"1","action":"toggle"}}}]`,
			paths: []string{"[0].visibilityRule.condition.action"},
		},
		{
			name:  "duplicate ids",
			input: `[{"id":"x","type":"text","label":"A","name":"a"},{"id":"x","type":"date","label":"B","name":"b"}]`,
			paths: []string{"[1].id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := codec.Decode([]byte(tt.input))
			var verr *codec.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			var paths []string
			for _, p := range verr.Problems {
				paths = append(paths, p.Path)
			}
			if diff := cmp.Diff(tt.paths, paths); diff != "" {
				t.Fatalf("problem paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		``,
		`{"id":"x"}`,
		`[{"id":"x","type":"text","unknown":1}]`,
		`[] []`,
		`[{"id":`,
	}
	for _, input := range inputs {
		if _, err := codec.Decode([]byte(input)); err == nil {
			t.Fatalf("Decode(%q) expected error", input)
		}
	}
}

func TestDecodeDropsOptionsOfNonChoiceKinds(t *testing.T) {
	t.Parallel()

	got, err := codec.Decode([]byte(`[{"id":"x","type":"text","label":"A","name":"a","options":[{"label":"L","value":"v"}]}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got[0].Options) != 0 {
		t.Fatalf("text field must not carry options: %+v", got[0].Options)
	}
}

func TestEncodeNullsNonFiniteBounds(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	nan, inf, ok := math.NaN(), math.Inf(1), 3.0
	fields := model.Collection{{
		ID:         "x",
		Type:       model.FieldTypeText,
		Validation: &model.Validation{Min: &nan, Max: &inf, Pattern: "^a"},
	}, {
		ID:         "y",
		Type:       model.FieldTypeText,
		Validation: &model.Validation{Max: &ok},
	}}

	data, err := codec.Encode(fields, codec.WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("Encode should not fail on non-finite bounds: %v", err)
	}
	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got[0].Validation.Min != nil || got[0].Validation.Max != nil {
		t.Fatalf("non-finite bounds should be nulled: %+v", got[0].Validation)
	}
	if got[0].Validation.Pattern != "^a" || *got[1].Validation.Max != 3 {
		t.Fatalf("finite members should survive: %+v %+v", got[0].Validation, got[1].Validation)
	}
	if logs.Len() != 2 {
		t.Fatalf("expected 2 warnings, got %d", logs.Len())
	}
	if !math.IsNaN(*fields[0].Validation.Min) {
		t.Fatalf("Encode must not mutate its input")
	}
}

func TestFormatSelection(t *testing.T) {
	t.Parallel()

	tests := map[string]codec.Format{
		"formulario.json": codec.FormatJSON,
		"form.YAML":       codec.FormatYAML,
		"dir/form.yml":    codec.FormatYAML,
	}
	for path, want := range tests {
		got, err := codec.FormatFromPath(path)
		if err != nil || got != want {
			t.Fatalf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := codec.FormatFromPath("form.xml"); !errors.Is(err, codec.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := codec.ParseFormat(""); err != nil || f != codec.FormatJSON {
		t.Fatalf("empty format should default to json")
	}
}
