/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validator_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/validator"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read testdata/%s: %v", name, err)
	}
	return data
}

func TestValidatePayload_Valid(t *testing.T) {
	data := readTestdata(t, "valid-payload.json")
	errs := validator.ValidatePayload(data, "valid-payload.json")
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %d: %v", len(errs), errs)
	}
}

func TestValidatePayload_Invalid(t *testing.T) {
	data := readTestdata(t, "invalid-payload.yaml")
	errs := validator.ValidatePayload(data, "invalid-payload.yaml")

	want := []struct {
		path    string
		message string
	}{
		{"brand.dark", "mode must be an object"},
		{"brand.light.a/b", "name contains '/'"},
		{"brand.light.colors.bad", "unparseable color"},
		{"brand.light.colors.embedded", "embedded reference"},
		{"brand.light.flags.on", "boolean value"},
		{"brand.light.space.gap", "not numeric"},
		{"brand.light.space.untyped", "no $type"},
		{"empty", "no modes"},
		{"scalar", "collection must be an object"},
	}

	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(errs), errs)
	}
	for i, w := range want {
		if errs[i].Path != w.path {
			t.Errorf("error %d: path = %q, want %q", i, errs[i].Path, w.path)
		}
		if !strings.Contains(errs[i].Message, w.message) {
			t.Errorf("error %d: message = %q, want it to contain %q", i, errs[i].Message, w.message)
		}
		if errs[i].FilePath != "invalid-payload.yaml" {
			t.Errorf("error %d: FilePath = %q", i, errs[i].FilePath)
		}
	}
}

func TestValidatePayload_Unparseable(t *testing.T) {
	errs := validator.ValidatePayload([]byte(`{"brand": `), "broken.json")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Message, "failed to parse") {
		t.Errorf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateTree(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		wantErr bool
	}{
		{
			name: "inherited type",
			data: map[string]any{"c": map[string]any{"m": map[string]any{
				"$type": "number",
				"gap":   map[string]any{"$value": 4.0},
			}}},
		},
		{
			name: "reference to anything",
			data: map[string]any{"c": map[string]any{"m": map[string]any{
				"gap": map[string]any{"$value": "{space.md}", "$type": "number"},
			}}},
		},
		{
			name: "channel map color",
			data: map[string]any{"c": map[string]any{"m": map[string]any{
				"red": map[string]any{"$value": map[string]any{"r": 1.0, "g": 0.0, "b": 0.0, "a": 1.0}, "$type": "color"},
			}}},
		},
		{
			name: "null value",
			data: map[string]any{"c": map[string]any{"m": map[string]any{
				"red": map[string]any{"$value": nil, "$type": "color"},
			}}},
			wantErr: true,
		},
		{
			name: "color of wrong kind",
			data: map[string]any{"c": map[string]any{"m": map[string]any{
				"red": map[string]any{"$value": 12.0, "$type": "color"},
			}}},
			wantErr: true,
		},
		{
			name: "scalar child",
			data: map[string]any{"c": map[string]any{"m": map[string]any{
				"red": "#ff0000",
			}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.ValidateTree(tt.data, "")
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateTree() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &validator.ValidationError{
		FilePath:   "tokens.json",
		Path:       "brand.light.red",
		Message:    "unparseable color",
		Suggestion: "use #rrggbb",
	}
	want := "tokens.json: brand.light.red: unparseable color (use #rrggbb)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidateConsistency_ValidDraft(t *testing.T) {
	data := readTestdata(t, "valid-payload.json")
	errs := validator.ValidateConsistency(data, schema.Draft, "valid-payload.json")
	if len(errs) != 0 {
		t.Errorf("expected no errors for valid draft, got %d: %v", len(errs), errs)
	}
}

func TestValidateConsistency_DraftWithRef(t *testing.T) {
	data := readTestdata(t, "draft-with-ref.json")
	errs := validator.ValidateConsistency(data, schema.Draft, "draft-with-ref.json")

	if len(errs) != 1 {
		t.Fatalf("expected 1 error for $ref in draft schema, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Message, "$ref") {
		t.Errorf("expected message to mention $ref, got: %s", errs[0].Message)
	}
	if errs[0].Path != "brand.light.primary.$value.$ref" {
		t.Errorf("unexpected path %q", errs[0].Path)
	}
	if !strings.Contains(errs[0].Suggestion, "curly-brace") {
		t.Errorf("expected suggestion to mention curly-brace refs, got: %s", errs[0].Suggestion)
	}
}

func TestValidateConsistency_DraftWithStructuredColor(t *testing.T) {
	data := readTestdata(t, "v2025-with-string-color.json")
	errs := validator.ValidateConsistency(data, schema.Draft, "")

	found := false
	for _, err := range errs {
		if err.Path == "brand.light.blue" && strings.Contains(err.Message, "structured color") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected structured color error at brand.light.blue, got: %v", errs)
	}
}

func TestValidateConsistency_V2025WithStringColor(t *testing.T) {
	data := readTestdata(t, "v2025-with-string-color.json")
	errs := validator.ValidateConsistency(data, schema.V2025_10, "")

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Path != "brand.light.red" {
		t.Errorf("expected error at brand.light.red, got %q", errs[0].Path)
	}
	if !strings.Contains(errs[0].Suggestion, "colorSpace") {
		t.Errorf("expected suggestion to mention colorSpace, got: %s", errs[0].Suggestion)
	}
}
