/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package convert_test

import (
	"reflect"
	"testing"

	"bennypowers.dev/varsync/convert"
	"bennypowers.dev/varsync/parser"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/testutil"
	"bennypowers.dev/varsync/token"
)

func loadTestTree(t *testing.T) token.Tree {
	t.Helper()
	mfs := testutil.NewFixtureFS(t, "tokens", "/test")
	tree, err := parser.NewJSONParser().ParseFile(mfs, "/test/brand.json", parser.Options{})
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return tree
}

func TestFormatColor(t *testing.T) {
	tests := []struct {
		input  string
		format convert.ColorFormat
		want   string
	}{
		{"#ff0000", convert.ColorHex, "#ff0000"},
		{"#f00", convert.ColorHex, "#ff0000"},
		{"#ff0000", convert.ColorRGBA, "rgba(255, 0, 0, 1)"},
		{"#ff0000", convert.ColorHSLA, "hsla(0, 100%, 50%, 1)"},
		{"#33669980", convert.ColorHex, "#33669980"},
		{"#33669980", convert.ColorRGBA, "rgba(51, 102, 153, 0.502)"},
		{"#336699", convert.ColorHSLA, "hsla(210, 50%, 40%, 1)"},
		{"rgb(0 0 255 / 50%)", convert.ColorHex, "#0000ff80"},
		{"white", convert.ColorRGBA, "rgba(255, 255, 255, 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.input+"/"+string(tt.format), func(t *testing.T) {
			got, err := convert.FormatColor(tt.input, tt.format)
			if err != nil {
				t.Fatalf("FormatColor() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatColor(%q, %s) = %q, want %q", tt.input, tt.format, got, tt.want)
			}
		})
	}

	if _, err := convert.FormatColor("not a color", convert.ColorHex); err == nil {
		t.Error("expected error for invalid color")
	}
}

func TestParseColorFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    convert.ColorFormat
		wantErr bool
	}{
		{"", convert.ColorHex, false},
		{"HEX", convert.ColorHex, false},
		{"rgb", convert.ColorRGBA, false},
		{"rgba", convert.ColorRGBA, false},
		{"hsla", convert.ColorHSLA, false},
		{"cmyk", "", true},
	}
	for _, tt := range tests {
		got, err := convert.ParseColorFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseColorFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestApplyColorFormat(t *testing.T) {
	tree := loadTestTree(t)
	out := convert.ApplyColorFormat(tree, convert.ColorRGBA)

	light := out["brand"]["light"]
	red, _ := light.Token([]string{"colors", "red"})
	if red.Value != "rgba(255, 0, 0, 1)" {
		t.Errorf("red = %v", red.Value)
	}
	primary, _ := light.Token([]string{"colors", "primary"})
	if primary.Value != "{colors.red}" {
		t.Errorf("reference should be untouched, got %v", primary.Value)
	}
	md, _ := light.Token([]string{"space", "md"})
	if md.Value != 16.0 {
		t.Errorf("non-color should be untouched, got %v", md.Value)
	}

	original, _ := tree["brand"]["light"].Token([]string{"colors", "red"})
	if original.Value != "#ff0000" {
		t.Error("input tree was modified")
	}

	back := convert.ApplyColorFormat(out, convert.ColorHex)
	red, _ = back["brand"]["light"].Token([]string{"colors", "red"})
	if red.Value != "#ff0000" {
		t.Errorf("hex round trip = %v", red.Value)
	}
}

func TestFlatten(t *testing.T) {
	tree := loadTestTree(t)
	flat := convert.Flatten(tree, ".")

	got := flat["brand"]["light"].Keys()
	want := []string{"colors.overlay", "colors.primary", "colors.red", "space.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	tok, ok := flat["primitives"]["default"].Token([]string{"font.family"})
	if !ok || tok.Value != "Inter" {
		t.Errorf("flattened token = %+v", tok)
	}
}

func TestFilter(t *testing.T) {
	tree := loadTestTree(t)

	tests := []struct {
		name        string
		collections []string
		modes       []string
		want        map[string][]string
	}{
		{"all", nil, nil, map[string][]string{
			"brand":      {"dark", "light"},
			"primitives": {"default"},
		}},
		{"collection glob", []string{"br*"}, nil, map[string][]string{
			"brand": {"dark", "light"},
		}},
		{"mode", nil, []string{"light", "default"}, map[string][]string{
			"brand":      {"light"},
			"primitives": {"default"},
		}},
		{"nothing", []string{"none"}, nil, map[string][]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := convert.Filter(tree, tt.collections, tt.modes)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			got := make(map[string][]string)
			for _, c := range out.CollectionNames() {
				got[c] = out.ModeNames(c)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := convert.Filter(tree, []string{"[bad"}, nil); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestSerialize_V2025(t *testing.T) {
	tree := loadTestTree(t)
	result := convert.Serialize(tree, convert.Options{OutputSchema: schema.V2025_10})

	if result["$schema"] != schema.V2025_10.URL() {
		t.Errorf("$schema = %v", result["$schema"])
	}

	colors := result["brand"].(map[string]any)["light"].(map[string]any)["colors"].(map[string]any)
	primary := colors["primary"].(map[string]any)
	wantRef := map[string]any{"$ref": "#/colors/red"}
	if !reflect.DeepEqual(primary["$value"], wantRef) {
		t.Errorf("primary $value = %v, want %v", primary["$value"], wantRef)
	}
	if primary["$description"] != "Primary action color" {
		t.Errorf("description lost: %v", primary)
	}

	red := colors["red"].(map[string]any)["$value"].(map[string]any)
	want := map[string]any{
		"colorSpace": "srgb",
		"components": []any{1.0, 0.0, 0.0},
		"alpha":      1.0,
		"hex":        "#ff0000",
	}
	if !reflect.DeepEqual(red, want) {
		t.Errorf("red $value = %v, want %v", red, want)
	}
}

func TestSerialize_V2025RoundTrip(t *testing.T) {
	tree := loadTestTree(t)
	data, err := convert.FormatTree(tree, convert.FormatDTCG, convert.Options{OutputSchema: schema.V2025_10})
	if err != nil {
		t.Fatalf("FormatTree() error = %v", err)
	}
	back, err := parser.NewJSONParser().Parse(data, parser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	primary, _ := back["brand"]["light"].Token([]string{"colors", "primary"})
	if primary.Value != "{colors.red}" {
		t.Errorf("primary = %v", primary.Value)
	}
	red, _ := back["brand"]["dark"].Token([]string{"colors", "red"})
	if red.Value != "#880000" {
		t.Errorf("red = %v", red.Value)
	}
}

func TestSerialize_DraftDefaults(t *testing.T) {
	tree := loadTestTree(t)
	result := convert.Serialize(tree, convert.Options{Flatten: true, ColorFormat: convert.ColorHSLA})

	if _, ok := result["$schema"]; ok {
		t.Error("draft output should not carry $schema")
	}
	light := result["brand"].(map[string]any)["light"].(map[string]any)
	red, ok := light["colors-red"].(map[string]any)
	if !ok {
		t.Fatalf("expected flattened key colors-red, got %v", light)
	}
	if red["$value"] != "hsla(0, 100%, 50%, 1)" {
		t.Errorf("red = %v", red["$value"])
	}
}
