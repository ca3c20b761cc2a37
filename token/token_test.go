/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"bennypowers.dev/varsync/token"
)

func TestIsReference(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"dotted reference", "{color.brand.primary}", true},
		{"slashed reference", "{color/brand/primary}", true},
		{"padded reference", "  {a}  ", true},
		{"empty object sentinel", "{}", false},
		{"embedded reference", "calc({space.sm} * 2)", false},
		{"two references", "{a} {b}", false},
		{"hex color", "#ff0000", false},
		{"number", 8.0, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := token.IsReference(tt.value); got != tt.expected {
				t.Errorf("IsReference(%v) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestReferencePath(t *testing.T) {
	path, ok := token.ReferencePath("{color.brand.primary}")
	if !ok || path != "color.brand.primary" {
		t.Errorf("ReferencePath() = %q, %v; want color.brand.primary, true", path, ok)
	}
	if _, ok := token.ReferencePath(token.EmptyObject); ok {
		t.Error("expected {} not to be a reference")
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "brand/primary", []string{"brand", "primary"}},
		{"empty segments", "/brand//primary/", []string{"brand", "primary"}},
		{"single segment", "primary", []string{"primary"}},
		{"empty name", "", []string{"base"}},
		{"only slashes", "///", []string{"base"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := token.SplitName(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitName(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGroup_SetAndGet(t *testing.T) {
	g := token.NewGroup()
	if err := g.Set([]string{"brand", "primary"}, &token.Token{Value: "#ff0000", Type: token.TypeColor}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tok, ok := g.Token([]string{"brand", "primary"})
	if !ok {
		t.Fatal("expected token at brand.primary")
	}
	if tok.Value != "#ff0000" {
		t.Errorf("Value = %v, want #ff0000", tok.Value)
	}

	if _, ok := g.Token([]string{"brand"}); ok {
		t.Error("brand should be a group, not a token")
	}

	t.Run("conflict under a token", func(t *testing.T) {
		err := g.Set([]string{"brand", "primary", "hover"}, &token.Token{Value: "#000", Type: token.TypeColor})
		if !errors.Is(err, token.ErrPathConflict) {
			t.Errorf("expected ErrPathConflict, got %v", err)
		}
	})

	t.Run("conflict over a group", func(t *testing.T) {
		err := g.Set([]string{"brand"}, &token.Token{Value: "#000", Type: token.TypeColor})
		if !errors.Is(err, token.ErrPathConflict) {
			t.Errorf("expected ErrPathConflict, got %v", err)
		}
	})
}

func TestGroup_Walk(t *testing.T) {
	g := token.NewGroup()
	_ = g.Set([]string{"b", "y"}, &token.Token{Value: 2.0, Type: token.TypeNumber})
	_ = g.Set([]string{"a"}, &token.Token{Value: 1.0, Type: token.TypeNumber})
	_ = g.Set([]string{"b", "x"}, &token.Token{Value: 3.0, Type: token.TypeNumber})

	var paths [][]string
	_ = g.Walk(func(path []string, _ *token.Token) error {
		paths = append(paths, path)
		return nil
	})

	expected := [][]string{{"a"}, {"b", "x"}, {"b", "y"}}
	if !reflect.DeepEqual(paths, expected) {
		t.Errorf("Walk paths = %v, want %v", paths, expected)
	}
}

func TestTree_JSON(t *testing.T) {
	input := `{
		"brand": {
			"light": {
				"$description": "light mode",
				"color": {
					"primary": {"$value": "#ff0000", "$type": "color"},
					"alias": {"$value": "{color.primary}", "$type": "reference"}
				}
			}
		}
	}`

	var tree token.Tree
	if err := json.Unmarshal([]byte(input), &tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	group := tree["brand"]["light"]
	if group == nil {
		t.Fatal("expected brand/light group")
	}
	if group.Meta["$description"] != "light mode" {
		t.Errorf("expected group metadata to be kept, got %v", group.Meta)
	}
	if _, ok := group.Children["$description"]; ok {
		t.Error("metadata keys must not become children")
	}

	alias, ok := group.Token([]string{"color", "alias"})
	if !ok {
		t.Fatal("expected alias token")
	}
	if !alias.IsReference() {
		t.Error("expected alias to be a reference")
	}

	out, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var roundTrip, original map[string]any
	_ = json.Unmarshal(out, &roundTrip)
	_ = json.Unmarshal([]byte(input), &original)
	if !reflect.DeepEqual(roundTrip, original) {
		t.Errorf("round trip mismatch:\n got: %v\nwant: %v", roundTrip, original)
	}
}

func TestTree_InvalidShape(t *testing.T) {
	var tree token.Tree
	err := json.Unmarshal([]byte(`{"brand": "nope"}`), &tree)
	if !errors.Is(err, token.ErrInvalidTree) {
		t.Errorf("expected ErrInvalidTree, got %v", err)
	}
}

func TestTreeFromMapSkipping(t *testing.T) {
	m := map[string]any{
		"$schema": "https://example.com/schema.json",
		"bad":     "oops",
		"brand": map[string]any{
			"light": map[string]any{"a": map[string]any{"$value": "#ff0000", "$type": "color"}},
			"dark":  42.0,
		},
	}

	tree, skipped := token.TreeFromMapSkipping(m)
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped entries, got %v", skipped)
	}
	for _, err := range skipped {
		if !errors.Is(err, token.ErrInvalidTree) {
			t.Errorf("expected ErrInvalidTree, got %v", err)
		}
	}
	if _, ok := tree["bad"]; ok {
		t.Error("non-object collection should be skipped")
	}
	if _, ok := tree["brand"]["dark"]; ok {
		t.Error("non-object mode should be skipped")
	}
	if _, ok := tree["brand"]["light"].Token([]string{"a"}); !ok {
		t.Error("valid mode should be kept")
	}

	if _, err := token.TreeFromMap(m); !errors.Is(err, token.ErrInvalidTree) {
		t.Errorf("TreeFromMap should still reject the payload, got %v", err)
	}
}

func TestTree_Clone(t *testing.T) {
	tree := token.Tree{}
	_ = tree.Mode("brand", "light").Set([]string{"primary"}, &token.Token{
		Value: map[string]any{"x": 1.0},
		Type:  "custom",
	})

	clone := tree.Clone()
	tok, _ := clone["brand"]["light"].Token([]string{"primary"})
	tok.Value.(map[string]any)["x"] = 2.0
	tok.Type = "changed"

	orig, _ := tree["brand"]["light"].Token([]string{"primary"})
	if orig.Value.(map[string]any)["x"] != 1.0 {
		t.Error("clone shares value maps with the original")
	}
	if orig.Type != "custom" {
		t.Error("clone shares tokens with the original")
	}
}

func TestTree_Len(t *testing.T) {
	tree := token.Tree{}
	_ = tree.Mode("a", "light").Set([]string{"x"}, &token.Token{Value: 1.0, Type: token.TypeNumber})
	_ = tree.Mode("a", "dark").Set([]string{"x"}, &token.Token{Value: 2.0, Type: token.TypeNumber})
	_ = tree.Mode("b", "default").Set([]string{"y", "z"}, &token.Token{Value: true, Type: token.TypeBoolean})

	if tree.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tree.Len())
	}
}
