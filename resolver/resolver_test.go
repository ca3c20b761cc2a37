/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver_test

import (
	"errors"
	"io"
	"os"
	"reflect"
	"testing"

	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/resolver"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// treeOf builds a single collection/mode tree from dotted paths.
func treeOf(t *testing.T, tokens map[string]*token.Token) token.Tree {
	t.Helper()
	tree := token.Tree{}
	g := tree.Mode("brand", "light")
	for path, tok := range tokens {
		if err := g.Set(token.SplitPath(path), tok); err != nil {
			t.Fatalf("Set(%s): %v", path, err)
		}
	}
	return tree
}

func TestIndexKeys(t *testing.T) {
	idx := resolver.NewIndex(resolver.DefaultOptions())
	idx.Add([]string{"colors", "brand", "main"}, "#fff", "color")

	want := []string{
		"colors.brand.main",
		"colors/brand/main",
		"brand.main",
		"main",
		"brand/main",
	}
	if got := idx.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestIndexMostSpecificOwnerWins(t *testing.T) {
	idx := resolver.NewIndex(resolver.DefaultOptions())
	idx.Add([]string{"a", "main"}, "suffix owner", "string")
	idx.Add([]string{"main"}, "full owner", "string")
	idx.Add([]string{"b", "main"}, "later suffix", "string")

	e, ok := idx.Lookup("main")
	if !ok || e.Value != "full owner" {
		t.Errorf("Lookup(main) = %+v, want full owner", e)
	}
}

func TestResolveExactKey(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"a.b.c": {Value: "#123456", Type: "color"},
	})
	res := resolver.BuildIndex(tree).Resolve("{a.b.c}")
	if !res.IsResolved || res.Value != "#123456" || res.Type != "color" {
		t.Errorf("Resolve = %+v", res)
	}
	if res.ResolvedFrom != "a.b.c" || res.OriginalReference != "{a.b.c}" {
		t.Errorf("ResolvedFrom/OriginalReference = %q/%q", res.ResolvedFrom, res.OriginalReference)
	}
}

func TestResolveStrategies(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"colors.brand.main.300": {Value: "#aa0000", Type: "color"},
		"space.Gap":             {Value: 8.0, Type: "number"},
	})
	idx := resolver.BuildIndex(tree)

	tests := []struct {
		name string
		ref  string
		want any
	}{
		{"suffix key", "{main.300}", "#aa0000"},
		{"slashed", "{colors/brand/main/300}", "#aa0000"},
		{"mixed prefix", "{theme.main.300}", "#aa0000"},
		{"case-insensitive fuzzy", "{SPACE.gap}", 8.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := idx.Resolve(tt.ref)
			if !res.IsResolved {
				t.Fatalf("Resolve(%s) unresolved: %v", tt.ref, res.Err)
			}
			if res.Value != tt.want {
				t.Errorf("Resolve(%s) = %v, want %v", tt.ref, res.Value, tt.want)
			}
		})
	}
}

func TestResolveChain(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"colors.brand.primary": {Value: "#112233", Type: "color"},
		"semantic.action":      {Value: "{colors.brand.primary}", Type: "reference"},
		"button.bg":            {Value: "{semantic.action}", Type: "reference"},
	})
	res := resolver.BuildIndex(tree).Resolve("{button.bg}")
	if !res.IsResolved || res.Value != "#112233" {
		t.Fatalf("Resolve = %+v", res)
	}
	want := []string{"button.bg", "semantic.action", "colors.brand.primary"}
	if !reflect.DeepEqual(res.Chain, want) {
		t.Errorf("Chain = %v, want %v", res.Chain, want)
	}
}

func TestResolveCircular(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"a": {Value: "{b}", Type: "reference"},
		"b": {Value: "{a}", Type: "reference"},
	})
	res := resolver.BuildIndex(tree).Resolve("{a}")
	if res.IsResolved {
		t.Fatal("circular reference should not resolve")
	}
	if res.Value != "{a}" || res.Type != token.TypeReference {
		t.Errorf("unresolved value = %v (%s)", res.Value, res.Type)
	}
	if !errors.Is(res.Err, schema.ErrCircularReference) {
		t.Errorf("Err = %v, want ErrCircularReference", res.Err)
	}
}

func TestResolveMissing(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"colors.red": {Value: "#f00", Type: "color"},
	})
	res := resolver.BuildIndex(tree).Resolve("{space.lg}")
	if res.IsResolved || res.Value != "{space.lg}" || res.Type != "reference" {
		t.Errorf("Resolve = %+v", res)
	}
	if !errors.Is(res.Err, schema.ErrUnresolvedReference) {
		t.Errorf("Err = %v", res.Err)
	}
}

func TestFuzzyMatch(t *testing.T) {
	idx := resolver.NewIndex(resolver.DefaultOptions())
	idx.Add([]string{"palette", "Blue", "500"}, "#00f", "color")
	idx.Add([]string{"other", "500"}, "#555", "color")

	m, ok := idx.FuzzyMatch("theme.blue.500")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.SegmentOnly || m.Key != "Blue.500" {
		t.Errorf("FuzzyMatch = %+v, want suffix match on Blue.500", m)
	}

	m, ok = idx.FuzzyMatch("nothing.500")
	if !ok || !m.SegmentOnly || m.Score != 0.5 {
		t.Errorf("FuzzyMatch = %+v, want segment-only match", m)
	}

	strict := resolver.NewIndex(resolver.Options{}).WithOptions(resolver.Options{SegmentScore: 0})
	strict.Add([]string{"x", "500"}, "#555", "color")
	if _, ok := strict.FuzzyMatch("nothing.500"); ok {
		t.Error("segment-only matches should be disabled")
	}
}

func TestBuildIndexFromVariables(t *testing.T) {
	vars := []host.Variable{
		{ID: "v1", Name: "colors/red", ResolvedType: host.TypeColor, ValuesByMode: map[string]any{"m1": host.Color{R: 1, A: 1}}},
		{ID: "v2", Name: "colors/primary", ResolvedType: host.TypeColor, ValuesByMode: map[string]any{"m1": host.Alias{ID: "v1"}}},
		{ID: "v3", Name: "other", ResolvedType: host.TypeString, ValuesByMode: map[string]any{"m2": "x"}},
	}
	idx := resolver.BuildIndexFromVariables(vars, "m1")
	res := idx.Resolve("{colors.primary}")
	if !res.IsResolved || res.Value != "#ff0000" {
		t.Errorf("Resolve = %+v", res)
	}
	if _, ok := idx.Lookup("other"); ok {
		t.Error("variables without a value for the mode should be skipped")
	}
}

func TestValidateAndFixReferences(t *testing.T) {
	tree := token.Tree{}
	light := tree.Mode("brand", "light")
	must(t, light.Set([]string{"colors", "brand", "primary"}, &token.Token{Value: "#112233", Type: "color"}))
	must(t, light.Set([]string{"ok"}, &token.Token{Value: "{colors.brand.primary}", Type: "reference"}))
	must(t, light.Set([]string{"fixable"}, &token.Token{Value: "{brand.primary}", Type: "reference"}))
	must(t, light.Set([]string{"broken"}, &token.Token{Value: "{nowhere.at.all}", Type: "reference"}))
	other := tree.Mode("core", "default")
	must(t, other.Set([]string{"cross"}, &token.Token{Value: "{colors.brand.primary}", Type: "color"}))

	aliasPaths := map[string]string{"v1": "colors.brand.primary"}
	out, problems, corrections := resolver.ValidateAndFixReferences(tree, aliasPaths)

	if len(problems) != 1 || problems[0].Path != "broken" || problems[0].Reference != "{nowhere.at.all}" {
		t.Errorf("problems = %+v", problems)
	}
	want := []resolver.Correction{{
		Collection: "brand", Mode: "light", Path: "fixable",
		From: "{brand.primary}", To: "{colors.brand.primary}",
	}}
	if !reflect.DeepEqual(corrections, want) {
		t.Errorf("corrections = %+v, want %+v", corrections, want)
	}

	fixed, _ := out["brand"]["light"].Token([]string{"fixable"})
	if fixed.Value != "{colors.brand.primary}" || fixed.Type != "color" {
		t.Errorf("fixed token = %+v", fixed)
	}
	original, _ := tree["brand"]["light"].Token([]string{"fixable"})
	if original.Value != "{brand.primary}" {
		t.Error("input tree was modified")
	}
	broken, _ := out["brand"]["light"].Token([]string{"broken"})
	if broken.Value != "{nowhere.at.all}" {
		t.Error("unfixable reference should be left in place")
	}
}

func TestAnnotateAndResolveValues(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"colors.brand.primary": {Value: "#112233", Type: "color"},
		"alias":                {Value: "{colors.brand.primary}", Type: "reference"},
	})

	annotated := resolver.Annotate(tree)
	tok, _ := annotated["brand"]["light"].Token([]string{"alias"})
	if tok.Value != "{colors.brand.primary}" || tok.ResolvedFrom != "colors.brand.primary" || tok.OriginalValue != "{colors.brand.primary}" {
		t.Errorf("annotated = %+v", tok)
	}

	resolved := resolver.ResolveValues(tree)
	tok, _ = resolved["brand"]["light"].Token([]string{"alias"})
	if tok.Value != "#112233" || tok.Type != "color" {
		t.Errorf("resolved = %+v", tok)
	}
}

func TestDependencyGraph(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"a": {Value: "1", Type: "string"},
		"b": {Value: "{a}", Type: "reference"},
		"c": {Value: "{b}", Type: "reference"},
	})
	graph := resolver.BuildDependencyGraph(tree)
	if graph.HasCycle() {
		t.Fatal("expected no cycle")
	}
	order, err := graph.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"brand.light.a", "brand.light.b", "brand.light.c"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("TopologicalSort = %v, want %v", order, want)
	}
	if deps := graph.Dependents("brand.light.a"); !reflect.DeepEqual(deps, []string{"brand.light.b"}) {
		t.Errorf("Dependents(a) = %v", deps)
	}
}

func TestDependencyGraphCycle(t *testing.T) {
	tree := treeOf(t, map[string]*token.Token{
		"a": {Value: "{c}", Type: "reference"},
		"b": {Value: "{a}", Type: "reference"},
		"c": {Value: "{b}", Type: "reference"},
	})
	graph := resolver.BuildDependencyGraph(tree)
	cycle := graph.FindCycle()
	if len(cycle) != 4 || cycle[0] != cycle[3] {
		t.Errorf("FindCycle = %v", cycle)
	}
	if _, err := graph.TopologicalSort(); !errors.Is(err, schema.ErrCircularReference) {
		t.Errorf("expected ErrCircularReference, got %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestResolveIn(t *testing.T) {
	tree := token.Tree{}
	light := tree.Mode("brand", "light")
	dark := tree.Mode("brand", "dark")
	prims := tree.Mode("primitives", "default")
	for _, set := range []struct {
		g    *token.Group
		path string
		tok  *token.Token
	}{
		{light, "bg", &token.Token{Value: "#ffffff", Type: token.TypeColor}},
		{dark, "bg", &token.Token{Value: "#000000", Type: token.TypeColor}},
		{light, "accent", &token.Token{Value: "{colors.blue}", Type: token.TypeColor}},
		{prims, "colors.blue", &token.Token{Value: "#0000ff", Type: token.TypeColor}},
	} {
		if err := set.g.Set(token.SplitPath(set.path), set.tok); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name       string
		collection string
		mode       string
		ref        string
		want       any
	}{
		{"local light", "brand", "light", "{bg}", "#ffffff"},
		{"local dark", "brand", "dark", "bg", "#000000"},
		{"falls back to tree", "brand", "light", "{accent}", "#0000ff"},
		{"no mode uses tree order", "", "", "{bg}", "#000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolver.ResolveIn(tree, tt.collection, tt.mode, tt.ref, resolver.DefaultOptions())
			if !res.IsResolved || res.Value != tt.want {
				t.Errorf("ResolveIn() = %+v, want %v", res, tt.want)
			}
		})
	}
}
