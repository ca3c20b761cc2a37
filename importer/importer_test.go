/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package importer_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/varsync/extract"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/host/memdoc"
	"bennypowers.dev/varsync/importer"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/testutil"
	"bennypowers.dev/varsync/token"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func collectionNames(t *testing.T, doc host.Document) []string {
	t.Helper()
	cols, err := doc.Collections(context.Background())
	require.NoError(t, err)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func findVariable(t *testing.T, doc host.Document, name string) host.Variable {
	t.Helper()
	v, ok, err := doc.FindVariableByName(context.Background(), name)
	require.NoError(t, err)
	require.True(t, ok, "variable %q not found", name)
	return v
}

func TestApplyRenamesSoleOrphanCollection(t *testing.T) {
	b := testutil.NewBuilder(t)
	b.Collection("A", "default")
	b.Collection("B", "default")

	tree := map[string]any{
		"A": map[string]any{"default": map[string]any{}},
		"C": map[string]any{"default": map[string]any{}},
	}
	res := importer.Apply(context.Background(), tree, b.Doc, importer.Options{})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 1, res.Renamed)
	assert.Equal(t, 0, res.Collections)
	assert.Equal(t, []string{"A", "C"}, collectionNames(t, b.Doc))
}

func TestApplyCreatesWhenCountsDiffer(t *testing.T) {
	b := testutil.NewBuilder(t)
	b.Collection("A", "default")
	b.Collection("B", "default")

	tree := map[string]any{
		"A": map[string]any{"default": map[string]any{}},
		"C": map[string]any{"default": map[string]any{}},
		"D": map[string]any{"default": map[string]any{}},
	}
	res := importer.Apply(context.Background(), tree, b.Doc, importer.Options{})

	require.True(t, res.Success)
	assert.Equal(t, 0, res.Renamed)
	assert.Equal(t, 2, res.Collections)
	assert.Equal(t, []string{"A", "B", "C", "D"}, collectionNames(t, b.Doc))
}

func TestApplyRenamesSoleOrphanMode(t *testing.T) {
	b := testutil.NewBuilder(t)
	c := b.Collection("brand", "light", "dark")

	tree := map[string]any{
		"Brand": map[string]any{
			"light": map[string]any{},
			"dim":   map[string]any{},
		},
	}
	res := importer.Apply(context.Background(), tree, b.Doc, importer.Options{})
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Renamed)
	assert.Equal(t, 0, res.Modes)

	cols, err := b.Doc.Collections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []host.Mode{{ID: c.Modes[0].ID, Name: "light"}, {ID: c.Modes[1].ID, Name: "dim"}}, cols[0].Modes)
}

func TestApplyNewCollectionAdoptsDefaultMode(t *testing.T) {
	doc := memdoc.New()
	tree := token.Tree{}
	require.NoError(t, tree.Mode("brand", "light").Set([]string{"red"}, &token.Token{Value: "#ff0000", Type: "color"}))
	require.NoError(t, tree.Mode("brand", "dark").Set([]string{"red"}, &token.Token{Value: "#880000", Type: "color"}))

	res := importer.Apply(context.Background(), tree, doc, importer.Options{})
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Collections)
	assert.Equal(t, 2, res.Modes)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated, "writing a second mode to a new variable is not an update")

	cols, err := doc.Collections(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 1)
	require.Len(t, cols[0].Modes, 2)
	assert.Equal(t, "dark", cols[0].Modes[0].Name)
	assert.Equal(t, "light", cols[0].Modes[1].Name)
}

func TestApplyOrdersReferencesAfterTargets(t *testing.T) {
	doc := memdoc.New()
	tree := map[string]any{
		"brand": map[string]any{
			"light": map[string]any{
				"a": map[string]any{
					"primary": map[string]any{"$value": "{b.red}", "$type": "color"},
				},
				"b": map[string]any{
					"red": map[string]any{"$value": "#ff0000", "$type": "color"},
				},
				"c": map[string]any{
					"d": map[string]any{
						"zz": map[string]any{"$value": "{b.red}", "$type": "reference"},
					},
				},
			},
		},
	}
	res := importer.Apply(context.Background(), tree, doc, importer.Options{})
	require.True(t, res.Success)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 3, res.Created)

	red := findVariable(t, doc, "b/red")
	primary := findVariable(t, doc, "a/primary")
	zz := findVariable(t, doc, "c/d/zz")
	assert.Equal(t, host.TypeColor, zz.ResolvedType, "reference takes its target's type")
	for _, v := range []host.Variable{primary, zz} {
		for _, value := range v.ValuesByMode {
			assert.Equal(t, host.Alias{ID: red.ID}, value)
		}
	}
}

func TestApplyUnresolvedReferenceIsWarning(t *testing.T) {
	doc := memdoc.New()
	tree := map[string]any{
		"brand": map[string]any{
			"light": map[string]any{
				"broken": map[string]any{"$value": "{nowhere}", "$type": "color"},
				"ok":     map[string]any{"$value": 4.0, "$type": "number"},
			},
			"dark": map[string]any{
				"broken": map[string]any{"$value": "{nowhere}", "$type": "color"},
			},
		},
	}
	res := importer.Apply(context.Background(), tree, doc, importer.Options{})
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Created)
	assert.Len(t, res.Warnings, 1, "identical warnings are deduplicated")

	_, ok, err := doc.FindVariableByName(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, ok, "no partial write for an unresolved reference")
}

func TestApplyInvalidPayload(t *testing.T) {
	b := testutil.NewBuilder(t)
	b.Collection("A", "default")

	for _, payload := range []any{"a string", 42, []any{1}, nil, []byte(`[1, 2]`)} {
		res := importer.Apply(context.Background(), payload, b.Doc, importer.Options{})
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	}
	assert.Equal(t, []string{"A"}, collectionNames(t, b.Doc))
}

func TestApplySkipsMalformedCollections(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{
			name: "object",
			payload: map[string]any{
				"good": map[string]any{"light": map[string]any{
					"a": map[string]any{"$value": "x", "$type": "string"},
				}},
				"bad": "oops",
			},
		},
		{
			name:    "bytes",
			payload: []byte(`{"good": {"light": {"a": {"$value": "x", "$type": "string"}}, "dark": 3}, "bad": "oops"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memdoc.New()
			res := importer.Apply(context.Background(), tt.payload, doc, importer.Options{})
			require.True(t, res.Success, res.Error)
			require.NotEmpty(t, res.Warnings)
			assert.Contains(t, res.Warnings[0], `"bad"`)
			assert.Equal(t, []string{"good"}, collectionNames(t, doc))
			assert.Equal(t, 1, res.Created)
			findVariable(t, doc, "a")
		})
	}
}

func TestApplyHostFailure(t *testing.T) {
	doc := testutil.FailingDocument{Err: errors.New("disconnected")}
	res := importer.Apply(context.Background(), token.Tree{}, doc, importer.Options{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "disconnected")
}

func TestApplyUpdatesExistingVariables(t *testing.T) {
	doc := testutil.LoadDocument(t, "documents/brand.json")
	extracted, err := extract.Extract(context.Background(), doc, extract.Options{})
	require.NoError(t, err)

	res := importer.Apply(context.Background(), extracted.Tokens, doc, importer.Options{})
	require.True(t, res.Success)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 6, res.Updated, "each existing variable counts once across its modes")
	assert.Equal(t, 0, res.Collections)
	assert.Equal(t, 0, res.Renamed)

	again, err := extract.Extract(context.Background(), doc, extract.Options{})
	require.NoError(t, err)
	assert.Equal(t, extracted.Tokens, again.Tokens)
}

func TestApplyCollectionFilter(t *testing.T) {
	doc := memdoc.New()
	tree := token.Tree{}
	require.NoError(t, tree.Mode("brand", "light").Set([]string{"x"}, &token.Token{Value: "a", Type: "string"}))
	require.NoError(t, tree.Mode("other", "light").Set([]string{"y"}, &token.Token{Value: "b", Type: "string"}))

	res := importer.Apply(context.Background(), tree, doc, importer.Options{Collections: []string{"br*"}})
	require.True(t, res.Success)
	assert.Equal(t, []string{"brand"}, collectionNames(t, doc))
}

func TestExtractImportRoundTripKeepsEmptyObject(t *testing.T) {
	b := testutil.NewBuilder(t)
	c := b.Collection("Brand", "light", "dark")
	red := b.Variable(c, "colors/red", host.TypeColor, host.Color{R: 1, A: 1})
	b.Variable(c, "colors/primary", host.TypeColor, host.Alias{ID: red.ID})
	b.Variable(c, "space/gap", host.TypeFloat, 8.0)
	b.Variable(c, "meta/empty", host.TypeString, "placeholder")

	source := &emptyObjectDoc{Document: b.Doc, name: "meta/empty"}
	first, err := extract.Extract(context.Background(), source, extract.Options{})
	require.NoError(t, err)
	empty, ok := first.Tokens["brand"]["light"].Token([]string{"meta", "empty"})
	require.True(t, ok)
	require.Equal(t, "{}", empty.Value)

	target := memdoc.New()
	res := importer.Apply(context.Background(), first.Tokens, target, importer.Options{})
	require.True(t, res.Success)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 4, res.Created)

	v := findVariable(t, target, "meta/empty")
	assert.Equal(t, host.TypeString, v.ResolvedType)
	for _, value := range v.ValuesByMode {
		assert.Equal(t, "{}", value)
	}

	second, err := extract.Extract(context.Background(), target, extract.Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Tokens, second.Tokens)
}

// emptyObjectDoc reports an empty object as the value of one variable.
type emptyObjectDoc struct {
	host.Document
	name string
}

func (d *emptyObjectDoc) Variables(ctx context.Context) ([]host.Variable, error) {
	vars, err := d.Document.Variables(ctx)
	if err != nil {
		return nil, err
	}
	for i, v := range vars {
		if v.Name == d.name {
			for mode := range v.ValuesByMode {
				vars[i].ValuesByMode[mode] = map[string]any{}
			}
		}
	}
	return vars, nil
}

func TestApplyWriteFailureIsWarning(t *testing.T) {
	tests := []struct {
		name        string
		createFails string
		setFails    string
		created     int
	}{
		{name: "create variable", createFails: "b", created: 2},
		{name: "set value", setFails: "b", created: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &rejectingDoc{
				Document:    memdoc.New(),
				createFails: tt.createFails,
				setFails:    tt.setFails,
			}
			tree := token.Tree{}
			for _, name := range []string{"a", "b", "c"} {
				require.NoError(t, tree.Mode("brand", "light").Set([]string{name}, &token.Token{Value: name + "!", Type: "string"}))
			}

			res := importer.Apply(context.Background(), tree, doc, importer.Options{})
			require.True(t, res.Success, res.Error)
			require.Len(t, res.Warnings, 1)
			assert.Contains(t, res.Warnings[0], "brand/b")
			assert.Contains(t, res.Warnings[0], "rejected")
			assert.Equal(t, tt.created, res.Created)

			for _, name := range []string{"a", "c"} {
				v := findVariable(t, doc, name)
				require.Len(t, v.ValuesByMode, 1)
				for _, value := range v.ValuesByMode {
					assert.Equal(t, name+"!", value)
				}
			}
		})
	}
}

func TestApplyResolvesVariablesMissingFromListing(t *testing.T) {
	b := testutil.NewBuilder(t)
	c := b.Collection("Brand", "light")
	red := b.Variable(c, "colors/red", host.TypeColor, host.Color{R: 1, A: 1})
	doc := &hiddenVariableDoc{Document: b.Doc, name: "colors/red"}

	tree := token.Tree{}
	require.NoError(t, tree.Mode("brand", "light").Set([]string{"primary"}, &token.Token{Value: "{colors.red}", Type: "reference"}))

	res := importer.Apply(context.Background(), tree, doc, importer.Options{})
	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, res.Created)

	primary := findVariable(t, b.Doc, "primary")
	assert.Equal(t, host.TypeColor, primary.ResolvedType)
	assert.Equal(t, host.Alias{ID: red.ID}, primary.ValuesByMode[c.Modes[0].ID])
}

var errRejected = errors.New("rejected by host")

// rejectingDoc fails writes for one variable name.
type rejectingDoc struct {
	host.Document
	createFails string
	setFails    string
}

func (d *rejectingDoc) CreateVariable(ctx context.Context, name, collectionID string, typ host.NativeType) (host.Variable, error) {
	if name == d.createFails {
		return host.Variable{}, errRejected
	}
	return d.Document.CreateVariable(ctx, name, collectionID, typ)
}

func (d *rejectingDoc) SetValueForMode(ctx context.Context, variableID, modeID string, value any) error {
	vars, err := d.Document.Variables(ctx)
	if err != nil {
		return err
	}
	for _, v := range vars {
		if v.ID == variableID && v.Name == d.setFails {
			return errRejected
		}
	}
	return d.Document.SetValueForMode(ctx, variableID, modeID, value)
}

// hiddenVariableDoc leaves one variable out of its listing, as when another
// client creates it after the listing was taken.
type hiddenVariableDoc struct {
	host.Document
	name string
}

func (d *hiddenVariableDoc) Variables(ctx context.Context) ([]host.Variable, error) {
	vars, err := d.Document.Variables(ctx)
	if err != nil {
		return nil, err
	}
	out := vars[:0]
	for _, v := range vars {
		if v.Name != d.name {
			out = append(out, v)
		}
	}
	return out, nil
}
