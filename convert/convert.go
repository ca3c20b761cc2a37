/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package convert provides token tree serialization, filtering, and schema
// conversion.
package convert

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mazznoer/csscolorparser"

	"bennypowers.dev/varsync/parser/common"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// Options configures token serialization behavior.
type Options struct {
	// OutputSchema is the target schema version for output.
	// If Unknown, defaults to Draft.
	OutputSchema schema.Version

	// Flatten collapses each mode's nested groups into delimiter-separated
	// keys.
	Flatten bool

	// Delimiter is the separator for flattened keys (default "-").
	Delimiter string

	// Format specifies the output format (default FormatDTCG).
	Format Format

	// ColorFormat rewrites color values before serialization when set.
	ColorFormat ColorFormat

	// Prefix is added to output variable names.
	Prefix string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		OutputSchema: schema.Draft,
		Delimiter:    "-",
		Format:       FormatDTCG,
	}
}

func (o Options) withDefaults() Options {
	if o.Delimiter == "" {
		o.Delimiter = "-"
	}
	if o.OutputSchema == schema.Unknown {
		o.OutputSchema = schema.Draft
	}
	if o.Format == "" {
		o.Format = FormatDTCG
	}
	return o
}

// Flatten returns a copy of tree in which every mode group is a single level
// whose keys are token paths joined by delimiter.
func Flatten(tree token.Tree, delimiter string) token.Tree {
	if delimiter == "" {
		delimiter = "-"
	}
	out := token.Tree{}
	_ = tree.Walk(func(collection, mode string, path []string, tok *token.Token) error {
		key := strings.Join(path, delimiter)
		// A single segment never conflicts.
		_ = out.Mode(collection, mode).Set([]string{key}, tok.Clone())
		return nil
	})
	for name, modes := range tree {
		for mode := range modes {
			out.Mode(name, mode)
		}
	}
	return out
}

// Filter returns the collections and modes of tree matching the doublestar
// patterns. Empty pattern lists match everything.
func Filter(tree token.Tree, collections, modes []string) (token.Tree, error) {
	for _, p := range append(append([]string{}, collections...), modes...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	out := token.Tree{}
	for _, name := range tree.CollectionNames() {
		if !matchAny(collections, name) {
			continue
		}
		for _, mode := range tree.ModeNames(name) {
			if !matchAny(modes, mode) {
				continue
			}
			g := tree[name][mode]
			if g == nil {
				g = token.NewGroup()
			}
			if out[name] == nil {
				out[name] = make(map[string]*token.Group)
			}
			out[name][mode] = g.Clone()
		}
	}
	return out, nil
}

func matchAny(patterns []string, s string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, s); ok {
			return true
		}
	}
	return false
}

// Serialize converts a token tree to its DTCG map structure in the output
// schema, flattening and reformatting colors first when asked to.
func Serialize(tree token.Tree, opts Options) map[string]any {
	opts = opts.withDefaults()
	if opts.ColorFormat != "" {
		tree = ApplyColorFormat(tree, opts.ColorFormat)
	}
	if opts.Flatten {
		tree = Flatten(tree, opts.Delimiter)
	}

	result := make(map[string]any, len(tree)+1)
	if opts.OutputSchema == schema.V2025_10 {
		result["$schema"] = opts.OutputSchema.URL()
	}
	for name, modes := range tree {
		mm := make(map[string]any, len(modes))
		for mode, g := range modes {
			mm[mode] = serializeGroup(g, opts.OutputSchema)
		}
		result[name] = mm
	}
	return result
}

func serializeGroup(g *token.Group, outputSchema schema.Version) map[string]any {
	result := make(map[string]any)
	if g == nil {
		return result
	}
	for k, v := range g.Meta {
		result[k] = v
	}
	for key, child := range g.Children {
		switch n := child.(type) {
		case *token.Token:
			result[key] = serializeToken(n, outputSchema)
		case *token.Group:
			result[key] = serializeGroup(n, outputSchema)
		}
	}
	return result
}

// serializeToken converts a single token to its DTCG map representation.
func serializeToken(tok *token.Token, outputSchema schema.Version) map[string]any {
	m := tok.ToMap()
	if outputSchema == schema.V2025_10 {
		m["$value"] = convertDraftToV2025(tok)
	}
	return m
}

// convertDraftToV2025 converts Editor's Draft values to v2025_10 format.
func convertDraftToV2025(tok *token.Token) any {
	s, ok := tok.Value.(string)
	if !ok {
		return tok.ToMap()["$value"]
	}
	if path, ok := token.ReferencePath(s); ok {
		return map[string]any{
			"$ref": common.ConvertTokenPathToJSONPointer(path),
		}
	}
	if tok.Type == token.TypeColor {
		return convertStringColorToStructured(s)
	}
	return s
}

// convertStringColorToStructured converts a string color to v2025_10 structured format.
func convertStringColorToStructured(colorStr string) any {
	c, err := csscolorparser.Parse(colorStr)
	if err != nil {
		return colorStr
	}
	result := map[string]any{
		"colorSpace": "srgb",
		"components": []any{c.R, c.G, c.B},
		"alpha":      c.A,
	}
	if strings.HasPrefix(colorStr, "#") {
		result["hex"] = strings.ToLower(colorStr)
	} else {
		result["hex"] = c.HexString()
	}
	return result
}
