/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package render provides shared rendering functions for CLI output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mazznoer/csscolorparser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bennypowers.dev/varsync/resolver"
	"bennypowers.dev/varsync/token"
)

// Row holds computed display values for a single token.
type Row struct {
	Collection  string
	Mode        string
	Name        string   // Dotted path including collection and mode
	Type        string   // Token type or "-"
	Value       string   // Display value (resolved if applicable)
	Description string   // Token description
	RefChain    []string // Resolution chain as dotted paths
	IsColor     bool     // Whether this is a color token with parseable value
	Path        []string // Collection, mode, then the token path
}

// GroupMeta holds metadata extracted from group definitions.
type GroupMeta struct {
	Description string
	Type        string
}

// HierarchyNode represents a node in the token hierarchy tree.
type HierarchyNode struct {
	Name     string
	Path     []string
	Meta     *GroupMeta
	Tokens   []Row
	Children map[string]*HierarchyNode
}

// MarkdownOptions configures markdown output.
type MarkdownOptions struct {
	GroupMeta  map[string]GroupMeta // key: dot-separated path
	IncludeTOC bool
	TOCDepth   int
	ShowLinks  bool
}

// ComputeRows flattens a token tree into display rows, ordered by
// collection, mode, then path. With resolved set, references show their
// final value and the chain that led to it; unresolvable ones are shown as
// written.
func ComputeRows(tree token.Tree, resolved bool, opts resolver.Options) []Row {
	var rows []Row
	for _, c := range tree.CollectionNames() {
		for _, m := range tree.ModeNames(c) {
			group := tree[c][m]
			if group == nil {
				continue
			}
			var idx *resolver.Index
			_ = group.Walk(func(path []string, tok *token.Token) error {
				full := make([]string, 0, len(path)+2)
				full = append(full, c, m)
				full = append(full, path...)
				row := Row{
					Collection:  c,
					Mode:        m,
					Name:        strings.Join(full, "."),
					Type:        tok.Type,
					Value:       DisplayValue(tok.Value),
					Description: tok.Description,
					Path:        full,
				}
				if row.Type == "" {
					row.Type = "-"
				}

				if resolved && tok.IsReference() {
					if idx == nil {
						idx = resolver.BuildModeIndex(tree, c, m, opts)
					}
					if res := idx.Resolve(tok.Value.(string)); res.IsResolved {
						row.Value = DisplayValue(res.Value)
						row.RefChain = res.Chain
					}
				}

				if tok.Type == token.TypeColor && !token.IsReference(row.Value) {
					if _, err := csscolorparser.Parse(row.Value); err == nil {
						row.IsColor = true
					}
				}
				rows = append(rows, row)
				return nil
			})
		}
	}
	return rows
}

// DisplayValue renders a token value as a single line of text.
func DisplayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ColumnWidths calculates the max width needed for each column.
func ColumnWidths(rows []Row) (name, typ, val int) {
	name, typ, val = 4, 4, 5 // minimums for headers
	for _, r := range rows {
		if len(r.Name) > name {
			name = len(r.Name)
		}
		if len(r.Type) > typ {
			typ = len(r.Type)
		}
		if len(r.Value) > val {
			val = len(r.Value)
		}
	}
	return
}

// ColorSwatch returns a 24-bit ANSI color block for the given color value.
func ColorSwatch(value string) string {
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return ""
	}
	r, g, b, _ := c.RGBA255()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m ", r, g, b)
}

// Table renders rows as an aligned table. Swatches are drawn only when
// swatches is set.
func Table(w io.Writer, rows []Row, swatches bool) error {
	if len(rows) == 0 {
		return nil
	}
	nameW, typeW, _ := ColumnWidths(rows)
	for _, r := range rows {
		swatch := ""
		if swatches && r.IsColor {
			swatch = ColorSwatch(r.Value)
		}
		refChain := ""
		if len(r.RefChain) > 0 {
			refChain = " → " + strings.Join(r.RefChain, " → ")
		}
		if _, err := fmt.Fprintf(w, "%-*s  %-*s  %s%s%s\n", nameW, r.Name, typeW, r.Type, swatch, r.Value, refChain); err != nil {
			return err
		}
	}
	return nil
}

// JSON renders rows as an indented JSON array.
func JSON(w io.Writer, rows []Row) error {
	type rowOutput struct {
		Collection  string   `json:"collection"`
		Mode        string   `json:"mode"`
		Name        string   `json:"name"`
		Value       string   `json:"value"`
		Type        string   `json:"type,omitempty"`
		Description string   `json:"description,omitempty"`
		Chain       []string `json:"chain,omitempty"`
	}

	out := make([]rowOutput, 0, len(rows))
	for _, r := range rows {
		typ := r.Type
		if typ == "-" {
			typ = ""
		}
		name := r.Name
		if len(r.Path) > 2 {
			name = strings.Join(r.Path[2:], ".")
		}
		out = append(out, rowOutput{
			Collection:  r.Collection,
			Mode:        r.Mode,
			Name:        name,
			Value:       r.Value,
			Type:        typ,
			Description: r.Description,
			Chain:       r.RefChain,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Names renders just the token names, one per line.
func Names(w io.Writer, rows []Row) error {
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// slugify converts a name to a URL-safe anchor ID.
// e.g., "Color Brand" -> "color-brand"
func slugify(name string) string {
	var result strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' || r == '.' || r == '/' {
			result.WriteRune('-')
		}
	}
	s := result.String()
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// toTitleCase converts a string to Title Case.
func toTitleCase(s string) string {
	caser := cases.Title(language.English)
	return caser.String(s)
}

// BuildHierarchy builds a tree from rows based on their Path.
func BuildHierarchy(rows []Row) *HierarchyNode {
	root := &HierarchyNode{
		Children: make(map[string]*HierarchyNode),
	}

	for _, row := range rows {
		if len(row.Path) == 0 {
			root.Tokens = append(root.Tokens, row)
			continue
		}

		current := root
		for i := 0; i < len(row.Path)-1; i++ {
			name := row.Path[i]
			if current.Children[name] == nil {
				current.Children[name] = &HierarchyNode{
					Name:     name,
					Path:     row.Path[:i+1],
					Children: make(map[string]*HierarchyNode),
				}
			}
			current = current.Children[name]
		}
		current.Tokens = append(current.Tokens, row)
	}

	return root
}

// GroupMetaFromTree collects group $description and $type values, keyed by
// dot-separated path starting with the collection and mode.
func GroupMetaFromTree(tree token.Tree) map[string]GroupMeta {
	result := make(map[string]GroupMeta)
	for _, c := range tree.CollectionNames() {
		for _, m := range tree.ModeNames(c) {
			if group := tree[c][m]; group != nil {
				groupMeta(group, []string{c, m}, result)
			}
		}
	}
	return result
}

func groupMeta(g *token.Group, path []string, result map[string]GroupMeta) {
	meta := GroupMeta{}
	hasMetadata := false
	if desc, ok := g.Meta["$description"].(string); ok {
		meta.Description = desc
		hasMetadata = true
	}
	if typ, ok := g.Meta["$type"].(string); ok {
		meta.Type = typ
		hasMetadata = true
	}
	if hasMetadata {
		result[strings.Join(path, ".")] = meta
	}

	for _, key := range g.Keys() {
		child, ok := g.Children[key].(*token.Group)
		if !ok {
			continue
		}
		// Create a new slice to avoid aliasing the backing array
		childPath := make([]string, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = key
		groupMeta(child, childPath, result)
	}
}

// GenerateTOC generates a markdown table of contents from the hierarchy.
func GenerateTOC(root *HierarchyNode, maxDepth int) string {
	var sb strings.Builder
	sb.WriteString("## Table Of Contents\n\n")
	generateTOCRecursive(root, 0, maxDepth, &sb)
	return sb.String()
}

func generateTOCRecursive(node *HierarchyNode, depth int, maxDepth int, sb *strings.Builder) {
	if depth >= maxDepth {
		return
	}
	for _, name := range childNames(node) {
		child := node.Children[name]
		indent := strings.Repeat("  ", depth)
		slug := slugify(strings.Join(child.Path, "-"))
		fmt.Fprintf(sb, "%s- [%s](#%s)\n", indent, toTitleCase(name), slug)
		generateTOCRecursive(child, depth+1, maxDepth, sb)
	}
}

func childNames(node *HierarchyNode) []string {
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Markdown renders rows as markdown sections, one heading per collection,
// mode, and group.
func Markdown(w io.Writer, rows []Row, opts MarkdownOptions) error {
	if len(rows) == 0 {
		return nil
	}

	hierarchy := BuildHierarchy(rows)
	if opts.GroupMeta != nil {
		injectGroupMeta(hierarchy, opts.GroupMeta)
	}

	var sb strings.Builder
	if opts.IncludeTOC {
		tocDepth := opts.TOCDepth
		if tocDepth <= 0 {
			tocDepth = 3
		}
		sb.WriteString(GenerateTOC(hierarchy, tocDepth))
		sb.WriteString("\n")
	}
	renderHierarchyNode(&sb, hierarchy, 1, opts)

	_, err := io.WriteString(w, sb.String())
	return err
}

func injectGroupMeta(node *HierarchyNode, meta map[string]GroupMeta) {
	if len(node.Path) > 0 {
		if m, ok := meta[strings.Join(node.Path, ".")]; ok {
			node.Meta = &m
		}
	}
	for _, child := range node.Children {
		injectGroupMeta(child, meta)
	}
}

func renderHierarchyNode(sb *strings.Builder, node *HierarchyNode, depth int, opts MarkdownOptions) {
	for _, name := range childNames(node) {
		child := node.Children[name]

		// ## for depth 1, ### for depth 2, etc. (max h6)
		level := min(depth+1, 6)
		slug := slugify(strings.Join(child.Path, "-"))
		fmt.Fprintf(sb, "%s %s {#%s}\n\n", strings.Repeat("#", level), toTitleCase(name), slug)

		if child.Meta != nil && child.Meta.Description != "" {
			sb.WriteString(child.Meta.Description + "\n\n")
		}
		if len(child.Tokens) > 0 {
			renderTokenTable(sb, child.Tokens, opts)
			sb.WriteString("\n")
		}
		renderHierarchyNode(sb, child, depth+1, opts)
	}

	if node.Path == nil && len(node.Tokens) > 0 {
		renderTokenTable(sb, node.Tokens, opts)
		sb.WriteString("\n")
	}
}

type column struct {
	title string
	width int
	cell  func(Row) string
}

func renderTokenTable(sb *strings.Builder, tokens []Row, opts MarkdownOptions) {
	if len(tokens) == 0 {
		return
	}

	nameW, valW, descW, refW := 4, 5, 11, 9 // minimums for headers
	hasRefs := false
	hasDesc := false
	for _, r := range tokens {
		if n := len(formatTokenName(r, opts.ShowLinks)); n > nameW {
			nameW = n
		}
		if len(r.Value) > valW {
			valW = len(r.Value)
		}
		if r.Description != "" {
			hasDesc = true
			descW = max(descW, len(r.Description))
		}
		if len(r.RefChain) > 0 {
			hasRefs = true
			refW = max(refW, len(formatRefChain(r.RefChain, opts.ShowLinks)))
		}
	}

	cols := []column{
		{"Name", nameW, func(r Row) string { return formatTokenName(r, opts.ShowLinks) }},
		{"Value", valW, func(r Row) string { return r.Value }},
	}
	if hasDesc {
		cols = append(cols, column{"Description", descW, func(r Row) string { return r.Description }})
	}
	if hasRefs {
		cols = append(cols, column{"Reference", refW, func(r Row) string { return formatRefChain(r.RefChain, opts.ShowLinks) }})
	}

	line := func(cell func(i int) string) {
		sb.WriteString("|")
		for i, c := range cols {
			fmt.Fprintf(sb, " %-*s |", c.width, cell(i))
		}
		sb.WriteString("\n")
	}
	line(func(i int) string { return cols[i].title })
	sb.WriteString("|")
	for _, c := range cols {
		sb.WriteString("-" + strings.Repeat("-", c.width) + "-|")
	}
	sb.WriteString("\n")
	for _, r := range tokens {
		line(func(i int) string { return cols[i].cell(r) })
	}
}

// formatTokenName renders the last path segment, linked to the full name's
// anchor when showLinks is set.
func formatTokenName(r Row, showLinks bool) string {
	name := r.Name
	if len(r.Path) > 0 {
		name = r.Path[len(r.Path)-1]
	}
	if showLinks {
		return fmt.Sprintf("[%s](#%s)", name, slugify(r.Name))
	}
	return name
}

func formatRefChain(chain []string, showLinks bool) string {
	if len(chain) == 0 {
		return ""
	}
	if showLinks {
		parts := make([]string, len(chain))
		for i, ref := range chain {
			parts[i] = fmt.Sprintf("[%s](#%s)", ref, slugify(ref))
		}
		return strings.Join(parts, " → ")
	}
	return strings.Join(chain, " → ")
}
