/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package list provides the list command for varsync.
package list

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/cmd/render"
	"bennypowers.dev/varsync/convert"
	"bennypowers.dev/varsync/token"
)

// Cmd is the list cobra command.
var Cmd = &cobra.Command{
	Use:   "list [files...]",
	Short: "List tokens from token files or a design document",
	Long: `List every token with its collection, mode, type, and value, with optional
filtering and formatting.

Examples:
  varsync list tokens.json
  varsync list --collections brand --modes dark --resolved tokens.json
  varsync list --from-document --format markdown --toc > TOKENS.md`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().String("type", "", "Filter by token type")
	Cmd.Flags().String("group", "", "Filter by group path, e.g. colors.brand")
	Cmd.Flags().StringSlice("collections", nil, "Only list collections matching these globs")
	Cmd.Flags().StringSlice("modes", nil, "Only list modes matching these globs")
	Cmd.Flags().Bool("resolved", false, "Show resolved values")
	Cmd.Flags().Bool("from-document", false, "List the extracted design document instead of token files")
	Cmd.Flags().String("format", "table", "Output format: table, json, markdown, names")
	Cmd.Flags().Bool("swatches", true, "Draw color swatches in table output")
	Cmd.Flags().Bool("toc", false, "Include a table of contents in markdown output")
	Cmd.Flags().Bool("links", false, "Link token names in markdown output")
}

func run(cmd *cobra.Command, args []string) error {
	typeFilter, _ := cmd.Flags().GetString("type")
	group, _ := cmd.Flags().GetString("group")
	collections, _ := cmd.Flags().GetStringSlice("collections")
	modes, _ := cmd.Flags().GetStringSlice("modes")
	resolved, _ := cmd.Flags().GetBool("resolved")
	fromDocument, _ := cmd.Flags().GetBool("from-document")
	format, _ := cmd.Flags().GetString("format")

	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}
	tree, err := env.Tree(cmd.Context(), args, fromDocument)
	if err != nil {
		return err
	}

	// Resolve against the whole tree, then filter what is shown.
	rows := render.ComputeRows(tree, resolved, env.Config.ResolverOptions())
	shown, err := convert.Filter(tree, collections, modes)
	if err != nil {
		return err
	}
	rows = filterRows(rows, shown, typeFilter, group)

	switch format {
	case "json":
		return render.JSON(os.Stdout, rows)
	case "names":
		return render.Names(os.Stdout, rows)
	case "markdown", "md":
		toc, _ := cmd.Flags().GetBool("toc")
		links, _ := cmd.Flags().GetBool("links")
		return render.Markdown(os.Stdout, rows, render.MarkdownOptions{
			GroupMeta:  render.GroupMetaFromTree(tree),
			IncludeTOC: toc,
			ShowLinks:  links,
		})
	case "table":
		swatches, _ := cmd.Flags().GetBool("swatches")
		return render.Table(os.Stdout, rows, swatches)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// filterRows keeps rows whose mode survives in shown, whose type matches
// typ, and whose token path starts with the dotted group prefix. Empty
// filters match everything.
func filterRows(rows []render.Row, shown token.Tree, typ, group string) []render.Row {
	var prefix []string
	if group != "" {
		prefix = token.SplitPath(group)
	}
	filtered := make([]render.Row, 0, len(rows))
	for _, r := range rows {
		if shown != nil && shown[r.Collection][r.Mode] == nil {
			continue
		}
		if typ != "" && r.Type != typ {
			continue
		}
		if !hasPrefix(r.Path, prefix) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// hasPrefix reports whether the token part of path, after collection and
// mode, starts with prefix.
func hasPrefix(path, prefix []string) bool {
	if len(prefix) == 0 {
		return true
	}
	if len(path) < 2+len(prefix) {
		return false
	}
	return strings.Join(path[2:2+len(prefix)], ".") == strings.Join(prefix, ".")
}
