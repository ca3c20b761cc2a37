/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package search provides the search command for varsync.
package search

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/cmd/render"
	"bennypowers.dev/varsync/convert"
)

// Cmd is the search cobra command.
var Cmd = &cobra.Command{
	Use:   "search <query> [files...]",
	Short: "Search tokens by name, value, or type",
	Long: `Search design tokens by name, value, type, or description with optional
regex support. Searches the configured token files, the given files, or the
extracted design document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("name", false, "Search names only")
	Cmd.Flags().Bool("value", false, "Search values only")
	Cmd.Flags().String("type", "", "Filter by token type")
	Cmd.Flags().Bool("regex", false, "Query is a regex")
	Cmd.Flags().StringSlice("collections", nil, "Only search collections matching these globs")
	Cmd.Flags().StringSlice("modes", nil, "Only search modes matching these globs")
	Cmd.Flags().Bool("from-document", false, "Search the extracted design document instead of token files")
	Cmd.Flags().String("format", "table", "Output format: table, json, names")
}

// query describes what a row must match.
type query struct {
	text      string
	pattern   *regexp.Regexp
	nameOnly  bool
	valueOnly bool
	typ       string
}

func run(cmd *cobra.Command, args []string) error {
	q := query{text: args[0]}
	q.nameOnly, _ = cmd.Flags().GetBool("name")
	q.valueOnly, _ = cmd.Flags().GetBool("value")
	q.typ, _ = cmd.Flags().GetString("type")
	useRegex, _ := cmd.Flags().GetBool("regex")
	collections, _ := cmd.Flags().GetStringSlice("collections")
	modes, _ := cmd.Flags().GetStringSlice("modes")
	fromDocument, _ := cmd.Flags().GetBool("from-document")
	format, _ := cmd.Flags().GetString("format")

	if useRegex {
		pattern, err := regexp.Compile(q.text)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		q.pattern = pattern
	}

	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}
	tree, err := env.Tree(cmd.Context(), args[1:], fromDocument)
	if err != nil {
		return err
	}
	tree, err = convert.Filter(tree, collections, modes)
	if err != nil {
		return err
	}

	var matches []render.Row
	for _, r := range render.ComputeRows(tree, false, env.Config.ResolverOptions()) {
		if q.matches(r) {
			matches = append(matches, r)
		}
	}

	switch format {
	case "json":
		return render.JSON(os.Stdout, matches)
	case "names":
		return render.Names(os.Stdout, matches)
	default:
		return render.Table(os.Stdout, matches, false)
	}
}

func (q query) matches(r render.Row) bool {
	if q.typ != "" && r.Type != q.typ {
		return false
	}
	switch {
	case q.nameOnly:
		return matchString(r.Name, q.text, q.pattern)
	case q.valueOnly:
		return matchString(r.Value, q.text, q.pattern)
	default:
		return matchString(r.Name, q.text, q.pattern) ||
			matchString(r.Value, q.text, q.pattern) ||
			matchString(r.Type, q.text, q.pattern) ||
			matchString(r.Description, q.text, q.pattern)
	}
}

func matchString(s, query string, pattern *regexp.Regexp) bool {
	if pattern != nil {
		return pattern.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(query))
}
