/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolve provides the resolve command for varsync.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/resolver"
)

// Cmd is the resolve cobra command.
var Cmd = &cobra.Command{
	Use:   "resolve <reference> [files...]",
	Short: "Resolve a token reference",
	Long: `Resolve a {path} reference and print its final value with the chain of
tokens it passed through. Exact paths are tried first, then slash and dot
spellings, the last segment, and finally fuzzy suffix matching.

Examples:
  varsync resolve '{colors.primary}' tokens.json
  varsync resolve colors.primary --collection brand --mode dark tokens.json

  # Resolve against the configured design document instead of token files
  varsync resolve colors.primary --from-document`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().String("collection", "", "Collection to resolve from first")
	Cmd.Flags().String("mode", "", "Mode to resolve from first")
	Cmd.Flags().Bool("from-document", false, "Resolve against the extracted design document")
	Cmd.Flags().String("format", "text", "Output format: text, json")
}

type output struct {
	Reference    string   `json:"reference"`
	Resolved     bool     `json:"resolved"`
	Value        any      `json:"value,omitempty"`
	Type         string   `json:"type,omitempty"`
	ResolvedFrom string   `json:"resolvedFrom,omitempty"`
	Chain        []string `json:"chain,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	ref := args[0]
	collection, _ := cmd.Flags().GetString("collection")
	mode, _ := cmd.Flags().GetString("mode")
	fromDocument, _ := cmd.Flags().GetBool("from-document")
	format, _ := cmd.Flags().GetString("format")

	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}

	tree, err := env.Tree(cmd.Context(), args[1:], fromDocument)
	if err != nil {
		return err
	}

	res := resolver.ResolveIn(tree, strings.ToLower(collection), mode, ref, env.Config.ResolverOptions())
	out := output{
		Reference: ref,
		Resolved:  res.IsResolved,
		Type:      res.Type,
		Chain:     res.Chain,
	}
	if res.IsResolved {
		out.Value = res.Value
		out.ResolvedFrom = res.ResolvedFrom
	} else if res.Err != nil {
		out.Error = res.Err.Error()
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printText(out)
	}

	if !out.Resolved {
		return fmt.Errorf("could not resolve %s", ref)
	}
	return nil
}

func printText(out output) {
	if !out.Resolved {
		fmt.Fprintf(os.Stderr, "%s: %s\n", out.Reference, out.Error)
		return
	}
	fmt.Printf("%v\n", out.Value)
	if out.Type != "" {
		fmt.Printf("  type: %s\n", out.Type)
	}
	if len(out.Chain) > 0 {
		fmt.Printf("  chain: %s\n", strings.Join(out.Chain, " → "))
	}
}
