/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package importcmd provides the import command for varsync.
package importcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/importer"
	"bennypowers.dev/varsync/session"
	"bennypowers.dev/varsync/validator"
)

// Cmd is the import cobra command.
var Cmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Write token files back into a design document",
	Long: `Import DTCG token files into a design document. Collections and modes are
matched by case-insensitive name and renamed or created as needed, then every
token is written as a variable value. The document is saved afterwards.

Examples:
  # Import the configured token files into the configured document
  varsync import

  # Preview an import without saving
  varsync import --document design.json --dry-run tokens/*.json`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("dry-run", false, "Apply to the document in memory without saving")
	Cmd.Flags().StringSlice("collections", nil, "Only import collections matching these globs")
	Cmd.Flags().Bool("skip-validation", false, "Import even when token files fail validation")
	Cmd.Flags().String("format", "text", "Result format: text, json")
}

// dryRunDocument hides the Save method of the document it wraps.
type dryRunDocument struct {
	host.Document
}

func run(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	collections, _ := cmd.Flags().GetStringSlice("collections")
	skipValidation, _ := cmd.Flags().GetBool("skip-validation")
	format, _ := cmd.Flags().GetString("format")

	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}
	files, err := env.TokenFiles(args)
	if err != nil {
		return err
	}
	if !skipValidation {
		if err := validateFiles(env, files); err != nil {
			return err
		}
	}

	tree, err := env.LoadTokens(cmd.Context(), files)
	if err != nil {
		return err
	}
	doc, err := env.OpenDocument()
	if err != nil {
		return err
	}

	var target host.Document = doc
	if dryRun {
		target = dryRunDocument{doc}
	}
	sess, err := session.New(func(context.Context, string) (host.Document, error) {
		return target, nil
	}, session.Options{Import: importer.Options{Collections: collections}})
	if err != nil {
		return err
	}

	result := sess.Update(cmd.Context(), doc.Path(), tree)
	if err := report(result, format, dryRun, doc.Path()); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("import failed: %s", result.Error)
	}
	return nil
}

func validateFiles(env *cmdutil.Env, files []string) error {
	var failures int
	for _, file := range files {
		if strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://") {
			continue
		}
		data, err := env.FS.ReadFile(env.Path(file))
		if err != nil {
			// load reports unreadable files
			continue
		}
		for _, verr := range validator.ValidatePayload(data, file) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", verr.Error())
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d validation error(s); fix them or pass --skip-validation", failures)
	}
	return nil
}

func report(result importer.Result, format string, dryRun bool, path string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if !result.Success {
		return nil
	}
	fmt.Printf("Created %d, updated %d variables; %d collections and %d modes created, %d renamed.\n",
		result.Created, result.Updated, result.Collections, result.Modes, result.Renamed)
	if dryRun {
		fmt.Printf("Dry run: %s was not saved.\n", path)
	} else {
		fmt.Printf("Saved %s.\n", path)
	}
	return nil
}
