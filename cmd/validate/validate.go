/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validate provides the validate command for varsync.
package validate

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/load"
	"bennypowers.dev/varsync/parser"
	"bennypowers.dev/varsync/resolver"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/validator"
)

// Cmd is the validate cobra command.
var Cmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate design token files",
	Long: `Validate design token files before import: structure, value types, schema
consistency, circular references, and references to missing tokens.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("strict", false, "Fail on unresolved references")
	Cmd.Flags().Bool("quiet", false, "Only output errors")
}

func run(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	strict, _ := cmd.Flags().GetBool("strict")

	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}
	files, err := env.TokenFiles(args)
	if err != nil {
		return err
	}

	hasErrors := false
	for _, file := range files {
		if !quiet {
			fmt.Printf("Validating %s...\n", file)
		}
		ok, err := validateFile(cmd, env, file, strict, quiet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		if !ok {
			hasErrors = true
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}
	if !quiet {
		fmt.Println("All files valid.")
	}
	return nil
}

func validateFile(cmd *cobra.Command, env *cmdutil.Env, file string, strict, quiet bool) (bool, error) {
	opts := env.LoadOptions()
	var data []byte
	var err error
	if isURL(file) {
		data, err = opts.Fetcher.Fetch(cmd.Context(), file)
	} else {
		data, err = env.FS.ReadFile(env.Path(file))
	}
	if err != nil {
		return false, fmt.Errorf("reading: %w", err)
	}

	errs := validator.ValidatePayload(data, file)
	if decoded, err := parser.Decode(data); err == nil {
		version := schema.Detect(decoded, env.Schema)
		errs = append(errs, validator.ValidateConsistency(data, version, file)...)
	}
	for _, verr := range errs {
		fmt.Fprintf(os.Stderr, "%s\n", verr.Error())
	}
	if len(errs) > 0 {
		return false, nil
	}

	tree, err := load.Load(cmd.Context(), file, opts)
	if err != nil {
		return false, err
	}

	graph := resolver.BuildDependencyGraph(tree)
	if cycle := graph.FindCycle(); cycle != nil {
		fmt.Fprintf(os.Stderr, "Circular reference in %s: %v\n", file, cycle)
		return false, nil
	}

	// References may point into other files, so these are warnings unless strict.
	_, problems, _ := resolver.ValidateAndFixReferences(tree, nil)
	for _, p := range problems {
		if strict {
			fmt.Fprintf(os.Stderr, "Unresolved: %s\n", p)
		} else if !quiet {
			fmt.Fprintf(os.Stderr, "Warning: unresolved %s\n", p)
		}
	}
	if strict && len(problems) > 0 {
		return false, nil
	}

	if !quiet {
		fmt.Printf("  %d tokens\n", tree.Len())
	}
	return true, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
