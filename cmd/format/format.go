/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package format provides the format command for varsync.
package format

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/convert"
	"bennypowers.dev/varsync/load"
	"bennypowers.dev/varsync/resolver"
	"bennypowers.dev/varsync/token"
)

// Cmd is the format cobra command.
var Cmd = &cobra.Command{
	Use:   "format [files...]",
	Short: "Re-render token files",
	Long: `Combine token files and re-render them: rewrite color values, filter
collections and modes, flatten, or convert between output formats. The design
document is never touched.

Examples:
  # Render all colors as rgba()
  varsync format --color-format rgba tokens.json

  # Only the dark modes of brand collections, as Style Dictionary JSON
  varsync format --collections 'brand*' --modes dark --format sd tokens/*.yaml

  # Replace references with their resolved values
  varsync format --resolved -o resolved.json tokens.json

  # Rewrite files in place with 2025.10 structured colors
  varsync format --in-place --schema v2025.10 tokens/*.json`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	Cmd.Flags().StringP("format", "f", "", "Output format: "+strings.Join(convert.ValidFormats(), ", "))
	Cmd.Flags().String("color-format", "", "Color format: "+strings.Join(convert.ValidColorFormats(), ", "))
	Cmd.Flags().Bool("flatten", false, "Flatten to shallow structure (dtcg format only)")
	Cmd.Flags().StringP("delimiter", "d", "", "Delimiter for flattened keys")
	Cmd.Flags().StringSlice("collections", nil, "Only keep collections matching these globs")
	Cmd.Flags().StringSlice("modes", nil, "Only keep modes matching these globs")
	Cmd.Flags().String("prefix", "", "Prefix for flat JSON and Style Dictionary output")
	Cmd.Flags().Bool("resolved", false, "Replace references with their resolved values")
	Cmd.Flags().BoolP("in-place", "i", false, "Overwrite input files with re-rendered DTCG output")
}

func run(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag("prefix", cmd.Flags().Lookup("prefix"))
	output, _ := cmd.Flags().GetString("output")
	inPlace, _ := cmd.Flags().GetBool("in-place")
	flatten, _ := cmd.Flags().GetBool("flatten")
	resolved, _ := cmd.Flags().GetBool("resolved")
	collections, _ := cmd.Flags().GetStringSlice("collections")
	modes, _ := cmd.Flags().GetStringSlice("modes")

	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}
	opts, err := options(cmd, env)
	if err != nil {
		return err
	}

	// Validate flag combinations
	if inPlace && output != "" {
		return fmt.Errorf("--in-place and --output are mutually exclusive")
	}
	if inPlace && flatten {
		return fmt.Errorf("--in-place and --flatten are mutually exclusive")
	}
	if inPlace && opts.Format != convert.FormatDTCG {
		return fmt.Errorf("--in-place only supports dtcg format")
	}

	if len(collections) == 0 {
		collections = env.Config.Collections
	}
	if len(modes) == 0 {
		modes = env.Config.Modes
	}
	transform := func(tree token.Tree) (token.Tree, error) {
		tree, err := convert.Filter(tree, collections, modes)
		if err != nil {
			return nil, err
		}
		if resolved {
			tree = resolver.ResolveValues(tree)
		}
		return tree, nil
	}

	files, err := env.TokenFiles(args)
	if err != nil {
		return err
	}
	if inPlace {
		return runInPlace(cmd, env, files, opts, transform)
	}

	tree, err := load.LoadAll(cmd.Context(), files, env.LoadOptions())
	if err != nil {
		return err
	}
	tree, err = transform(tree)
	if err != nil {
		return err
	}
	out, err := convert.FormatTree(tree, opts.Format, opts)
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	return env.WriteOutput(output, out)
}

func options(cmd *cobra.Command, env *cmdutil.Env) (convert.Options, error) {
	opts := env.Config.ConvertOptions()
	opts.OutputSchema = env.Schema

	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format, err := convert.ParseFormat(f)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	if f, _ := cmd.Flags().GetString("color-format"); f != "" {
		cf, err := convert.ParseColorFormat(f)
		if err != nil {
			return opts, err
		}
		opts.ColorFormat = cf
	}
	if cmd.Flags().Changed("flatten") {
		opts.Flatten, _ = cmd.Flags().GetBool("flatten")
	}
	if d, _ := cmd.Flags().GetString("delimiter"); d != "" {
		opts.Delimiter = d
	}
	if prefix := viper.GetString("prefix"); prefix != "" {
		opts.Prefix = prefix
	}
	return opts, nil
}

func runInPlace(
	cmd *cobra.Command,
	env *cmdutil.Env,
	files []string,
	opts convert.Options,
	transform func(token.Tree) (token.Tree, error),
) error {
	opts.Flatten = false
	var failures int
	for _, file := range files {
		if strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://") {
			fmt.Fprintf(os.Stderr, "Skipping remote %s: cannot rewrite in place\n", file)
			continue
		}
		tree, err := load.Load(cmd.Context(), file, env.LoadOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			failures++
			continue
		}
		tree, err = transform(tree)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error filtering %s: %v\n", file, err)
			failures++
			continue
		}
		out, err := convert.FormatTree(tree, convert.FormatDTCG, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error serializing %s: %v\n", file, err)
			failures++
			continue
		}
		if err := env.WriteOutput(file, out); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			failures++
			continue
		}
	}

	if failures > 0 {
		return fmt.Errorf("failed to format %d file(s)", failures)
	}
	return nil
}
