/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package extract provides the extract command for varsync.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/convert"
	extractlib "bennypowers.dev/varsync/extract"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/load"
	"bennypowers.dev/varsync/watch"
)

// Cmd is the extract cobra command.
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract document variables as design tokens",
	Long: `Extract every variable of a design document into a DTCG token tree keyed by
collection, then mode, and write it in the requested format.

Output Formats:
  dtcg              DTCG-compliant JSON (default)
  json              Flat key-value JSON
  style-dictionary  Style Dictionary value/type/comment JSON

Examples:
  # Extract the configured document to stdout
  varsync extract

  # Extract one collection as flat JSON with rgba colors
  varsync extract --document design.json --collections brand --format json --color-format rgba

  # Re-extract whenever the document changes
  varsync extract -o tokens.json --watch`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	Cmd.Flags().StringP("format", "f", "", "Output format: "+strings.Join(convert.ValidFormats(), ", "))
	Cmd.Flags().String("color-format", "", "Color format: "+strings.Join(convert.ValidColorFormats(), ", "))
	Cmd.Flags().Bool("flatten", false, "Flatten to shallow structure (dtcg format only)")
	Cmd.Flags().StringP("delimiter", "d", "", "Delimiter for flattened keys")
	Cmd.Flags().StringSlice("collections", nil, "Only extract collections matching these globs")
	Cmd.Flags().StringSlice("modes", nil, "Only output modes matching these globs")
	Cmd.Flags().String("prefix", "", "Prefix for flat JSON and Style Dictionary output")
	Cmd.Flags().Bool("watch", false, "Re-extract when the document changes")
	Cmd.Flags().Bool("skip-validation", false, "Skip the reference validation pass")
}

func run(cmd *cobra.Command, _ []string) error {
	_ = viper.BindPFlag("prefix", cmd.Flags().Lookup("prefix"))
	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}
	opts, err := options(cmd, env)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	watching, _ := cmd.Flags().GetBool("watch")

	doc, err := env.OpenDocument()
	if err != nil {
		return err
	}

	if err := once(cmd.Context(), env, doc, opts, output); err != nil {
		return err
	}
	if !watching {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	fmt.Fprintf(os.Stderr, "Watching %s for changes...\n", doc.Path())
	return watch.File(ctx, doc.Path(), watch.DefaultDebounce, func() {
		reopened, err := load.OpenDocument(doc.Path(), env.LoadOptions())
		if err != nil {
			logger.Warn("reopening %s: %v", doc.Path(), err)
			return
		}
		if err := once(ctx, env, reopened, opts, output); err != nil {
			logger.Warn("%v", err)
		}
	})
}

type extractOptions struct {
	extract extractlib.Options
	convert convert.Options
	modes   []string
}

func options(cmd *cobra.Command, env *cmdutil.Env) (extractOptions, error) {
	cfg := env.Config
	opts := extractOptions{
		extract: cfg.ExtractOptions(),
		convert: cfg.ConvertOptions(),
		modes:   cfg.Modes,
	}
	opts.convert.OutputSchema = env.Schema

	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format, err := convert.ParseFormat(f)
		if err != nil {
			return opts, err
		}
		opts.convert.Format = format
	}
	if f, _ := cmd.Flags().GetString("color-format"); f != "" {
		cf, err := convert.ParseColorFormat(f)
		if err != nil {
			return opts, err
		}
		opts.convert.ColorFormat = cf
	}
	if cmd.Flags().Changed("flatten") {
		opts.convert.Flatten, _ = cmd.Flags().GetBool("flatten")
	}
	if d, _ := cmd.Flags().GetString("delimiter"); d != "" {
		opts.convert.Delimiter = d
	}
	if c, _ := cmd.Flags().GetStringSlice("collections"); len(c) > 0 {
		opts.extract.Collections = c
	}
	if m, _ := cmd.Flags().GetStringSlice("modes"); len(m) > 0 {
		opts.modes = m
	}
	opts.extract.SkipValidation, _ = cmd.Flags().GetBool("skip-validation")

	// Get prefix from viper (CLI flag or VARSYNC_PREFIX), else the config file
	if prefix := viper.GetString("prefix"); prefix != "" {
		opts.convert.Prefix = prefix
	}
	return opts, nil
}

func once(ctx context.Context, env *cmdutil.Env, doc *load.Document, opts extractOptions, output string) error {
	result, err := extractlib.Extract(ctx, doc, opts.extract)
	if err != nil {
		return fmt.Errorf("error extracting %s: %w", doc.Path(), err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	for _, c := range result.Corrections {
		fmt.Fprintf(os.Stderr, "Corrected %s.%s %s: %s -> %s\n", c.Collection, c.Mode, c.Path, c.From, c.To)
	}
	for _, p := range result.ValidationProblems {
		fmt.Fprintf(os.Stderr, "Unresolved: %s\n", p)
	}

	tree, err := convert.Filter(result.Tokens, nil, opts.modes)
	if err != nil {
		return err
	}
	out, err := convert.FormatTree(tree, opts.convert.Format, opts.convert)
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	if err := env.WriteOutput(output, out); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d tokens to %s\n", tree.Len(), output)
	}
	return nil
}
