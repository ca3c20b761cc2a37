/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for varsync.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/varsync/cmd/extract"
	"bennypowers.dev/varsync/cmd/format"
	"bennypowers.dev/varsync/cmd/importcmd"
	"bennypowers.dev/varsync/cmd/list"
	"bennypowers.dev/varsync/cmd/resolve"
	"bennypowers.dev/varsync/cmd/search"
	"bennypowers.dev/varsync/cmd/serve"
	"bennypowers.dev/varsync/cmd/validate"
	"bennypowers.dev/varsync/cmd/version"
	"bennypowers.dev/varsync/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "varsync",
	Short: "Sync design variables with DTCG design tokens",
	Long: `varsync extracts the variables of a design document into Design Tokens
Community Group token trees, and imports edited token trees back, matching
collections and modes by name and repairing broken references on the way.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(viper.GetBool("verbose"))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("root", ".", "Project root containing .config/varsync.{yaml,json}")
	rootCmd.PersistentFlags().StringP("document", "D", "", "Design document path (default: from config)")
	rootCmd.PersistentFlags().StringP("schema", "s", "", "Force schema version (draft, v2025_10)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	// VARSYNC_ROOT, VARSYNC_DOCUMENT, VARSYNC_PREFIX, ...
	viper.SetEnvPrefix("VARSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"root", "document", "schema", "verbose"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(extract.Cmd)
	rootCmd.AddCommand(importcmd.Cmd)
	rootCmd.AddCommand(format.Cmd)
	rootCmd.AddCommand(resolve.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(list.Cmd)
	rootCmd.AddCommand(search.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
