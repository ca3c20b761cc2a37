/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package serve provides the serve command for varsync.
package serve

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"bennypowers.dev/varsync/cmd/cmdutil"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/importer"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/load"
	"bennypowers.dev/varsync/mcpserver"
	"bennypowers.dev/varsync/session"
	"bennypowers.dev/varsync/watch"
)

// Cmd is the serve cobra command.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extract and update tools over MCP",
	Long: `Start a Model Context Protocol server on stdin/stdout. Clients can extract
the design document as tokens, re-render colors, resolve references, and
write edited tokens back. Logs go to stderr.

Examples:
  varsync serve --document design.json
  varsync serve --watch`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().Int("cache-size", session.DefaultCacheSize, "Number of extracted documents to keep cached")
	Cmd.Flags().Bool("watch", false, "Drop the cached extraction when the default document changes")
}

func run(cmd *cobra.Command, _ []string) error {
	cacheSize, _ := cmd.Flags().GetInt("cache-size")
	watching, _ := cmd.Flags().GetBool("watch")

	// stdout carries the protocol
	logger.SetOutput(os.Stderr)

	env, err := cmdutil.NewEnv()
	if err != nil {
		return err
	}

	loadOpts := env.LoadOptions()
	sess, err := session.New(func(_ context.Context, key string) (host.Document, error) {
		doc, err := load.OpenDocument(key, loadOpts)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}, session.Options{
		Extract:   env.Config.ExtractOptions(),
		Import:    importer.Options{Collections: env.Config.Collections},
		CacheSize: cacheSize,
	})
	if err != nil {
		return err
	}

	document := env.Document()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if watching && document != "" {
		path := env.Path(document)
		go func() {
			err := watch.File(ctx, path, watch.DefaultDebounce, func() {
				logger.Info("%s changed; dropping cached extraction", path)
				sess.Invalidate(document)
			})
			if err != nil {
				logger.Warn("watching %s: %v", path, err)
			}
		}()
	}

	server := mcpserver.NewServer(sess, mcpserver.Options{
		Document: document,
		Resolver: env.Config.ResolverOptions(),
	})
	logger.Info("MCP server listening on stdio")
	return server.Run(ctx)
}
