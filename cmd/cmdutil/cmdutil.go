/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmdutil holds the environment shared by varsync subcommands.
package cmdutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"bennypowers.dev/varsync/config"
	"bennypowers.dev/varsync/extract"
	"bennypowers.dev/varsync/fs"
	"bennypowers.dev/varsync/load"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// Env is the resolved CLI environment: the project root, its config file,
// and the global flags layered over it.
type Env struct {
	FS     fs.FileSystem
	Root   string
	Config *config.Config
	// Schema is the --schema flag, else the config's schema, else Unknown.
	Schema schema.Version
}

// NewEnv reads the global flags bound in viper and loads the config file
// under the project root.
func NewEnv() (*Env, error) {
	root := viper.GetString("root")
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	filesystem := fs.NewOSFileSystem()
	cfg, err := config.Load(filesystem, abs)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	env := &Env{FS: filesystem, Root: abs, Config: cfg, Schema: cfg.SchemaVersion()}
	if flag := viper.GetString("schema"); flag != "" {
		v, err := schema.FromString(flag)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version: %s", flag)
		}
		env.Schema = v
	}
	return env, nil
}

// LoadOptions returns options for the load package rooted at the project.
// Remote sources are allowed.
func (e *Env) LoadOptions() load.Options {
	return load.Options{
		Root:          e.Root,
		FS:            e.FS,
		SchemaVersion: e.Schema,
		Fetcher:       load.NewHTTPFetcher(load.DefaultMaxSize),
	}
}

// TokenFiles returns args, or the config's files when args is empty.
func (e *Env) TokenFiles(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	files, err := e.Config.ExpandFiles(e.FS, e.Root)
	if err != nil {
		return nil, fmt.Errorf("error expanding config files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files specified and no files found in config")
	}
	return files, nil
}

// LoadTokens loads and merges the given token files, or the configured ones.
func (e *Env) LoadTokens(ctx context.Context, args []string) (token.Tree, error) {
	files, err := e.TokenFiles(args)
	if err != nil {
		return nil, err
	}
	return load.LoadAll(ctx, files, e.LoadOptions())
}

// Tree loads token files, or extracts the configured design document when
// fromDocument is set. Extraction skips reference validation.
func (e *Env) Tree(ctx context.Context, args []string, fromDocument bool) (token.Tree, error) {
	if !fromDocument {
		return e.LoadTokens(ctx, args)
	}
	doc, err := e.OpenDocument()
	if err != nil {
		return nil, err
	}
	opts := e.Config.ExtractOptions()
	opts.SkipValidation = true
	result, err := extract.Extract(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("error extracting %s: %w", doc.Path(), err)
	}
	return result.Tokens, nil
}

// Document returns the --document flag, else the configured document.
func (e *Env) Document() string {
	if doc := viper.GetString("document"); doc != "" {
		return doc
	}
	return e.Config.Document
}

// OpenDocument opens the --document or configured document.
func (e *Env) OpenDocument() (*load.Document, error) {
	return load.OpenDocument(e.Document(), e.LoadOptions())
}

// Path resolves a relative path against the project root.
func (e *Env) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.Root, p)
}

// WriteOutput writes data to path, or to stdout when path is empty. A
// trailing newline is added when missing.
func (e *Env) WriteOutput(path string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	path = e.Path(path)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := e.FS.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory for %s: %w", path, err)
		}
	}
	if err := e.FS.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing to %s: %w", path, err)
	}
	return nil
}
