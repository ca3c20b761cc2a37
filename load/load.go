/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package load provides a high-level API for loading token trees and host
// documents from local paths or URLs.
package load

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"bennypowers.dev/varsync/config"
	vsfs "bennypowers.dev/varsync/fs"
	"bennypowers.dev/varsync/host/memdoc"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/parser"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// ErrRemoteDisabled indicates a URL source was given without a Fetcher.
var ErrRemoteDisabled = errors.New("remote sources require a fetcher")

// Options configures how tokens are loaded.
type Options struct {
	// Root is the directory relative paths and the config file are resolved
	// against. Defaults to the working directory.
	Root string

	// FS is the filesystem to use. Defaults to OS filesystem if nil.
	FS vsfs.FileSystem

	// SchemaVersion overrides auto-detection from file content.
	// Takes precedence over config file if set.
	SchemaVersion schema.Version

	// Fetcher enables http:// and https:// sources. Nil means local only.
	Fetcher Fetcher

	// FetchTimeout is the maximum time to wait for a network fetch.
	// Defaults to DefaultTimeout when zero. Has no effect if Fetcher is nil.
	FetchTimeout time.Duration
}

type env struct {
	fs   vsfs.FileSystem
	root string
	cfg  *config.Config
	opts Options
}

func newEnv(opts Options) (*env, error) {
	filesystem := opts.FS
	if filesystem == nil {
		filesystem = vsfs.NewOSFileSystem()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path: %w", err)
		}
		root = abs
	}
	return &env{
		fs:   filesystem,
		root: root,
		cfg:  config.LoadOrDefault(filesystem, root),
		opts: opts,
	}, nil
}

// Load loads one token tree from a local path or an http(s) URL.
//
// The schema version is taken from Options, then the config file's per-file
// or global setting, then detected from the content.
func Load(ctx context.Context, source string, opts Options) (token.Tree, error) {
	e, err := newEnv(opts)
	if err != nil {
		return nil, err
	}
	return e.load(ctx, source)
}

// LoadAll loads and merges every source in order. A token in a later source
// replaces one at the same collection, mode, and path.
func LoadAll(ctx context.Context, sources []string, opts Options) (token.Tree, error) {
	e, err := newEnv(opts)
	if err != nil {
		return nil, err
	}
	merged := token.Tree{}
	for _, source := range sources {
		tree, err := e.load(ctx, source)
		if err != nil {
			return nil, err
		}
		if err := Merge(merged, tree); err != nil {
			return nil, fmt.Errorf("merging %s: %w", source, err)
		}
	}
	return merged, nil
}

func (e *env) load(ctx context.Context, source string) (token.Tree, error) {
	path := e.resolvePath(source)
	content, err := e.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", source, err)
	}

	popts := e.cfg.OptionsForFile(source)
	if e.opts.SchemaVersion != schema.Unknown {
		popts.SchemaVersion = e.opts.SchemaVersion
	}
	tree, err := parser.NewJSONParser().Parse(content, popts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", source, err)
	}
	logger.Debug("loaded %d tokens from %s", tree.Len(), source)
	return tree, nil
}

func (e *env) resolvePath(source string) string {
	if isURL(source) || filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(e.root, source)
}

func (e *env) read(ctx context.Context, path string) ([]byte, error) {
	if !isURL(path) {
		return e.fs.ReadFile(path)
	}
	if e.opts.Fetcher == nil {
		return nil, ErrRemoteDisabled
	}
	timeout := e.opts.FetchTimeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.opts.Fetcher.Fetch(ctx, path)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Merge copies every token of src into dst.
func Merge(dst, src token.Tree) error {
	for _, name := range src.CollectionNames() {
		for _, mode := range src.ModeNames(name) {
			dst.Mode(name, mode)
		}
	}
	return src.Walk(func(collection, mode string, path []string, tok *token.Token) error {
		return dst.Mode(collection, mode).Set(append([]string(nil), path...), tok.Clone())
	})
}

// Document is a host document backed by a file.
type Document struct {
	*memdoc.Document
	fs   vsfs.FileSystem
	path string
}

// OpenDocument reads the document at path. A missing file yields an empty
// document that is created on the first Save.
func OpenDocument(path string, opts Options) (*Document, error) {
	e, err := newEnv(opts)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = e.cfg.Document
	}
	if path == "" {
		return nil, errors.New("no document given and none configured")
	}
	path = e.resolvePath(path)

	doc, err := memdoc.LoadFile(e.fs, path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("%s does not exist; starting an empty document", path)
		doc = memdoc.New()
	default:
		return nil, err
	}
	return &Document{Document: doc, fs: e.fs, path: path}, nil
}

// Path returns the document's file path.
func (d *Document) Path() string { return d.path }

// Save writes the document back to its file.
func (d *Document) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.SaveFile(d.fs, d.path)
}
