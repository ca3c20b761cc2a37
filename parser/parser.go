/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package parser reads token trees from JSON, JSON with comments, and YAML.
package parser

import (
	"bennypowers.dev/varsync/fs"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// Options configures token parsing.
type Options struct {
	// SchemaVersion overrides auto-detection.
	SchemaVersion schema.Version
}

// Parser parses token tree files.
type Parser interface {
	// Parse parses token data into a tree of collection -> mode -> group.
	Parse(data []byte, opts Options) (token.Tree, error)

	// ParseFile reads and parses a token file.
	ParseFile(filesystem fs.FileSystem, path string, opts Options) (token.Tree, error)
}
