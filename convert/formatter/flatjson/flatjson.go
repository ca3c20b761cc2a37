/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package flatjson provides flat key-value JSON formatting for design tokens.
package flatjson

import (
	"encoding/json"

	"bennypowers.dev/varsync/convert/formatter"
	"bennypowers.dev/varsync/token"
)

// Formatter outputs flat key-value JSON.
type Formatter struct{}

// New creates a new flat JSON formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format converts a tree to flat JSON keyed by collection, mode, and path.
func (f *Formatter) Format(tree token.Tree, opts formatter.Options) ([]byte, error) {
	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = "-"
	}

	result := make(map[string]any)
	for _, e := range formatter.Entries(tree) {
		key := formatter.ApplyPrefix(e.Key(delimiter), opts.Prefix, delimiter)
		result[key] = e.Token.Value
	}

	return json.MarshalIndent(result, "", "  ")
}
