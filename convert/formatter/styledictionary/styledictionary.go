/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package styledictionary formats tokens as Style Dictionary source JSON.
package styledictionary

import (
	"encoding/json"

	"bennypowers.dev/varsync/convert/formatter"
	"bennypowers.dev/varsync/token"
)

// Formatter outputs nested JSON with value, type, and comment keys.
type Formatter struct{}

// New creates a new Style Dictionary formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format converts a tree to Style Dictionary JSON. References stay in
// {a.b} form, which Style Dictionary resolves itself.
func (f *Formatter) Format(tree token.Tree, opts formatter.Options) ([]byte, error) {
	result := make(map[string]any)
	for _, e := range formatter.Entries(tree) {
		leaf := map[string]any{
			"value": e.Token.Value,
			"type":  e.Token.Type,
		}
		if e.Token.Description != "" {
			leaf["comment"] = e.Token.Description
		}
		path := make([]string, 0, len(e.Path)+3)
		if opts.Prefix != "" {
			path = append(path, opts.Prefix)
		}
		path = append(path, e.Collection, e.Mode)
		path = append(path, e.Path...)
		formatter.SetNested(result, path, leaf)
	}
	return json.MarshalIndent(result, "", "  ")
}
