/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package dtcg provides DTCG-compliant JSON formatting for design tokens.
package dtcg

import (
	"encoding/json"

	"bennypowers.dev/varsync/convert/formatter"
	"bennypowers.dev/varsync/token"
)

// Formatter outputs DTCG-compliant JSON.
type Formatter struct {
	// Serialize converts a tree to its DTCG map structure.
	Serialize func(tree token.Tree) map[string]any
}

// New creates a new DTCG formatter with the given serialization function.
func New(serialize func(tree token.Tree) map[string]any) *Formatter {
	return &Formatter{Serialize: serialize}
}

// Format converts a tree to DTCG-compliant JSON.
func (f *Formatter) Format(tree token.Tree, _ formatter.Options) ([]byte, error) {
	var result any = tree.ToMap()
	if f.Serialize != nil {
		result = f.Serialize(tree)
	}
	return json.MarshalIndent(result, "", "  ")
}
