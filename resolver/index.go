/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolver builds reference lookup indexes over token trees and
// resolves {path} references against them.
package resolver

import (
	"strings"

	"bennypowers.dev/varsync/codec"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/token"
)

// Entry is an indexed token.
type Entry struct {
	Value        any
	Type         string
	OriginalPath string // full dotted path of the owning token
}

// Index maps every spelling of every token path to its entry.
type Index struct {
	entries map[string]Entry
	// full marks keys that are some token's complete path.
	full map[string]bool
	keys []string
	opts Options
}

// NewIndex creates an empty index.
func NewIndex(opts Options) *Index {
	return &Index{
		entries: make(map[string]Entry),
		full:    make(map[string]bool),
		opts:    opts,
	}
}

// BuildIndex indexes every token in the tree. Paths are relative to their
// mode group; collections and modes are visited in sorted order, so when two
// modes hold the same path the first in that order wins.
func BuildIndex(tree token.Tree) *Index {
	idx := NewIndex(DefaultOptions())
	_ = tree.Walk(func(_, _ string, path []string, tok *token.Token) error {
		idx.Add(path, tok.Value, tok.Type)
		return nil
	})
	return idx
}

// BuildGroupIndex indexes the tokens of a single mode group.
func BuildGroupIndex(g *token.Group) *Index {
	idx := NewIndex(DefaultOptions())
	_ = g.Walk(func(path []string, tok *token.Token) error {
		idx.Add(path, tok.Value, tok.Type)
		return nil
	})
	return idx
}

// BuildIndexFromVariables indexes host variables by name using their value
// for modeID. Alias values are encoded as references to their targets.
func BuildIndexFromVariables(vars []host.Variable, modeID string) *Index {
	idx := NewIndex(DefaultOptions())
	ctx := codec.NewContext(vars)
	for _, v := range vars {
		native, ok := v.ValuesByMode[modeID]
		if !ok {
			continue
		}
		value := codec.Encode(native, v.ResolvedType, ctx)
		idx.Add(token.SplitName(v.Name), value, codec.InferType(v.ResolvedType, value))
	}
	return idx
}

// WithOptions returns the index with new fuzzy matching options.
func (idx *Index) WithOptions(opts Options) *Index {
	idx.opts = opts
	return idx
}

// Add indexes a token at path under every spelling: full dotted, full
// slashed, then dotted and slashed suffixes, then the last segment. A full
// path replaces a suffix entry for the same key; suffixes never replace
// existing entries, so the most specific owner wins.
func (idx *Index) Add(path []string, value any, typ string) {
	if len(path) == 0 {
		return
	}
	entry := Entry{Value: value, Type: typ, OriginalPath: strings.Join(path, ".")}

	idx.putFull(strings.Join(path, "."), entry)
	idx.putFull(strings.Join(path, "/"), entry)
	for i := 1; i < len(path); i++ {
		idx.putSuffix(strings.Join(path[i:], "."), entry)
	}
	for i := 1; i < len(path); i++ {
		idx.putSuffix(strings.Join(path[i:], "/"), entry)
	}
	idx.putSuffix(path[len(path)-1], entry)
}

func (idx *Index) putFull(key string, e Entry) {
	if idx.full[key] {
		return
	}
	if _, exists := idx.entries[key]; !exists {
		idx.keys = append(idx.keys, key)
	}
	idx.entries[key] = e
	idx.full[key] = true
}

func (idx *Index) putSuffix(key string, e Entry) {
	if _, exists := idx.entries[key]; exists {
		return
	}
	idx.entries[key] = e
	idx.keys = append(idx.keys, key)
}

// Lookup returns the entry stored under exactly key.
func (idx *Index) Lookup(key string) (Entry, bool) {
	e, ok := idx.entries[key]
	return e, ok
}

// Keys returns every index key in insertion order.
func (idx *Index) Keys() []string {
	return append([]string(nil), idx.keys...)
}

// Len returns the number of keys.
func (idx *Index) Len() int {
	return len(idx.entries)
}
