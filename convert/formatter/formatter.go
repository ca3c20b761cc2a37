/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package formatter provides the interface and common utilities for token formatters.
package formatter

import (
	"strings"

	"bennypowers.dev/varsync/token"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format converts a token tree to the target format.
	Format(tree token.Tree, opts Options) ([]byte, error)
}

// Options configures formatter behavior.
type Options struct {
	// Prefix is added to output variable names.
	Prefix string

	// Delimiter is the separator for flattened keys.
	// Zero value is empty string; consuming code should set "-" if needed.
	Delimiter string
}

// Entry is a token with its location in a tree.
type Entry struct {
	Collection string
	Mode       string
	Path       []string
	Token      *token.Token
}

// Key joins the entry's collection, mode, and path with delimiter.
func (e Entry) Key(delimiter string) string {
	parts := make([]string, 0, len(e.Path)+2)
	parts = append(parts, e.Collection, e.Mode)
	parts = append(parts, e.Path...)
	return strings.Join(parts, delimiter)
}

// Entries lists every token in tree in collection, mode, then path order.
func Entries(tree token.Tree) []Entry {
	var entries []Entry
	_ = tree.Walk(func(collection, mode string, path []string, tok *token.Token) error {
		entries = append(entries, Entry{
			Collection: collection,
			Mode:       mode,
			Path:       append([]string(nil), path...),
			Token:      tok,
		})
		return nil
	})
	return entries
}

// ApplyPrefix adds a prefix to a name with the given delimiter.
func ApplyPrefix(name, prefix, delimiter string) string {
	if prefix == "" {
		return name
	}
	return prefix + delimiter + name
}

// SetNested places value in m at path, creating intermediate maps.
func SetNested(m map[string]any, path []string, value any) {
	current := m
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}
