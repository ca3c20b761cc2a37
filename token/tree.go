/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrPathConflict indicates a token and a group compete for the same path.
	ErrPathConflict = errors.New("token path conflict")

	// ErrInvalidTree indicates data that is not shaped collection -> mode -> group.
	ErrInvalidTree = errors.New("invalid token tree")
)

// Tree maps collection name to mode name to the mode's token group.
type Tree map[string]map[string]*Group

// Mode returns the group for collection/mode, creating it if needed.
func (t Tree) Mode(collection, mode string) *Group {
	modes, ok := t[collection]
	if !ok {
		modes = make(map[string]*Group)
		t[collection] = modes
	}
	g, ok := modes[mode]
	if !ok {
		g = NewGroup()
		modes[mode] = g
	}
	return g
}

// CollectionNames returns collection keys in sorted order.
func (t Tree) CollectionNames() []string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ModeNames returns the mode keys of a collection in sorted order.
func (t Tree) ModeNames(collection string) []string {
	modes := t[collection]
	names := make([]string, 0, len(modes))
	for k := range modes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Walk visits every token in collection, mode, then path order.
func (t Tree) Walk(fn func(collection, mode string, path []string, tok *Token) error) error {
	for _, c := range t.CollectionNames() {
		for _, m := range t.ModeNames(c) {
			group := t[c][m]
			if group == nil {
				continue
			}
			err := group.Walk(func(path []string, tok *Token) error {
				return fn(c, m, path, tok)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the total number of tokens across all collections and modes.
func (t Tree) Len() int {
	n := 0
	for _, modes := range t {
		for _, g := range modes {
			if g != nil {
				n += g.Len()
			}
		}
	}
	return n
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	c := make(Tree, len(t))
	for name, modes := range t {
		cm := make(map[string]*Group, len(modes))
		for mode, g := range modes {
			cm[mode] = g.Clone()
		}
		c[name] = cm
	}
	return c
}

// ToMap returns the tree's JSON object form.
func (t Tree) ToMap() map[string]any {
	m := make(map[string]any, len(t))
	for name, modes := range t {
		mm := make(map[string]any, len(modes))
		for mode, g := range modes {
			if g == nil {
				mm[mode] = map[string]any{}
				continue
			}
			mm[mode] = g.ToMap()
		}
		m[name] = mm
	}
	return m
}

// TreeFromMap builds a tree from a decoded JSON object.
// Top-level $-prefixed keys (such as $schema) are ignored.
func TreeFromMap(m map[string]any) (Tree, error) {
	t, skipped := TreeFromMapSkipping(m)
	if len(skipped) > 0 {
		return nil, skipped[0]
	}
	return t, nil
}

// TreeFromMapSkipping builds a tree like TreeFromMap, but leaves out any
// collection or mode whose value is not an object. Each one left out is
// reported as an ErrInvalidTree error, in key order.
func TreeFromMapSkipping(m map[string]any) (Tree, []error) {
	var skipped []error
	t := make(Tree, len(m))
	for _, name := range sortedKeys(m) {
		if len(name) > 0 && name[0] == '$' {
			continue
		}
		modes, ok := m[name].(map[string]any)
		if !ok {
			skipped = append(skipped, fmt.Errorf("%w: collection %q is %T, not an object", ErrInvalidTree, name, m[name]))
			continue
		}
		tm := make(map[string]*Group, len(modes))
		for _, mode := range sortedKeys(modes) {
			if len(mode) > 0 && mode[0] == '$' {
				continue
			}
			groupMap, ok := modes[mode].(map[string]any)
			if !ok {
				skipped = append(skipped, fmt.Errorf("%w: mode %q in collection %q is %T, not an object", ErrInvalidTree, mode, name, modes[mode]))
				continue
			}
			tm[mode] = GroupFromMap(groupMap)
		}
		t[name] = tm
	}
	return t, skipped
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements json.Marshaler.
func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := TreeFromMap(m)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
