/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Group represents a group of tokens (can be nested).
type Group struct {
	// Children maps path segments to tokens or nested groups.
	Children map[string]Node

	// Meta holds $-prefixed group metadata ($description, $type, ...).
	Meta map[string]any
}

func (*Group) isNode() {}

// NewGroup creates a new empty token group.
func NewGroup() *Group {
	return &Group{Children: make(map[string]Node)}
}

// Keys returns the child keys in sorted order.
func (g *Group) Keys() []string {
	keys := make([]string, 0, len(g.Children))
	for k := range g.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of leaf tokens in this group and nested groups.
func (g *Group) Len() int {
	n := 0
	_ = g.Walk(func([]string, *Token) error {
		n++
		return nil
	})
	return n
}

// Set places a token at path, creating intermediate groups as needed.
// Returns ErrPathConflict if an intermediate segment is already a token.
func (g *Group) Set(path []string, tok *Token) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrPathConflict)
	}
	current := g
	for i, segment := range path[:len(path)-1] {
		switch child := current.Children[segment].(type) {
		case nil:
			next := NewGroup()
			current.Children[segment] = next
			current = next
		case *Group:
			current = child
		case *Token:
			return fmt.Errorf("%w: %s is a token", ErrPathConflict, strings.Join(path[:i+1], "."))
		}
	}
	last := path[len(path)-1]
	if existing, ok := current.Children[last].(*Group); ok && len(existing.Children) > 0 {
		return fmt.Errorf("%w: %s is a group", ErrPathConflict, strings.Join(path, "."))
	}
	current.Children[last] = tok
	return nil
}

// Get returns the node at path.
func (g *Group) Get(path []string) (Node, bool) {
	var node Node = g
	for _, segment := range path {
		group, ok := node.(*Group)
		if !ok {
			return nil, false
		}
		node, ok = group.Children[segment]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Token returns the token at path, if any.
func (g *Group) Token(path []string) (*Token, bool) {
	node, ok := g.Get(path)
	if !ok {
		return nil, false
	}
	tok, ok := node.(*Token)
	return tok, ok
}

// Walk visits every leaf token in sorted key order.
// Each call receives a freshly allocated path.
func (g *Group) Walk(fn func(path []string, tok *Token) error) error {
	return g.walk(nil, fn)
}

func (g *Group) walk(prefix []string, fn func([]string, *Token) error) error {
	for _, key := range g.Keys() {
		path := make([]string, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = key
		switch child := g.Children[key].(type) {
		case *Token:
			if err := fn(path, child); err != nil {
				return err
			}
		case *Group:
			if err := child.walk(path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	c := NewGroup()
	for k, child := range g.Children {
		switch n := child.(type) {
		case *Token:
			c.Children[k] = n.Clone()
		case *Group:
			c.Children[k] = n.Clone()
		}
	}
	if g.Meta != nil {
		c.Meta = cloneValue(g.Meta).(map[string]any)
	}
	return c
}

// ToMap returns the group's JSON object form.
func (g *Group) ToMap() map[string]any {
	m := make(map[string]any, len(g.Children)+len(g.Meta))
	for k, v := range g.Meta {
		m[k] = cloneValue(v)
	}
	for k, child := range g.Children {
		switch n := child.(type) {
		case *Token:
			m[k] = n.ToMap()
		case *Group:
			m[k] = n.ToMap()
		}
	}
	return m
}

// GroupFromMap builds a group from a decoded JSON object.
// Objects with both $value and $type are tokens; other objects are groups.
// Non-object children are dropped.
func GroupFromMap(m map[string]any) *Group {
	g := NewGroup()
	for k, v := range m {
		if strings.HasPrefix(k, "$") {
			if g.Meta == nil {
				g.Meta = make(map[string]any)
			}
			g.Meta[k] = cloneValue(v)
			continue
		}
		child, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if IsTokenMap(child) {
			g.Children[k] = TokenFromMap(child)
		} else {
			g.Children[k] = GroupFromMap(child)
		}
	}
	return g
}

// MarshalJSON implements json.Marshaler.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Group) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*g = *GroupFromMap(m)
	return nil
}
