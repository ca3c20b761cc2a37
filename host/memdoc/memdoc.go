/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package memdoc provides an in-memory host document.
// It backs the CLI (persisted as a local-variables JSON file) and the tests.
package memdoc

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/schema"
)

// DefaultModeName is the name of the mode a new collection starts with.
const DefaultModeName = "Mode 1"

// Document implements host.Document in memory.
// Collections and variables keep creation order.
type Document struct {
	mu          sync.RWMutex
	collections []*host.Collection
	variables   []*host.Variable
	newID       func(kind string) string
}

var _ host.Document = (*Document)(nil)

// New creates an empty document.
func New() *Document {
	return &Document{
		newID: func(kind string) string {
			return kind + ":" + uuid.NewString()
		},
	}
}

// WithIDs replaces the id generator. Tests use it for stable ids.
func (d *Document) WithIDs(gen func(kind string) string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.newID = gen
	return d
}

// Collections implements host.Document.
func (d *Document) Collections(ctx context.Context) ([]host.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]host.Collection, 0, len(d.collections))
	for _, c := range d.collections {
		result = append(result, cloneCollection(c))
	}
	return result, nil
}

// Variables implements host.Document.
func (d *Document) Variables(ctx context.Context) ([]host.Variable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]host.Variable, 0, len(d.variables))
	for _, v := range d.variables {
		result = append(result, cloneVariable(v))
	}
	return result, nil
}

// CreateCollection implements host.Document.
func (d *Document) CreateCollection(ctx context.Context, name string) (host.Collection, error) {
	if err := ctx.Err(); err != nil {
		return host.Collection{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	c := &host.Collection{
		ID:    d.newID("VariableCollectionId"),
		Name:  name,
		Modes: []host.Mode{{ID: d.newID("ModeId"), Name: DefaultModeName}},
	}
	d.collections = append(d.collections, c)
	return cloneCollection(c), nil
}

// RenameCollection implements host.Document.
func (d *Document) RenameCollection(ctx context.Context, collectionID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.collectionLocked(collectionID)
	if c == nil {
		return fmt.Errorf("%w: no collection %s", schema.ErrHost, collectionID)
	}
	c.Name = name
	return nil
}

// AddMode implements host.Document.
func (d *Document) AddMode(ctx context.Context, collectionID, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.collectionLocked(collectionID)
	if c == nil {
		return "", fmt.Errorf("%w: no collection %s", schema.ErrHost, collectionID)
	}
	id := d.newID("ModeId")
	c.Modes = append(c.Modes, host.Mode{ID: id, Name: name})
	return id, nil
}

// RenameMode implements host.Document.
func (d *Document) RenameMode(ctx context.Context, collectionID, modeID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.collectionLocked(collectionID)
	if c == nil {
		return fmt.Errorf("%w: no collection %s", schema.ErrHost, collectionID)
	}
	for i := range c.Modes {
		if c.Modes[i].ID == modeID {
			c.Modes[i].Name = name
			return nil
		}
	}
	return fmt.Errorf("%w: no mode %s in collection %s", schema.ErrHost, modeID, c.Name)
}

// CreateVariable implements host.Document.
// Names are unique within a collection.
func (d *Document) CreateVariable(ctx context.Context, name, collectionID string, typ host.NativeType) (host.Variable, error) {
	if err := ctx.Err(); err != nil {
		return host.Variable{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.collectionLocked(collectionID) == nil {
		return host.Variable{}, fmt.Errorf("%w: no collection %s", schema.ErrHost, collectionID)
	}
	switch typ {
	case host.TypeColor, host.TypeFloat, host.TypeString, host.TypeBoolean:
	default:
		return host.Variable{}, fmt.Errorf("%w: unsupported variable type %q", schema.ErrHost, typ)
	}
	for _, v := range d.variables {
		if v.CollectionID == collectionID && v.Name == name {
			return host.Variable{}, fmt.Errorf("%w: variable %q already exists", schema.ErrHost, name)
		}
	}

	v := &host.Variable{
		ID:           d.newID("VariableID"),
		Name:         name,
		CollectionID: collectionID,
		ResolvedType: typ,
		ValuesByMode: make(map[string]any),
	}
	d.variables = append(d.variables, v)
	return cloneVariable(v), nil
}

// SetValueForMode implements host.Document.
// Values must match the variable's type; aliases must name an existing variable.
func (d *Document) SetValueForMode(ctx context.Context, variableID, modeID string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.variableLocked(variableID)
	if v == nil {
		return fmt.Errorf("%w: no variable %s", schema.ErrHost, variableID)
	}
	c := d.collectionLocked(v.CollectionID)
	if c == nil || !slices.ContainsFunc(c.Modes, func(m host.Mode) bool { return m.ID == modeID }) {
		return fmt.Errorf("%w: mode %s does not belong to the collection of %q", schema.ErrHost, modeID, v.Name)
	}
	if err := d.checkValueLocked(v, value); err != nil {
		return err
	}
	v.ValuesByMode[modeID] = cloneValue(value)
	return nil
}

// FindVariableByName implements host.Document.
func (d *Document) FindVariableByName(ctx context.Context, name string) (host.Variable, bool, error) {
	if err := ctx.Err(); err != nil {
		return host.Variable{}, false, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, v := range d.variables {
		if v.Name == name {
			return cloneVariable(v), true, nil
		}
	}
	return host.Variable{}, false, nil
}

func (d *Document) checkValueLocked(v *host.Variable, value any) error {
	if alias, ok := value.(host.Alias); ok {
		if alias.ID == v.ID {
			return fmt.Errorf("%w: %q cannot alias itself", schema.ErrHost, v.Name)
		}
		if d.variableLocked(alias.ID) == nil {
			return fmt.Errorf("%w: alias target %s does not exist", schema.ErrHost, alias.ID)
		}
		return nil
	}

	ok := false
	switch v.ResolvedType {
	case host.TypeColor:
		_, ok = value.(host.Color)
	case host.TypeFloat:
		_, ok = value.(float64)
	case host.TypeBoolean:
		_, ok = value.(bool)
	case host.TypeString:
		_, ok = value.(string)
	}
	if !ok {
		return fmt.Errorf("%w: %T is not a valid %s value for %q", schema.ErrHost, value, v.ResolvedType, v.Name)
	}
	return nil
}

func (d *Document) collectionLocked(id string) *host.Collection {
	for _, c := range d.collections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (d *Document) variableLocked(id string) *host.Variable {
	for _, v := range d.variables {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func cloneCollection(c *host.Collection) host.Collection {
	return host.Collection{
		ID:    c.ID,
		Name:  c.Name,
		Modes: slices.Clone(c.Modes),
	}
}

func cloneVariable(v *host.Variable) host.Variable {
	c := *v
	c.ValuesByMode = make(map[string]any, len(v.ValuesByMode))
	for k, val := range v.ValuesByMode {
		c.ValuesByMode[k] = cloneValue(val)
	}
	return c
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := maps.Clone(x)
		for k, val := range m {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := slices.Clone(x)
		for i, val := range s {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}
