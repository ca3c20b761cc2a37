/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package memdoc

import (
	"encoding/json"
	"fmt"
	"sort"

	"bennypowers.dev/varsync/fs"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/parser"
	"bennypowers.dev/varsync/schema"
)

// aliasType marks an alias value in the local-variables file format.
const aliasType = "VARIABLE_ALIAS"

type fileCollection struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Modes         []host.Mode `json:"modes"`
	DefaultModeID string      `json:"defaultModeId,omitempty"`
	VariableIDs   []string    `json:"variableIds"`
}

type fileVariable struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CollectionID string          `json:"variableCollectionId"`
	ResolvedType host.NativeType `json:"resolvedType"`
	ValuesByMode map[string]any  `json:"valuesByMode"`
}

type fileDocument struct {
	VariableCollections map[string]fileCollection `json:"variableCollections"`
	Variables           map[string]fileVariable   `json:"variables"`
}

// Load decodes a document from its local-variables form. JSON (with
// comments) and YAML are accepted, optionally wrapped in a "meta" object.
// Collections and variables are ordered by id.
func Load(data []byte) (*Document, error) {
	raw, err := parser.Decode(data)
	if err != nil {
		return nil, err
	}
	if meta, ok := raw["meta"].(map[string]any); ok {
		raw = meta
	}

	d := New()
	collections, _ := raw["variableCollections"].(map[string]any)
	for _, id := range sortedKeys(collections) {
		c, err := collectionFromMap(id, collections[id])
		if err != nil {
			return nil, err
		}
		d.collections = append(d.collections, c)
	}

	variables, _ := raw["variables"].(map[string]any)
	for _, id := range sortedKeys(variables) {
		v, err := variableFromMap(id, variables[id])
		if err != nil {
			return nil, err
		}
		if d.collectionLocked(v.CollectionID) == nil {
			return nil, fmt.Errorf("%w: variable %q references missing collection %s", schema.ErrHost, v.Name, v.CollectionID)
		}
		d.variables = append(d.variables, v)
	}
	return d, nil
}

// Marshal encodes the document in its local-variables JSON form.
func (d *Document) Marshal() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc := fileDocument{
		VariableCollections: make(map[string]fileCollection, len(d.collections)),
		Variables:           make(map[string]fileVariable, len(d.variables)),
	}
	for _, c := range d.collections {
		fc := fileCollection{
			ID:          c.ID,
			Name:        c.Name,
			Modes:       c.Modes,
			VariableIDs: []string{},
		}
		if len(c.Modes) > 0 {
			fc.DefaultModeID = c.Modes[0].ID
		}
		for _, v := range d.variables {
			if v.CollectionID == c.ID {
				fc.VariableIDs = append(fc.VariableIDs, v.ID)
			}
		}
		doc.VariableCollections[c.ID] = fc
	}
	for _, v := range d.variables {
		values := make(map[string]any, len(v.ValuesByMode))
		for modeID, value := range v.ValuesByMode {
			values[modeID] = valueToFile(value)
		}
		doc.Variables[v.ID] = fileVariable{
			ID:           v.ID,
			Name:         v.Name,
			CollectionID: v.CollectionID,
			ResolvedType: v.ResolvedType,
			ValuesByMode: values,
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// LoadFile reads a document file.
func LoadFile(filesystem fs.FileSystem, path string) (*Document, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	d, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", path, err)
	}
	return d, nil
}

// SaveFile writes the document to path.
func (d *Document) SaveFile(filesystem fs.FileSystem, path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := filesystem.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}

func collectionFromMap(id string, v any) (*host.Collection, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: collection %s is %T, not an object", schema.ErrHost, id, v)
	}
	c := &host.Collection{ID: id}
	c.Name, _ = m["name"].(string)
	modes, _ := m["modes"].([]any)
	for _, mv := range modes {
		mm, ok := mv.(map[string]any)
		if !ok {
			continue
		}
		modeID, _ := mm["modeId"].(string)
		name, _ := mm["name"].(string)
		if modeID == "" {
			return nil, fmt.Errorf("%w: collection %q has a mode without modeId", schema.ErrHost, c.Name)
		}
		c.Modes = append(c.Modes, host.Mode{ID: modeID, Name: name})
	}
	return c, nil
}

func variableFromMap(id string, v any) (*host.Variable, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: variable %s is %T, not an object", schema.ErrHost, id, v)
	}
	variable := &host.Variable{ID: id, ValuesByMode: make(map[string]any)}
	variable.Name, _ = m["name"].(string)
	variable.CollectionID, _ = m["variableCollectionId"].(string)
	typ, _ := m["resolvedType"].(string)
	variable.ResolvedType = host.ParseNativeType(typ)

	values, _ := m["valuesByMode"].(map[string]any)
	for modeID, value := range values {
		variable.ValuesByMode[modeID] = valueFromFile(value)
	}
	return variable, nil
}

// valueFromFile converts alias and color objects to native values.
func valueFromFile(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if m["type"] == aliasType {
		id, _ := m["id"].(string)
		return host.Alias{ID: id}
	}
	r, rok := m["r"].(float64)
	g, gok := m["g"].(float64)
	b, bok := m["b"].(float64)
	if rok && gok && bok {
		c := host.Color{R: r, G: g, B: b, A: 1}
		if a, ok := m["a"].(float64); ok {
			c.A = a
		}
		return c
	}
	return v
}

func valueToFile(v any) any {
	switch x := v.(type) {
	case host.Alias:
		return map[string]any{"type": aliasType, "id": x.ID}
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
