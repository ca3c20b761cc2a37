/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package host defines the design document interface that the extraction and
// sync pipelines consume, along with its native value types.
package host

import (
	"context"
	"strings"
)

// NativeType is a variable's resolved type in the host document.
type NativeType string

const (
	TypeColor   NativeType = "COLOR"
	TypeFloat   NativeType = "FLOAT"
	TypeString  NativeType = "STRING"
	TypeBoolean NativeType = "BOOLEAN"
)

// ParseNativeType returns the NativeType for s, case-insensitively.
// Unrecognized strings are returned upper-cased and unchanged.
func ParseNativeType(s string) NativeType {
	return NativeType(strings.ToUpper(strings.TrimSpace(s)))
}

// Mode is one column of values in a collection.
type Mode struct {
	// ID is stable across renames.
	ID   string `json:"modeId"`
	Name string `json:"name"`
}

// Collection owns an ordered list of modes and a set of variables.
type Collection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Modes []Mode `json:"modes"`
}

// ModeByName returns the mode with the given display name.
func (c Collection) ModeByName(name string) (Mode, bool) {
	for _, m := range c.Modes {
		if m.Name == name {
			return m, true
		}
	}
	return Mode{}, false
}

// Variable has one value per mode of its collection.
type Variable struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CollectionID string         `json:"variableCollectionId"`
	ResolvedType NativeType     `json:"resolvedType"`
	ValuesByMode map[string]any `json:"valuesByMode"`
}

// Color is a native RGBA color with channels in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Black is the fallback for colors that cannot be parsed.
var Black = Color{A: 1}

// Alias is a native pointer from one variable's value to another variable.
type Alias struct {
	ID string `json:"id"`
}

// Document is the host document API the pipelines depend on.
// Implementations may block; every call is awaited before the next is issued.
type Document interface {
	// Collections enumerates collections with their ordered modes.
	Collections(ctx context.Context) ([]Collection, error)

	// Variables enumerates every variable in the document.
	Variables(ctx context.Context) ([]Variable, error)

	// CreateCollection creates a collection with a single default mode.
	CreateCollection(ctx context.Context, name string) (Collection, error)

	// RenameCollection changes a collection's display name.
	RenameCollection(ctx context.Context, collectionID, name string) error

	// AddMode appends a mode to a collection and returns its id.
	AddMode(ctx context.Context, collectionID, name string) (string, error)

	// RenameMode changes a mode's display name.
	RenameMode(ctx context.Context, collectionID, modeID, name string) error

	// CreateVariable creates a variable with no values.
	CreateVariable(ctx context.Context, name, collectionID string, typ NativeType) (Variable, error)

	// SetValueForMode writes a variable's value for one mode.
	SetValueForMode(ctx context.Context, variableID, modeID string, value any) error

	// FindVariableByName finds a variable by exact display name. Imports use it
	// for names missing from their enumerated variables.
	FindVariableByName(ctx context.Context, name string) (Variable, bool, error)
}
