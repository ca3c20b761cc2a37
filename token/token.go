/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package token provides DTCG design token types.
package token

// Token types emitted by extraction. Any other $type string is passed through.
const (
	TypeColor     = "color"
	TypeNumber    = "number"
	TypeDimension = "dimension"
	TypeString    = "string"
	TypeBoolean   = "boolean"
	TypeReference = "reference"
)

// Node is a member of a token group: either a *Token or a *Group.
type Node interface {
	isNode()
}

// Token represents a design token following the DTCG specification.
// See: https://design-tokens.github.io/community-group/format/
type Token struct {
	// Value is the token value, or a reference string like "{color.primary}".
	Value any `json:"$value"`

	// Type is the DTCG type tag (color, number, dimension, ...).
	Type string `json:"$type"`

	// Description is optional documentation for the token.
	Description string `json:"$description,omitempty"`

	// ResolvedFrom is the path a reference resolved to, set by annotation.
	ResolvedFrom string `json:"$resolvedFrom,omitempty"`

	// OriginalValue is the value before annotation or correction.
	OriginalValue any `json:"$originalValue,omitempty"`

	// Extensions allows for custom metadata.
	Extensions map[string]any `json:"$extensions,omitempty"`
}

func (*Token) isNode() {}

// IsReference returns true if the token's value is a reference string.
func (t *Token) IsReference() bool {
	return IsReference(t.Value)
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	c.Value = cloneValue(t.Value)
	c.OriginalValue = cloneValue(t.OriginalValue)
	if t.Extensions != nil {
		c.Extensions = cloneValue(t.Extensions).(map[string]any)
	}
	return &c
}

// ToMap returns the token's JSON object form.
func (t *Token) ToMap() map[string]any {
	m := map[string]any{
		"$value": cloneValue(t.Value),
		"$type":  t.Type,
	}
	if t.Description != "" {
		m["$description"] = t.Description
	}
	if t.ResolvedFrom != "" {
		m["$resolvedFrom"] = t.ResolvedFrom
	}
	if t.OriginalValue != nil {
		m["$originalValue"] = cloneValue(t.OriginalValue)
	}
	if len(t.Extensions) > 0 {
		m["$extensions"] = cloneValue(t.Extensions)
	}
	return m
}

// IsTokenMap reports whether a decoded JSON object is a token.
// Both $value and $type must be present.
func IsTokenMap(m map[string]any) bool {
	_, hasValue := m["$value"]
	_, hasType := m["$type"]
	return hasValue && hasType
}

// TokenFromMap builds a token from its JSON object form.
func TokenFromMap(m map[string]any) *Token {
	t := &Token{Value: cloneValue(m["$value"])}
	if s, ok := m["$type"].(string); ok {
		t.Type = s
	}
	if s, ok := m["$description"].(string); ok {
		t.Description = s
	}
	if s, ok := m["$resolvedFrom"].(string); ok {
		t.ResolvedFrom = s
	}
	if v, ok := m["$originalValue"]; ok {
		t.OriginalValue = cloneValue(v)
	}
	if ext, ok := m["$extensions"].(map[string]any); ok {
		t.Extensions = cloneValue(ext).(map[string]any)
	}
	return t
}

// cloneValue deep-copies JSON-shaped values.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, val := range x {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}
