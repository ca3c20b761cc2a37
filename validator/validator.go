/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validator checks token payloads before they are imported.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"bennypowers.dev/varsync/codec"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/parser"
	"bennypowers.dev/varsync/parser/common"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// ValidationError represents a problem with a token payload.
type ValidationError struct {
	// FilePath is the path to the file containing the error.
	FilePath string `json:"filePath,omitempty"`
	// Path is the dotted path to the problematic element.
	Path string `json:"path,omitempty"`
	// Message describes what's wrong.
	Message string `json:"message"`
	// Suggestion provides an actionable fix.
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.FilePath != "" {
		sb.WriteString(e.FilePath)
		sb.WriteString(": ")
	}
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Suggestion != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Suggestion)
		sb.WriteString(")")
	}
	return sb.String()
}

// ValidatePayload checks that content decodes to collection, mode, then
// token groups, and that every token can be written to a host variable.
func ValidatePayload(content []byte, filePath string) []ValidationError {
	data, err := parser.Decode(content)
	if err != nil {
		return []ValidationError{{
			FilePath: filePath,
			Message:  fmt.Sprintf("failed to parse content: %v", err),
		}}
	}
	return ValidateTree(data, filePath)
}

// ValidateTree checks a decoded payload. Errors are ordered by path.
func ValidateTree(data map[string]any, filePath string) []ValidationError {
	v := &walker{filePath: filePath}
	for _, collection := range sortedKeys(data) {
		if strings.HasPrefix(collection, "$") {
			continue
		}
		modes, ok := data[collection].(map[string]any)
		if !ok {
			v.add([]string{collection}, fmt.Sprintf("collection must be an object, got %T", data[collection]),
				"nest modes under each collection: {collection: {mode: {...}}}")
			continue
		}
		if len(modes) == 0 {
			v.add([]string{collection}, "collection has no modes", "add at least one mode object")
		}
		for _, mode := range sortedKeys(modes) {
			group, ok := modes[mode].(map[string]any)
			if !ok {
				v.add([]string{collection, mode}, fmt.Sprintf("mode must be an object, got %T", modes[mode]), "")
				continue
			}
			v.group(group, []string{collection, mode}, "")
		}
	}
	return v.errors
}

type walker struct {
	filePath string
	errors   []ValidationError
}

func (v *walker) add(path []string, message, suggestion string) {
	v.errors = append(v.errors, ValidationError{
		FilePath:   v.filePath,
		Path:       strings.Join(path, "."),
		Message:    message,
		Suggestion: suggestion,
	})
}

func (v *walker) group(g map[string]any, path []string, inheritedType string) {
	if t, ok := g["$type"].(string); ok {
		inheritedType = t
	}
	for _, key := range sortedKeys(g) {
		if strings.HasPrefix(key, "$") {
			continue
		}
		childPath := append(path[:len(path):len(path)], key)
		if strings.Contains(key, "/") {
			v.add(childPath, "name contains '/'", "'/' separates groups in variable names; nest a group instead")
		}
		child, ok := g[key].(map[string]any)
		if !ok {
			v.add(childPath, fmt.Sprintf("expected a token or group, got %T", g[key]), "")
			continue
		}
		if _, hasValue := child["$value"]; hasValue {
			v.token(child, childPath, inheritedType)
			continue
		}
		v.group(child, childPath, inheritedType)
	}
}

func (v *walker) token(m map[string]any, path []string, inheritedType string) {
	typ, hasType := m["$type"].(string)
	if !hasType {
		typ = inheritedType
	}
	if typ == "" {
		v.add(path, "token has $value but no $type", "add $type; imported tokens need both $value and $type")
		return
	}

	value := m["$value"]
	if value == nil {
		v.add(path, "token value is null", "")
		return
	}
	if s, ok := value.(string); ok {
		if s == token.EmptyObject || token.IsReference(s) {
			return
		}
		if len(token.ExtractAllRefs(s)) > 0 {
			v.add(path, fmt.Sprintf("embedded reference in %q", s),
				"a reference must be the whole value, like {colors.red}")
			return
		}
	}

	switch typ {
	case token.TypeColor:
		s, ok := value.(string)
		if !ok {
			if !common.IsStructuredColor(value) && !isChannelMap(value) {
				v.add(path, fmt.Sprintf("color value must be a string, got %T", value), "")
			}
			return
		}
		if _, err := codec.ParseColor(s); err != nil {
			v.add(path, fmt.Sprintf("unparseable color %q", s), "use #rrggbb, rgb(), rgba(), hsl(), or hsla()")
		}
	case token.TypeNumber, token.TypeDimension:
		if _, err := codec.Decode(value, host.TypeFloat, nil); err != nil {
			v.add(path, fmt.Sprintf("%s value %v is not numeric", typ, value), "")
		}
	case token.TypeBoolean:
		if _, ok := value.(bool); !ok {
			v.add(path, fmt.Sprintf("boolean value must be true or false, got %v", value), "")
		}
	}
}

func isChannelMap(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, k := range []string{"r", "g", "b"} {
		if _, ok := m[k].(float64); !ok {
			return false
		}
	}
	return true
}

// ValidateConsistency checks that file content matches the expected schema version.
// Returns errors for:
// - $ref in a draft file
// - Color format mismatch (structured colors in draft, string colors in 2025.10)
func ValidateConsistency(content []byte, version schema.Version, filePath string) []ValidationError {
	data, err := parser.Decode(content)
	if err != nil {
		return []ValidationError{{
			FilePath: filePath,
			Message:  fmt.Sprintf("failed to parse content: %v", err),
		}}
	}

	v := &walker{filePath: filePath}
	switch version {
	case schema.Draft:
		v.draft(data, nil)
	case schema.V2025_10:
		v.v2025(data, nil)
	}
	return v.errors
}

// draft checks for 2025.10 features that shouldn't appear in draft schema.
func (v *walker) draft(data map[string]any, path []string) {
	for _, key := range sortedKeys(data) {
		currentPath := append(path[:len(path):len(path)], key)
		if key == "$ref" {
			v.add(currentPath, "$ref is not valid in draft schema",
				"use curly-brace references like {token.path} or update to 2025.10 schema")
			continue
		}
		valueMap, ok := data[key].(map[string]any)
		if !ok {
			continue
		}
		if valueMap["$type"] == token.TypeColor && common.IsStructuredColor(valueMap["$value"]) {
			v.add(currentPath, "structured color values are not valid in draft schema",
				"use string color format like \"#RRGGBB\" or update $schema to 2025.10")
		}
		v.draft(valueMap, currentPath)
	}
}

// v2025 checks for draft patterns that shouldn't appear in 2025.10 schema.
func (v *walker) v2025(data map[string]any, path []string) {
	for _, key := range sortedKeys(data) {
		if key == "$schema" {
			continue
		}
		currentPath := append(path[:len(path):len(path)], key)
		valueMap, ok := data[key].(map[string]any)
		if !ok {
			continue
		}
		if valueMap["$type"] == token.TypeColor {
			if s, ok := valueMap["$value"].(string); ok && !token.IsReference(s) {
				v.add(currentPath, fmt.Sprintf("string color value %q is not valid in 2025.10 schema", s),
					"use structured color format with colorSpace and components")
			}
		}
		v.v2025(valueMap, currentPath)
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
