/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/varsync/codec"
	"bennypowers.dev/varsync/fs"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/parser/common"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// JSONParser parses token trees from JSON or YAML.
type JSONParser struct{}

// NewJSONParser creates a new token tree parser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

var _ Parser = (*JSONParser)(nil)

// Parse parses JSON, JSONC, or YAML token data.
// 2025.10 documents are normalized to draft form: $ref pointers become
// curly-brace references and structured colors become CSS strings.
// Group $type is inherited by descendant tokens that lack one.
func (p *JSONParser) Parse(data []byte, opts Options) (token.Tree, error) {
	raw, err := Decode(data)
	if err != nil {
		return nil, err
	}
	version := schema.Detect(raw, opts.SchemaVersion)
	logger.Debug("parsing token tree as %s", version)

	tree, err := token.TreeFromMap(Normalize(raw, version))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrInvalidPayload, err)
	}
	return tree, nil
}

// ParseFile reads and parses a token file.
func (p *JSONParser) ParseFile(filesystem fs.FileSystem, path string, opts Options) (token.Tree, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	tree, err := p.Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return tree, nil
}

// Decode decodes JSON (comments and trailing commas allowed) or YAML into a
// string-keyed object.
func Decode(data []byte) (map[string]any, error) {
	if isLikelyJSON(data) {
		var raw map[string]any
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return raw, nil
	}

	var yamlRaw any
	if err := yaml.Unmarshal(data, &yamlRaw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	raw, ok := normalizeMap(yamlRaw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("YAML root must be an object")
	}
	return raw, nil
}

// isLikelyJSON checks if data appears to be JSON rather than YAML.
func isLikelyJSON(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case 0xEF, 0xBB, 0xBF: // UTF-8 BOM
			continue
		case '{', '/':
			return true
		default:
			return false
		}
	}
	return false
}

// normalizeMap recursively converts map[any]any to map[string]any.
// YAML numeric keys (like "100:") decode as non-string keys, and YAML
// integers decode as int; both are normalized to their JSON forms.
func normalizeMap(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalizeMap(val)
		}
		return x
	case map[any]any:
		result := make(map[string]any, len(x))
		for k, val := range x {
			result[fmt.Sprintf("%v", k)] = normalizeMap(val)
		}
		return result
	case []any:
		for i, val := range x {
			x[i] = normalizeMap(val)
		}
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	default:
		return v
	}
}

// Normalize rewrites a decoded tree into draft form in place and returns it.
// The top two levels (collection, mode) are traversed without type inheritance.
func Normalize(raw map[string]any, version schema.Version) map[string]any {
	for collection, cv := range raw {
		if strings.HasPrefix(collection, "$") {
			continue
		}
		modes, ok := cv.(map[string]any)
		if !ok {
			continue
		}
		for mode, mv := range modes {
			if strings.HasPrefix(mode, "$") {
				continue
			}
			if group, ok := mv.(map[string]any); ok {
				normalizeGroup(group, "", version)
			}
		}
	}
	return raw
}

func normalizeGroup(group map[string]any, inheritedType string, version schema.Version) {
	currentType := inheritedType
	if t, ok := group["$type"].(string); ok {
		currentType = t
	}
	for key, v := range group {
		if strings.HasPrefix(key, "$") {
			continue
		}
		child, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if isTokenCandidate(child, version) {
			normalizeToken(child, currentType, version)
			continue
		}
		normalizeGroup(child, currentType, version)
	}
}

func isTokenCandidate(m map[string]any, version schema.Version) bool {
	if _, ok := m["$value"]; ok {
		return true
	}
	if version == schema.V2025_10 {
		_, ok := m["$ref"].(string)
		return ok
	}
	return false
}

func normalizeToken(m map[string]any, inheritedType string, version schema.Version) {
	defer inferMissingType(m)
	if _, ok := m["$type"].(string); !ok && inheritedType != "" {
		m["$type"] = inheritedType
	}
	if version != schema.V2025_10 {
		return
	}

	if ref, ok := m["$ref"].(string); ok {
		if _, hasValue := m["$value"]; !hasValue {
			m["$value"] = token.MakeReference(common.ConvertJSONPointerToTokenPath(ref))
			if _, ok := m["$type"]; !ok {
				m["$type"] = token.TypeReference
			}
		}
		delete(m, "$ref")
	}

	switch v := m["$value"].(type) {
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok && len(v) == 1 {
			m["$value"] = token.MakeReference(common.ConvertJSONPointerToTokenPath(ref))
			return
		}
		if common.IsStructuredColor(v) {
			sc, err := common.ParseStructuredColor(v)
			if err != nil {
				logger.Warn("invalid structured color: %v", err)
				return
			}
			m["$value"] = sc.ToCSS()
		}
	}
}

// inferMissingType gives an untyped token a $type from its value's shape.
func inferMissingType(m map[string]any) {
	if _, ok := m["$type"].(string); ok {
		return
	}
	if _, ok := m["$value"]; ok {
		m["$type"] = codec.InferType("", m["$value"])
	}
}
