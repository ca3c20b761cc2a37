/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package schema

// Detect determines the schema version of decoded token data.
// Priority order:
// 1. $schema field in the root
// 2. fallback, when not Unknown
// 3. Duck typing ($ref values or structured colors)
// 4. Draft
func Detect(data map[string]any, fallback Version) Version {
	if schemaURL, ok := data["$schema"].(string); ok {
		if v, err := FromURL(schemaURL); err == nil {
			return v
		}
	}
	if fallback != Unknown {
		return fallback
	}
	if usesV2025Values(data) {
		return V2025_10
	}
	return Draft
}

// usesV2025Values reports whether any $value is a {"$ref": ...} object or a
// structured color with a colorSpace.
func usesV2025Values(obj any) bool {
	switch v := obj.(type) {
	case map[string]any:
		if value, ok := v["$value"].(map[string]any); ok {
			if _, ok := value["$ref"]; ok {
				return true
			}
			if _, ok := value["colorSpace"]; ok {
				return true
			}
		}
		for _, child := range v {
			if usesV2025Values(child) {
				return true
			}
		}
	case []any:
		for _, elem := range v {
			if usesV2025Values(elem) {
				return true
			}
		}
	}
	return false
}
