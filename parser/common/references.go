/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package common

import "strings"

// ConvertJSONPointerToTokenPath converts a JSON Pointer path to a token path,
// decoding RFC 6901 escapes.
// Examples:
//
//	"#/color/brand/primary" -> "color.brand.primary"
//	"color/brand/primary" -> "color.brand.primary"
func ConvertJSONPointerToTokenPath(jsonPointer string) string {
	jsonPointer = strings.TrimPrefix(jsonPointer, "#/")
	parts := strings.Split(jsonPointer, "/")
	for i, part := range parts {
		// ~1 must be replaced before ~0
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}

// ConvertTokenPathToJSONPointer converts a token path to a JSON Pointer.
// Example: "color.brand.primary" -> "#/color/brand/primary"
func ConvertTokenPathToJSONPointer(tokenPath string) string {
	parts := strings.Split(tokenPath, ".")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~", "~0")
		parts[i] = strings.ReplaceAll(part, "/", "~1")
	}
	return "#/" + strings.Join(parts, "/")
}
