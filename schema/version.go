/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package schema provides DTCG schema version handling and shared errors.
package schema

import (
	"fmt"
	"strings"
)

// Version represents a design tokens schema version.
type Version int

const (
	// Unknown represents an undetected or unrecognized schema version.
	Unknown Version = iota
	// Draft represents the editor's draft schema, with string colors and
	// curly-brace references. Extraction always produces draft trees.
	Draft
	// V2025_10 represents the stable 2025.10 schema.
	V2025_10
)

const (
	draftURL = "https://www.designtokens.org/schemas/draft.json"
	v2025URL = "https://www.designtokens.org/schemas/2025.10.json"
)

// String returns the string representation of the schema version.
func (v Version) String() string {
	switch v {
	case Draft:
		return "draft"
	case V2025_10:
		return "v2025.10"
	default:
		return "unknown"
	}
}

// URL returns the JSON Schema URL for this version.
func (v Version) URL() string {
	switch v {
	case Draft:
		return draftURL
	case V2025_10:
		return v2025URL
	default:
		return ""
	}
}

// FromURL returns the schema version from a JSON Schema URL.
func FromURL(url string) (Version, error) {
	switch url {
	case draftURL:
		return Draft, nil
	case v2025URL:
		return V2025_10, nil
	default:
		return Unknown, fmt.Errorf("%w: %s", ErrUnknownVersion, url)
	}
}

// FromString returns the schema version from a string representation.
// The empty string maps to Unknown without error.
func FromString(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return Unknown, nil
	case "draft":
		return Draft, nil
	case "v2025.10", "v2025_10", "2025.10", "2025", "v2025":
		return V2025_10, nil
	default:
		return Unknown, fmt.Errorf("%w: %s", ErrUnknownVersion, s)
	}
}
