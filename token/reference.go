/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token

import (
	"regexp"
	"strings"
)

// DefaultSegment is the path used for a variable whose name has no segments.
const DefaultSegment = "base"

// EmptyObject is the encoded form of an empty native object.
// It looks like braces but is never a reference.
const EmptyObject = "{}"

var (
	// referencePattern matches a value that is entirely one {token.path} reference.
	referencePattern = regexp.MustCompile(`^\{([^{}]+)\}$`)

	// curlyBracePattern matches {token.path} references anywhere in a string.
	curlyBracePattern = regexp.MustCompile(`\{([^{}]+)\}`)
)

// IsReference returns true if v is a string consisting of a single {path} reference.
func IsReference(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return referencePattern.MatchString(strings.TrimSpace(s))
}

// ReferencePath extracts the path from a whole-value reference.
// Returns the path and true if valid, empty string and false otherwise.
func ReferencePath(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	matches := referencePattern.FindStringSubmatch(strings.TrimSpace(s))
	if len(matches) != 2 {
		return "", false
	}
	return matches[1], true
}

// StripBraces removes surrounding braces from a reference, if present.
func StripBraces(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "{") && strings.HasSuffix(ref, "}") {
		return ref[1 : len(ref)-1]
	}
	return ref
}

// MakeReference wraps a dotted path in braces.
func MakeReference(path string) string {
	return "{" + path + "}"
}

// ExtractAllRefs extracts all curly brace references from a string.
func ExtractAllRefs(value string) []string {
	matches := curlyBracePattern.FindAllStringSubmatch(value, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) >= 2 {
			refs = append(refs, m[1])
		}
	}
	return refs
}

// SlashesToDots converts a slash-delimited variable name to a dotted path.
func SlashesToDots(s string) string {
	return strings.ReplaceAll(s, "/", ".")
}

// DotsToSlashes converts a dotted path to a slash-delimited variable name.
func DotsToSlashes(s string) string {
	return strings.ReplaceAll(s, ".", "/")
}

// SplitName splits a variable's display name into path segments on "/".
// Empty segments are dropped; a name with no segments yields DefaultSegment.
func SplitName(name string) []string {
	parts := strings.Split(name, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		return []string{DefaultSegment}
	}
	return segments
}

// SplitPath splits a reference path on either delimiter.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/'
	})
}
