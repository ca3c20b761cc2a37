/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package codec converts values between the host document's native
// representation and token values.
package codec

import (
	"regexp"
	"strings"

	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/token"
)

var (
	// dimensionSuffixPattern matches FLOAT values that carry a CSS length unit.
	dimensionSuffixPattern = regexp.MustCompile(`(px|rem|em|%)$`)

	// dimensionPattern matches a whole numeric dimension like "-1.5rem".
	dimensionPattern = regexp.MustCompile(`^-?\d*\.?\d+(px|rem|em|%|vh|vw|pt)$`)
)

// InferType returns the token $type for a native type and value.
// It never fails: unrecognized values are strings.
func InferType(nativeType host.NativeType, value any) string {
	switch nativeType {
	case host.TypeColor:
		return token.TypeColor
	case host.TypeFloat:
		if s, ok := value.(string); ok && dimensionSuffixPattern.MatchString(s) {
			return token.TypeDimension
		}
		return token.TypeNumber
	case host.TypeString:
		return token.TypeString
	case host.TypeBoolean:
		return token.TypeBoolean
	}

	switch v := value.(type) {
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return token.TypeNumber
	case bool:
		return token.TypeBoolean
	case string:
		switch {
		case strings.HasPrefix(v, "#"), strings.HasPrefix(v, "rgb"):
			return token.TypeColor
		case dimensionPattern.MatchString(v):
			return token.TypeDimension
		case token.IsReference(v):
			return token.TypeReference
		}
	}
	return token.TypeString
}
