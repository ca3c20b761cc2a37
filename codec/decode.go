/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package codec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

var leadingNumberPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// VariableLookup finds a live variable by its slash-delimited name.
type VariableLookup interface {
	LookupVariable(name string) (host.Variable, bool)
}

// VariableSet is a VariableLookup over a fixed list of variables.
// When names collide, the first variable wins.
type VariableSet map[string]host.Variable

// NewVariableSet indexes variables by name.
func NewVariableSet(vars []host.Variable) VariableSet {
	set := make(VariableSet, len(vars))
	for _, v := range vars {
		set.Add(v)
	}
	return set
}

// Add indexes v unless its name is already taken.
func (s VariableSet) Add(v host.Variable) {
	if _, ok := s[v.Name]; !ok {
		s[v.Name] = v
	}
}

// LookupVariable implements VariableLookup.
func (s VariableSet) LookupVariable(name string) (host.Variable, bool) {
	v, ok := s[name]
	return v, ok
}

// Decode converts a token value to the native value for target.
// References become aliases and fail with ErrUnresolvedAlias when no variable
// has the referenced name. Unparseable colors decode to opaque black.
func Decode(value any, target host.NativeType, vars VariableLookup) (any, error) {
	if token.IsReference(value) {
		return ResolveToNativeAlias(value.(string), vars)
	}

	switch target {
	case host.TypeColor:
		return decodeColor(value), nil
	case host.TypeFloat:
		return decodeFloat(value)
	case host.TypeBoolean:
		return truthy(value), nil
	default:
		return value, nil
	}
}

// ResolveToNativeAlias converts a {dotted.path} reference to an alias of the
// variable named dotted/path.
func ResolveToNativeAlias(ref string, vars VariableLookup) (any, error) {
	name := token.DotsToSlashes(token.StripBraces(ref))
	if vars != nil {
		if v, ok := vars.LookupVariable(name); ok {
			return host.Alias{ID: v.ID}, nil
		}
	}
	logger.Warn("could not find variable %q for reference %s", name, ref)
	return nil, fmt.Errorf("%w: %s", schema.ErrUnresolvedAlias, ref)
}

func decodeColor(value any) host.Color {
	switch v := value.(type) {
	case host.Color:
		return v
	case *host.Color:
		if v != nil {
			return *v
		}
	case map[string]any:
		if c, ok := colorFromMap(v); ok {
			return c
		}
	case string:
		c, err := ParseColor(v)
		if err != nil {
			logger.Warn("%v; using black", err)
		}
		return c
	}
	logger.Warn("unrecognized color value %v; using black", value)
	return host.Black
}

func decodeFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		num := leadingNumberPattern.FindString(strings.TrimSpace(v))
		if num == "" {
			return nil, fmt.Errorf("%w: %q is not numeric", schema.ErrInvalidValue, v)
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", schema.ErrInvalidValue, v, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %T is not numeric", schema.ErrInvalidValue, value)
	}
}

// truthy coerces a value to a boolean with JavaScript semantics. Only
// false, 0, NaN, "" and nil are false; the string "false" is true.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}
