/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package codec

import (
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/token"
)

// Context carries the state one extraction run needs to encode aliases.
// A Context belongs to a single run; nothing is cached across runs.
type Context struct {
	// Variables maps variable id to variable, for alias targets.
	Variables map[string]host.Variable

	// AliasPaths records alias id -> dotted path for every alias encoded.
	AliasPaths map[string]string
}

// NewContext creates a Context over the document's variables.
func NewContext(vars []host.Variable) *Context {
	byID := make(map[string]host.Variable, len(vars))
	for _, v := range vars {
		byID[v.ID] = v
	}
	return &Context{
		Variables:  byID,
		AliasPaths: make(map[string]string),
	}
}

// Encode converts a native value to its token value.
// Colors become hex strings, aliases become {dotted.path} references, and an
// empty object becomes the "{}" sentinel. An alias whose target is unknown
// encodes to nil.
func Encode(native any, nativeType host.NativeType, ctx *Context) any {
	switch v := native.(type) {
	case nil:
		return nil
	case host.Alias:
		return encodeAlias(v, ctx)
	case *host.Alias:
		if v == nil {
			return nil
		}
		return encodeAlias(*v, ctx)
	case host.Color:
		return FormatHex(v)
	case *host.Color:
		if v == nil {
			return nil
		}
		return FormatHex(*v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Encode(elem, nativeType, ctx)
		}
		return out
	case map[string]any:
		if len(v) == 0 {
			return token.EmptyObject
		}
		if c, ok := colorFromMap(v); ok {
			return FormatHex(c)
		}
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = Encode(elem, nativeType, ctx)
		}
		return out
	default:
		return native
	}
}

func encodeAlias(alias host.Alias, ctx *Context) any {
	if ctx == nil {
		logger.Warn("alias %s encoded without variable context", alias.ID)
		return nil
	}
	if path, ok := ctx.AliasPaths[alias.ID]; ok {
		return token.MakeReference(path)
	}
	target, ok := ctx.Variables[alias.ID]
	if !ok {
		logger.Warn("alias target %s not found", alias.ID)
		return nil
	}
	path := token.SlashesToDots(target.Name)
	ctx.AliasPaths[alias.ID] = path
	return token.MakeReference(path)
}

// colorFromMap reads a {r,g,b[,a]} object with numeric channels.
func colorFromMap(m map[string]any) (host.Color, bool) {
	r, rok := m["r"].(float64)
	g, gok := m["g"].(float64)
	b, bok := m["b"].(float64)
	if !rok || !gok || !bok {
		return host.Color{}, false
	}
	for k := range m {
		switch k {
		case "r", "g", "b", "a":
		default:
			return host.Color{}, false
		}
	}
	c := host.Color{R: r, G: g, B: b, A: 1}
	if a, ok := m["a"].(float64); ok {
		c.A = a
	}
	return c, true
}
