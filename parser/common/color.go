/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package common provides value helpers shared by token parsing and conversion.
package common

import (
	"fmt"
	"math"
	"strings"
)

// AlphaThreshold is the value at or above which alpha is treated as opaque.
const AlphaThreshold = 0.999

// StructuredColor is a 2025.10 color value:
// {"colorSpace": "srgb", "components": [1, 0, 0], "alpha": 0.5, "hex": "#ff0000"}.
type StructuredColor struct {
	ColorSpace string
	Components []any // float64 or the "none" keyword
	Alpha      *float64
	Hex        string
}

// IsStructuredColor reports whether v looks like a 2025.10 color object.
func IsStructuredColor(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m["colorSpace"].(string)
	return ok
}

// ParseStructuredColor parses a 2025.10 color object.
func ParseStructuredColor(v any) (*StructuredColor, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("structured color must be an object, got %T", v)
	}
	colorSpace, ok := obj["colorSpace"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid colorSpace field")
	}
	components, ok := obj["components"].([]any)
	if !ok {
		return nil, fmt.Errorf("components must be an array")
	}
	for i, comp := range components {
		switch c := comp.(type) {
		case float64:
		case string:
			if c != "none" {
				return nil, fmt.Errorf("component[%d]: invalid string %q; only \"none\" allowed", i, c)
			}
		default:
			return nil, fmt.Errorf("component[%d]: invalid type %T", i, comp)
		}
	}

	sc := &StructuredColor{ColorSpace: colorSpace, Components: components}
	if a, ok := obj["alpha"].(float64); ok {
		sc.Alpha = &a
	}
	if hex, ok := obj["hex"].(string); ok {
		sc.Hex = hex
	}
	return sc, nil
}

// ToCSS returns a draft-compatible color string.
// sRGB colors become lowercase hex (8 digits when translucent); other spaces
// use their CSS function form.
func (c *StructuredColor) ToCSS() string {
	translucent := c.Alpha != nil && *c.Alpha < AlphaThreshold
	if c.Hex != "" && !translucent {
		return strings.ToLower(c.Hex)
	}
	if c.ColorSpace == "srgb" && c.numeric() {
		hex := fmt.Sprintf("#%02x%02x%02x", channel(c.Components[0]), channel(c.Components[1]), channel(c.Components[2]))
		if translucent {
			hex += fmt.Sprintf("%02x", channel(*c.Alpha))
		}
		return hex
	}

	parts := make([]string, len(c.Components))
	for i, comp := range c.Components {
		switch v := comp.(type) {
		case float64:
			parts[i] = fmt.Sprintf("%.4g", v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	body := strings.Join(parts, " ")
	if translucent {
		body += fmt.Sprintf(" / %.4g", *c.Alpha)
	}
	switch c.ColorSpace {
	case "hsl", "hwb", "lab", "lch", "oklab", "oklch":
		return c.ColorSpace + "(" + body + ")"
	default:
		return "color(" + c.ColorSpace + " " + body + ")"
	}
}

func (c *StructuredColor) numeric() bool {
	if len(c.Components) != 3 {
		return false
	}
	for _, comp := range c.Components {
		if _, ok := comp.(float64); !ok {
			return false
		}
	}
	return true
}

func channel(v any) int {
	f, _ := v.(float64)
	return int(math.Max(0, math.Min(255, math.Round(f*255))))
}
