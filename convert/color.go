/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"

	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/token"
)

// ColorFormat is a display format for color values.
type ColorFormat string

const (
	// ColorHex renders #rrggbb, or #rrggbbaa when translucent.
	ColorHex ColorFormat = "hex"

	// ColorRGBA renders rgba(r, g, b, a) with 0-255 channels.
	ColorRGBA ColorFormat = "rgba"

	// ColorHSLA renders hsla(h, s%, l%, a).
	ColorHSLA ColorFormat = "hsla"
)

// ValidColorFormats returns all valid color format strings.
func ValidColorFormats() []string {
	return []string{string(ColorHex), string(ColorRGBA), string(ColorHSLA)}
}

// ParseColorFormat converts a string to a ColorFormat.
func ParseColorFormat(s string) (ColorFormat, error) {
	switch strings.ToLower(s) {
	case "hex", "":
		return ColorHex, nil
	case "rgba", "rgb":
		return ColorRGBA, nil
	case "hsla", "hsl":
		return ColorHSLA, nil
	default:
		return "", fmt.Errorf("unknown color format: %s (valid: %s)", s, strings.Join(ValidColorFormats(), ", "))
	}
}

// ApplyColorFormat returns a copy of tree with every color token's value
// rendered in format. References and unparseable values are left as they are.
func ApplyColorFormat(tree token.Tree, format ColorFormat) token.Tree {
	out := tree.Clone()
	_ = out.Walk(func(collection, mode string, path []string, tok *token.Token) error {
		if tok.Type != token.TypeColor || tok.IsReference() {
			return nil
		}
		s, ok := tok.Value.(string)
		if !ok {
			return nil
		}
		formatted, err := FormatColor(s, format)
		if err != nil {
			logger.Debug("%s.%s.%s: %v", collection, mode, strings.Join(path, "."), err)
			return nil
		}
		tok.Value = formatted
		return nil
	})
	return out
}

// FormatColor parses any CSS color and renders it in format.
func FormatColor(value string, format ColorFormat) (string, error) {
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return "", err
	}
	switch format {
	case ColorRGBA:
		r, g, b, _ := c.RGBA255()
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatFloat(c.A, 3)), nil
	case ColorHSLA:
		h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
		if math.IsNaN(h) {
			h = 0
		}
		return fmt.Sprintf("hsla(%s, %s%%, %s%%, %s)",
			formatFloat(h, 1), formatFloat(s*100, 1), formatFloat(l*100, 1), formatFloat(c.A, 3)), nil
	default:
		return c.HexString(), nil
	}
}

// formatFloat rounds to places and drops trailing zeros.
func formatFloat(f float64, places int) string {
	p := math.Pow(10, float64(places))
	return strconv.FormatFloat(math.Round(f*p)/p, 'f', -1, 64)
}
