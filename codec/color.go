/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package codec

import (
	"fmt"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"

	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/schema"
)

// FormatHex encodes a native color as #rrggbb, or #rrggbbaa when alpha is not 1.
func FormatHex(c host.Color) string {
	hex := fmt.Sprintf("#%02x%02x%02x", to255(c.R), to255(c.G), to255(c.B))
	if c.A != 1 {
		hex += fmt.Sprintf("%02x", to255(c.A))
	}
	return hex
}

// ParseColor parses hex, rgb(a), and hsl(a) color strings.
// Named colors and other notations are rejected. On failure the
// returned color is opaque black.
func ParseColor(s string) (host.Color, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "#"),
		strings.HasPrefix(lower, "rgb"),
		strings.HasPrefix(lower, "hsl"):
		c, err := csscolorparser.Parse(lower)
		if err != nil {
			return host.Black, fmt.Errorf("%w: %q: %w", schema.ErrInvalidColor, s, err)
		}
		return host.Color{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	default:
		return host.Black, fmt.Errorf("%w: unrecognized color format %q", schema.ErrInvalidColor, s)
	}
}

func to255(c float64) int {
	return int(math.Max(0, math.Min(255, math.Round(255*c))))
}
