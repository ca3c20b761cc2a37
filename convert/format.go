/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package convert

import (
	"fmt"
	"strings"

	"bennypowers.dev/varsync/convert/formatter"
	"bennypowers.dev/varsync/convert/formatter/dtcg"
	"bennypowers.dev/varsync/convert/formatter/flatjson"
	"bennypowers.dev/varsync/convert/formatter/styledictionary"
	"bennypowers.dev/varsync/token"
)

// Format represents an output format for token serialization.
type Format string

const (
	// FormatDTCG outputs DTCG-compliant JSON (default).
	FormatDTCG Format = "dtcg"

	// FormatFlatJSON outputs flat key-value JSON.
	FormatFlatJSON Format = "json"

	// FormatStyleDictionary outputs Style Dictionary value/type/comment JSON.
	FormatStyleDictionary Format = "style-dictionary"
)

// ValidFormats returns all valid format strings.
func ValidFormats() []string {
	return []string{
		string(FormatDTCG),
		string(FormatFlatJSON),
		string(FormatStyleDictionary),
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "dtcg", "":
		return FormatDTCG, nil
	case "json", "flat", "flat-json":
		return FormatFlatJSON, nil
	case "style-dictionary", "styledictionary", "sd":
		return FormatStyleDictionary, nil
	default:
		return "", fmt.Errorf("unknown format: %s (valid: %s)", s, strings.Join(ValidFormats(), ", "))
	}
}

// FormatTree converts a token tree to the specified output format.
func FormatTree(tree token.Tree, format Format, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	fmtOpts := formatter.Options{
		Prefix:    opts.Prefix,
		Delimiter: opts.Delimiter,
	}

	var f formatter.Formatter
	switch format {
	case FormatDTCG, "":
		f = dtcg.New(func(t token.Tree) map[string]any {
			return Serialize(t, opts)
		})
	case FormatFlatJSON:
		f = flatjson.New()
	case FormatStyleDictionary:
		f = styledictionary.New()
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if format != FormatDTCG && format != "" && opts.ColorFormat != "" {
		tree = ApplyColorFormat(tree, opts.ColorFormat)
	}
	return f.Format(tree, fmtOpts)
}
