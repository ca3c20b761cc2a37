/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package search

import (
	"regexp"
	"testing"

	"bennypowers.dev/varsync/cmd/render"
)

func TestMatchString(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		query    string
		pattern  *regexp.Regexp
		expected bool
	}{
		{"simple match", "brand.light.colors.primary", "primary", nil, true},
		{"case insensitive", "Brand.Light.Primary", "primary", nil, true},
		{"no match", "brand.light.colors.primary", "space", nil, false},
		{"empty query", "colors.primary", "", nil, true},
		{"empty string", "", "query", nil, false},
		{"regex match", "brand.light.colors.red", "", regexp.MustCompile(`^brand\.`), true},
		{"regex no match", "primitives.default.space", "", regexp.MustCompile(`^brand\.`), false},
		{"regex pattern", "colors.red.500", "", regexp.MustCompile(`\d+`), true},
		{"regex case sensitive", "Color", "", regexp.MustCompile(`color`), false},
		{"regex case insensitive", "Color", "", regexp.MustCompile(`(?i)color`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchString(tt.s, tt.query, tt.pattern)
			if got != tt.expected {
				t.Errorf("matchString(%q, %q, pattern) = %v, want %v", tt.s, tt.query, got, tt.expected)
			}
		})
	}
}

func TestQueryMatches(t *testing.T) {
	primary := render.Row{
		Name:        "brand.light.colors.primary",
		Type:        "color",
		Value:       "{colors.red}",
		Description: "Primary action color",
	}
	gap := render.Row{
		Name:  "brand.light.layout.gap",
		Type:  "number",
		Value: "16",
	}

	tests := []struct {
		name     string
		q        query
		row      render.Row
		expected bool
	}{
		{"name anywhere", query{text: "primary"}, primary, true},
		{"description anywhere", query{text: "action"}, primary, true},
		{"type anywhere", query{text: "number"}, gap, true},
		{"name only skips value", query{text: "red", nameOnly: true}, primary, false},
		{"value only", query{text: "red", valueOnly: true}, primary, true},
		{"value only skips name", query{text: "gap", valueOnly: true}, gap, false},
		{"type filter excludes", query{text: "primary", typ: "number"}, primary, false},
		{"type filter includes", query{text: "16", typ: "number"}, gap, true},
		{"regex over value", query{pattern: regexp.MustCompile(`^\d+$`), valueOnly: true}, gap, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.matches(tt.row); got != tt.expected {
				t.Errorf("matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}
