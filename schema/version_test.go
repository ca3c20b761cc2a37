/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package schema_test

import (
	"errors"
	"testing"

	"bennypowers.dev/varsync/schema"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected schema.Version
		wantErr  bool
	}{
		{"", schema.Unknown, false},
		{"draft", schema.Draft, false},
		{"Draft", schema.Draft, false},
		{"v2025.10", schema.V2025_10, false},
		{"2025", schema.V2025_10, false},
		{"v1.0", schema.Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := schema.FromString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("FromString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if err != nil && !errors.Is(err, schema.ErrUnknownVersion) {
				t.Errorf("expected ErrUnknownVersion, got %v", err)
			}
			if got != tt.expected {
				t.Errorf("FromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestURLRoundTrip(t *testing.T) {
	for _, v := range []schema.Version{schema.Draft, schema.V2025_10} {
		got, err := schema.FromURL(v.URL())
		if err != nil {
			t.Fatalf("FromURL(%s) error: %v", v.URL(), err)
		}
		if got != v {
			t.Errorf("FromURL(%s) = %v, want %v", v.URL(), got, v)
		}
	}
	if schema.Unknown.URL() != "" {
		t.Error("Unknown should have no URL")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]any
		fallback schema.Version
		expected schema.Version
	}{
		{
			name:     "explicit schema",
			data:     map[string]any{"$schema": "https://www.designtokens.org/schemas/2025.10.json"},
			expected: schema.V2025_10,
		},
		{
			name:     "fallback wins over duck typing",
			data:     map[string]any{"a": map[string]any{"$value": map[string]any{"$ref": "#/b"}}},
			fallback: schema.Draft,
			expected: schema.Draft,
		},
		{
			name: "nested $ref",
			data: map[string]any{
				"brand": map[string]any{"light": map[string]any{
					"a": map[string]any{"$value": map[string]any{"$ref": "#/b"}},
				}},
			},
			expected: schema.V2025_10,
		},
		{
			name: "structured color",
			data: map[string]any{
				"c": map[string]any{"$type": "color", "$value": map[string]any{"colorSpace": "srgb"}},
			},
			expected: schema.V2025_10,
		},
		{
			name:     "plain draft",
			data:     map[string]any{"c": map[string]any{"$type": "color", "$value": "#fff"}},
			expected: schema.Draft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schema.Detect(tt.data, tt.fallback); got != tt.expected {
				t.Errorf("Detect() = %v, want %v", got, tt.expected)
			}
		})
	}
}
