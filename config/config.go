/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config provides configuration loading for varsync.
package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"bennypowers.dev/varsync/convert"
	"bennypowers.dev/varsync/extract"
	"bennypowers.dev/varsync/parser"
	"bennypowers.dev/varsync/resolver"
	"bennypowers.dev/varsync/schema"
)

// Config represents the varsync configuration.
type Config struct {
	// Document is the host document file extracted from and imported into.
	Document string `yaml:"document" json:"document"`

	// Files specifies token files to load (paths or globs).
	Files []FileSpec `yaml:"files" json:"files"`

	// Output is the file extracted tokens are written to. Empty means stdout.
	Output string `yaml:"output" json:"output"`

	// Format is the output format: dtcg, json, or style-dictionary.
	Format string `yaml:"format" json:"format"`

	// ColorFormat is hex, rgba, or hsla.
	ColorFormat string `yaml:"colorFormat" json:"colorFormat"`

	// Collections and Modes are doublestar patterns limiting output.
	Collections []string `yaml:"collections" json:"collections"`
	Modes       []string `yaml:"modes" json:"modes"`

	// Flatten collapses nested groups into Delimiter-joined keys.
	Flatten   bool   `yaml:"flatten" json:"flatten"`
	Delimiter string `yaml:"delimiter" json:"delimiter"`

	// Prefix is added to flattened output names.
	Prefix string `yaml:"prefix" json:"prefix"`

	// Schema forces a specific schema version (optional).
	// Valid values: "draft", "v2025_10"
	Schema string `yaml:"schema" json:"schema"`

	// Resolver tunes fuzzy reference matching.
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`
}

// ResolverConfig holds fuzzy matching thresholds. Nil fields keep defaults.
type ResolverConfig struct {
	SegmentScore   *float64 `yaml:"segmentScore" json:"segmentScore"`
	MinSuffixScore *float64 `yaml:"minSuffixScore" json:"minSuffixScore"`
}

// FileSpec represents a token file specification.
// It can be specified as a simple string path or as an object with overrides.
type FileSpec struct {
	// Path is the file path (supports globs).
	Path string `yaml:"path" json:"path"`

	// Schema overrides the global schema version for this file.
	Schema string `yaml:"schema" json:"schema"`
}

// UnmarshalYAML handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}

	type rawFileSpec FileSpec
	return node.Decode((*rawFileSpec)(f))
}

// UnmarshalJSON handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Path = s
		return nil
	}

	type rawFileSpec FileSpec
	return json.Unmarshal(data, (*rawFileSpec)(f))
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		Format:      string(convert.FormatDTCG),
		ColorFormat: string(convert.ColorHex),
		Delimiter:   "-",
	}
}

// SchemaVersion returns the parsed schema version from the Schema field.
// Returns schema.Unknown if the field is empty or invalid.
func (c *Config) SchemaVersion() schema.Version {
	return parseVersion(c.Schema)
}

func parseVersion(s string) schema.Version {
	if s == "" {
		return schema.Unknown
	}
	v, err := schema.FromString(s)
	if err != nil {
		return schema.Unknown
	}
	return v
}

// OptionsForFile returns parser.Options with configuration applied.
// File-level overrides take precedence over global config.
func (c *Config) OptionsForFile(path string) parser.Options {
	opts := parser.Options{SchemaVersion: c.SchemaVersion()}
	for _, spec := range c.Files {
		if spec.Path == path {
			if v := parseVersion(spec.Schema); v != schema.Unknown {
				opts.SchemaVersion = v
			}
			break
		}
	}
	return opts
}

// FilePaths returns the list of file paths from all FileSpecs.
func (c *Config) FilePaths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, spec := range c.Files {
		paths = append(paths, spec.Path)
	}
	return paths
}

// ConvertOptions returns serialization options. Invalid format names fall
// back to their defaults.
func (c *Config) ConvertOptions() convert.Options {
	format, err := convert.ParseFormat(c.Format)
	if err != nil {
		format = convert.FormatDTCG
	}
	colorFormat, err := convert.ParseColorFormat(c.ColorFormat)
	if err != nil {
		colorFormat = convert.ColorHex
	}
	return convert.Options{
		OutputSchema: c.SchemaVersion(),
		Flatten:      c.Flatten,
		Delimiter:    c.Delimiter,
		Format:       format,
		ColorFormat:  colorFormat,
		Prefix:       c.Prefix,
	}
}

// ExtractOptions returns extraction options.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{Collections: c.Collections}
}

// ResolverOptions returns fuzzy matching options over the defaults.
func (c *Config) ResolverOptions() resolver.Options {
	opts := resolver.DefaultOptions()
	if c.Resolver.SegmentScore != nil {
		opts.SegmentScore = *c.Resolver.SegmentScore
	}
	if c.Resolver.MinSuffixScore != nil {
		opts.MinSuffixScore = *c.Resolver.MinSuffixScore
	}
	return opts
}
