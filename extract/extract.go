/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package extract reads a host document's variables into a token tree.
package extract

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bennypowers.dev/varsync/codec"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/resolver"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// Options configures extraction.
type Options struct {
	// Collections limits extraction to collections whose lower-cased name
	// matches one of these doublestar patterns. Empty means all.
	Collections []string

	// SkipValidation disables the reference validation pass.
	SkipValidation bool
}

// Result is the outcome of an extraction.
type Result struct {
	Tokens             token.Tree            `json:"tokens"`
	ValidationProblems []resolver.Problem    `json:"validationProblems"`
	Corrections        []resolver.Correction `json:"corrections,omitempty"`
	// Warnings lists variables that could not be placed in the tree.
	Warnings []string `json:"warnings,omitempty"`
	// AliasPaths maps alias target id to the dotted path it encoded to.
	AliasPaths map[string]string `json:"-"`
}

// Extract walks every collection, mode, and variable of doc and builds a
// token tree keyed by lower-cased collection name, then mode name. Only a
// failure to enumerate collections or variables is an error; unresolved
// references are reported in ValidationProblems.
func Extract(ctx context.Context, doc host.Document, opts Options) (*Result, error) {
	collections, err := doc.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating collections: %w", schema.ErrHost, err)
	}
	variables, err := doc.Variables(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating variables: %w", schema.ErrHost, err)
	}
	if err := validatePatterns(opts.Collections); err != nil {
		return nil, err
	}

	byCollection := make(map[string][]host.Variable)
	for _, v := range variables {
		byCollection[v.CollectionID] = append(byCollection[v.CollectionID], v)
	}

	result := &Result{Tokens: token.Tree{}}
	cctx := codec.NewContext(variables)
	lower := cases.Lower(language.Und)
	seen := make(map[string]string)

	for _, c := range collections {
		name := lower.String(c.Name)
		if !matchesAny(opts.Collections, name) {
			continue
		}
		if prev, ok := seen[name]; ok && prev != c.ID {
			result.warn("collections %q and %q share the key %q; modes are merged", c.Name, prev, name)
		}
		seen[name] = c.ID

		for _, mode := range c.Modes {
			group := result.Tokens.Mode(name, mode.Name)
			for _, v := range byCollection[c.ID] {
				native, ok := v.ValuesByMode[mode.ID]
				if !ok {
					continue
				}
				value := codec.Encode(native, v.ResolvedType, cctx)
				if value == nil {
					result.warn("%s/%s: %q has no encodable value", name, mode.Name, v.Name)
					continue
				}
				tok := &token.Token{
					Value: value,
					Type:  codec.InferType(v.ResolvedType, value),
				}
				if err := group.Set(token.SplitName(v.Name), tok); err != nil {
					result.warn("%s/%s: %q: %v", name, mode.Name, v.Name, err)
				}
			}
		}
	}

	result.AliasPaths = cctx.AliasPaths
	if !opts.SkipValidation {
		result.Tokens, result.ValidationProblems, result.Corrections =
			resolver.ValidateAndFixReferences(result.Tokens, cctx.AliasPaths)
	}
	for _, p := range result.ValidationProblems {
		logger.Debug("unresolved reference: %s", p)
	}
	return result, nil
}

func (r *Result) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

func validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid collection pattern %q", p)
		}
	}
	return nil
}

func matchesAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
