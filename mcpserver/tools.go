/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"bennypowers.dev/varsync/convert"
	"bennypowers.dev/varsync/importer"
	"bennypowers.dev/varsync/resolver"
)

// ExtractInput is the input of the extract tool.
type ExtractInput struct {
	Document    string `json:"document,omitempty" jsonschema:"document to extract; defaults to the configured document"`
	Refresh     bool   `json:"refresh,omitempty" jsonschema:"re-read the document instead of using the cached extraction"`
	ColorFormat string `json:"colorFormat,omitempty" jsonschema:"hex, rgba, or hsla"`
}

// ExtractOutput is the result of the extract tool.
type ExtractOutput struct {
	Tokens             map[string]any        `json:"tokens"`
	ValidationProblems []resolver.Problem    `json:"validationProblems,omitempty"`
	Corrections        []resolver.Correction `json:"corrections,omitempty"`
	Warnings           []string              `json:"warnings,omitempty"`
}

func (s *Server) handleExtract(ctx context.Context, _ *mcp.CallToolRequest, in ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
	key, err := s.key(in.Document)
	if err != nil {
		return nil, ExtractOutput{}, err
	}
	format, err := convert.ParseColorFormat(in.ColorFormat)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	extractFn := s.session.Extract
	if in.Refresh {
		extractFn = s.session.Refresh
	}
	res, err := extractFn(ctx, key)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	tree := convert.ApplyColorFormat(res.Tokens, format)
	return nil, ExtractOutput{
		Tokens:             tree.ToMap(),
		ValidationProblems: res.ValidationProblems,
		Corrections:        res.Corrections,
		Warnings:           res.Warnings,
	}, nil
}

// UpdateInput is the input of the update tool.
type UpdateInput struct {
	Document string         `json:"document,omitempty" jsonschema:"document to update; defaults to the configured document"`
	Tokens   map[string]any `json:"tokens" jsonschema:"token tree keyed by collection, then mode"`
}

func (s *Server) handleUpdate(ctx context.Context, _ *mcp.CallToolRequest, in UpdateInput) (*mcp.CallToolResult, importer.Result, error) {
	key, err := s.key(in.Document)
	if err != nil {
		return nil, importer.Result{}, err
	}
	res := s.session.Update(ctx, key, in.Tokens)
	if !res.Success {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: res.Error}},
		}, res, nil
	}
	return nil, res, nil
}

// ColorFormatInput is the input of the apply_color_format tool.
type ColorFormatInput struct {
	Document    string `json:"document,omitempty" jsonschema:"document whose cached extraction to re-render"`
	ColorFormat string `json:"colorFormat" jsonschema:"hex, rgba, or hsla"`
}

// TreeOutput carries a token tree.
type TreeOutput struct {
	Tokens map[string]any `json:"tokens"`
}

func (s *Server) handleApplyColorFormat(_ context.Context, _ *mcp.CallToolRequest, in ColorFormatInput) (*mcp.CallToolResult, TreeOutput, error) {
	key, err := s.key(in.Document)
	if err != nil {
		return nil, TreeOutput{}, err
	}
	format, err := convert.ParseColorFormat(in.ColorFormat)
	if err != nil {
		return nil, TreeOutput{}, err
	}
	tree, err := s.session.ApplyColorFormat(key, format)
	if err != nil {
		return nil, TreeOutput{}, fmt.Errorf("%w; call extract first", err)
	}
	return nil, TreeOutput{Tokens: tree.ToMap()}, nil
}

// ResolveInput is the input of the resolve tool.
type ResolveInput struct {
	Document   string `json:"document,omitempty" jsonschema:"document to resolve against"`
	Reference  string `json:"reference" jsonschema:"reference such as {colors.primary} or colors.primary"`
	Collection string `json:"collection,omitempty" jsonschema:"collection to resolve from first"`
	Mode       string `json:"mode,omitempty" jsonschema:"mode to resolve from first"`
}

// ResolveOutput is the result of the resolve tool.
type ResolveOutput struct {
	Resolved     bool     `json:"resolved"`
	Value        any      `json:"value,omitempty"`
	Type         string   `json:"type,omitempty"`
	ResolvedFrom string   `json:"resolvedFrom,omitempty"`
	Chain        []string `json:"chain,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func (s *Server) handleResolve(ctx context.Context, _ *mcp.CallToolRequest, in ResolveInput) (*mcp.CallToolResult, ResolveOutput, error) {
	key, err := s.key(in.Document)
	if err != nil {
		return nil, ResolveOutput{}, err
	}
	if in.Reference == "" {
		return nil, ResolveOutput{}, fmt.Errorf("reference is required")
	}
	res, err := s.session.Extract(ctx, key)
	if err != nil {
		return nil, ResolveOutput{}, err
	}

	r := resolver.ResolveIn(res.Tokens, in.Collection, in.Mode, in.Reference, s.resolver)
	out := ResolveOutput{
		Resolved: r.IsResolved,
		Type:     r.Type,
		Chain:    r.Chain,
	}
	if r.IsResolved {
		out.Value = r.Value
		out.ResolvedFrom = r.ResolvedFrom
	} else if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return nil, out, nil
}
