/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mcpserver exposes the extraction and sync-back pipelines as MCP
// tools over stdio.
package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/internal/version"
	"bennypowers.dev/varsync/resolver"
	"bennypowers.dev/varsync/session"
)

// Options configures a Server.
type Options struct {
	// Document is the key used when a tool call names no document. It may
	// be empty if every call names one.
	Document string

	// Resolver tunes fuzzy matching in the resolve tool.
	Resolver resolver.Options
}

// Server serves varsync tools backed by a session.
type Server struct {
	mcp      *mcp.Server
	session  *session.Session
	document string
	resolver resolver.Options
}

// NewServer creates a server.
func NewServer(sess *session.Session, opts Options) *Server {
	s := &Server{session: sess, document: opts.Document, resolver: opts.Resolver}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    version.Name,
		Version: version.Get(),
	}, nil)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "extract",
		Description: "Extract the document's variables as a DTCG token tree, with reference problems and corrections.",
	}, s.handleExtract)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update",
		Description: "Write an edited token tree back into the document and save it.",
	}, s.handleUpdate)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "apply_color_format",
		Description: "Re-render the last extracted tree's colors as hex, rgba, or hsla without touching the document.",
	}, s.handleApplyColorFormat)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "resolve",
		Description: "Resolve a {path} reference against the extracted tree and report the chain it followed.",
	}, s.handleResolve)

	return s
}

// Run extracts the default document once, then serves on stdin/stdout until
// ctx is done or the client disconnects. Logs are the caller's concern:
// stdout belongs to the protocol.
func (s *Server) Run(ctx context.Context) error {
	if s.document != "" {
		if _, err := s.session.StartupExtract(ctx, s.document); err != nil {
			logger.Warn("startup extraction of %s failed: %v", s.document, err)
		}
	}
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) key(document string) (string, error) {
	if document != "" {
		return document, nil
	}
	if s.document == "" {
		return "", errors.New("no document given and no default configured")
	}
	return s.document, nil
}
