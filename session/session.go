/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package session holds the per-process state shared by the extract, format,
// and update operations exposed to a UI: the last extraction per document
// and the run-once startup extraction.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"bennypowers.dev/varsync/convert"
	"bennypowers.dev/varsync/extract"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/importer"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/token"
)

// DefaultCacheSize is the number of documents whose extraction is kept.
const DefaultCacheSize = 16

// ErrNotExtracted is returned when an operation needs a cached extraction
// and none exists for the document.
var ErrNotExtracted = errors.New("document has not been extracted")

// Opener returns the host document for a key, such as a file path.
type Opener func(ctx context.Context, key string) (host.Document, error)

// Saver is implemented by documents that persist themselves after an update.
type Saver interface {
	Save(ctx context.Context) error
}

// Options configures a session.
type Options struct {
	Extract   extract.Options
	Import    importer.Options
	CacheSize int
}

// Session caches extraction results by document key.
//
// Pipelines are not safe to run concurrently against the same document;
// the mutex only guards the cache.
type Session struct {
	open Opener
	opts Options

	mu      sync.Mutex
	results *lru.Cache[string, *extract.Result]

	startup       sync.Once
	startupResult *extract.Result
	startupErr    error
}

// New creates a session that opens documents with open.
func New(open Opener, opts Options) (*Session, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *extract.Result](size)
	if err != nil {
		return nil, fmt.Errorf("creating extraction cache: %w", err)
	}
	return &Session{open: open, opts: opts, results: cache}, nil
}

// StartupExtract extracts key the first time it is called and returns that
// same result on every later call, whatever key they pass.
func (s *Session) StartupExtract(ctx context.Context, key string) (*extract.Result, error) {
	s.startup.Do(func() {
		s.startupResult, s.startupErr = s.Extract(ctx, key)
	})
	return s.startupResult, s.startupErr
}

// Extract returns the cached extraction for key, extracting on a miss.
func (s *Session) Extract(ctx context.Context, key string) (*extract.Result, error) {
	if res, ok := s.cached(key); ok {
		logger.Debug("extraction cache hit for %s", key)
		return res, nil
	}
	return s.Refresh(ctx, key)
}

// Refresh extracts key from the host document and replaces the cached result.
func (s *Session) Refresh(ctx context.Context, key string) (*extract.Result, error) {
	doc, err := s.open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", key, err)
	}
	res, err := extract.Extract(ctx, doc, s.opts.Extract)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.results.Add(key, res)
	s.mu.Unlock()
	return res, nil
}

// ApplyColorFormat re-renders the cached tree for key without touching the
// host document.
func (s *Session) ApplyColorFormat(key string, format convert.ColorFormat) (token.Tree, error) {
	res, ok := s.cached(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotExtracted, key)
	}
	return convert.ApplyColorFormat(res.Tokens, format), nil
}

// Update applies an edited tree to the document for key, saves the document
// when it can save itself, and drops the cached extraction.
func (s *Session) Update(ctx context.Context, key string, tree any) importer.Result {
	doc, err := s.open(ctx, key)
	if err != nil {
		return importer.Result{Error: fmt.Sprintf("opening %s: %v", key, err)}
	}
	if t, ok := tree.(token.Tree); ok {
		tree = t.Clone()
	}

	res := importer.Apply(ctx, tree, doc, s.opts.Import)
	if !res.Success {
		return res
	}
	s.Invalidate(key)

	if saver, ok := doc.(Saver); ok {
		if err := saver.Save(ctx); err != nil {
			res.Success = false
			res.Error = fmt.Sprintf("saving %s: %v", key, err)
		}
	}
	return res
}

// Invalidate drops the cached extraction for key.
func (s *Session) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results.Remove(key)
}

func (s *Session) cached(key string) (*extract.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.Get(key)
}
