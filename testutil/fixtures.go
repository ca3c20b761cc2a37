/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package testutil provides testing utilities for varsync.
package testutil

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/host/memdoc"
	"bennypowers.dev/varsync/internal/mapfs"
)

// updateGolden enables updating golden files with actual output when -update flag is set.
var updateGolden = flag.Bool("update", false, "update golden files with actual output")

// NewFixtureFS loads fixture files from testdata and returns a MapFileSystem
// with files mapped to the specified root path.
func NewFixtureFS(t *testing.T, fixtureDir string, rootPath string) *mapfs.MapFileSystem {
	t.Helper()

	mfs := mapfs.New()

	// Try multiple possible paths since Go test changes working directory
	possiblePaths := []string{
		filepath.Join("testdata", fixtureDir),
		filepath.Join("..", "testdata", fixtureDir),
		filepath.Join("..", "..", "testdata", fixtureDir),
	}

	var fixturePath string
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			fixturePath = path
			break
		}
	}
	if fixturePath == "" {
		t.Fatalf("Could not find fixtures at %s (tried all paths)", fixtureDir)
	}

	// Walk fixture directory and load all files
	err := filepath.WalkDir(fixturePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fixturePath, path)
		if err != nil {
			return err
		}

		virtualPath := filepath.Join(rootPath, relPath)
		mfs.AddFile(filepath.ToSlash(virtualPath), string(content))

		return nil
	})

	if err != nil {
		t.Fatalf("Failed to load fixtures from %s: %v", fixtureDir, err)
	}

	return mfs
}

// LoadFixtureFile reads a single fixture file and returns its content.
func LoadFixtureFile(t *testing.T, fixturePath string) []byte {
	t.Helper()

	possiblePaths := []string{
		filepath.Join("testdata", fixturePath),
		filepath.Join("..", "testdata", fixturePath),
		filepath.Join("..", "..", "testdata", fixturePath),
	}

	for _, path := range possiblePaths {
		content, err := os.ReadFile(path)
		if err == nil {
			return content
		}
	}
	t.Fatalf("Failed to read fixture %s (tried all paths)", fixturePath)
	return nil
}

// UpdateGoldenFile writes actual output to the golden file when -update flag is set.
func UpdateGoldenFile(t *testing.T, goldenPath string, actual []byte) {
	t.Helper()
	if !*updateGolden {
		return
	}

	possiblePaths := []string{
		filepath.Join("testdata", goldenPath),
		filepath.Join("..", "testdata", goldenPath),
		filepath.Join("..", "..", "testdata", goldenPath),
	}

	var targetPath string
	for _, path := range possiblePaths {
		parentDir := filepath.Dir(path)
		if _, err := os.Stat(parentDir); err == nil {
			targetPath = path
			break
		}
	}
	if targetPath == "" {
		targetPath = possiblePaths[0]
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		t.Fatalf("Failed to create directory for golden file %s: %v", goldenPath, err)
	}

	if err := os.WriteFile(targetPath, actual, 0644); err != nil {
		t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
	}

	t.Logf("Updated golden file: %s", targetPath)
}

// LoadDocument loads a memdoc fixture from testdata.
func LoadDocument(t *testing.T, fixturePath string) *memdoc.Document {
	t.Helper()
	doc, err := memdoc.Load(LoadFixtureFile(t, fixturePath))
	if err != nil {
		t.Fatalf("Failed to load document fixture %s: %v", fixturePath, err)
	}
	return doc.WithIDs(SequentialIDs())
}

// SequentialIDs returns an id generator producing kind:1, kind:2, ...
func SequentialIDs() func(string) string {
	n := 0
	return func(kind string) string {
		n++
		return fmt.Sprintf("%s:%d", kind, n)
	}
}

// Builder populates a memdoc.Document, failing the test on any host error.
type Builder struct {
	t   *testing.T
	ctx context.Context
	Doc *memdoc.Document
}

// NewBuilder creates an empty document with sequential ids.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, ctx: context.Background(), Doc: memdoc.New().WithIDs(SequentialIDs())}
}

// Collection creates a collection whose modes have the given names.
// The first name replaces the default mode.
func (b *Builder) Collection(name string, modes ...string) host.Collection {
	b.t.Helper()
	c, err := b.Doc.CreateCollection(b.ctx, name)
	b.check(err)
	for i, m := range modes {
		if i == 0 {
			b.check(b.Doc.RenameMode(b.ctx, c.ID, c.Modes[0].ID, m))
			c.Modes[0].Name = m
			continue
		}
		id, err := b.Doc.AddMode(b.ctx, c.ID, m)
		b.check(err)
		c.Modes = append(c.Modes, host.Mode{ID: id, Name: m})
	}
	return c
}

// Variable creates a variable and sets the given value for every mode of c.
// A nil value leaves the variable without values.
func (b *Builder) Variable(c host.Collection, name string, typ host.NativeType, value any) host.Variable {
	b.t.Helper()
	v, err := b.Doc.CreateVariable(b.ctx, name, c.ID, typ)
	b.check(err)
	if value == nil {
		return v
	}
	for _, m := range c.Modes {
		b.check(b.Doc.SetValueForMode(b.ctx, v.ID, m.ID, value))
	}
	return v
}

// Set writes one mode's value.
func (b *Builder) Set(v host.Variable, modeID string, value any) {
	b.t.Helper()
	b.check(b.Doc.SetValueForMode(b.ctx, v.ID, modeID, value))
}

func (b *Builder) check(err error) {
	b.t.Helper()
	if err != nil {
		b.t.Fatalf("host error: %v", err)
	}
}

// FailingDocument is a host document whose enumeration calls fail.
type FailingDocument struct {
	host.Document
	Err error
}

// Collections implements host.Document.
func (d FailingDocument) Collections(context.Context) ([]host.Collection, error) {
	return nil, d.Err
}

// Variables implements host.Document.
func (d FailingDocument) Variables(context.Context) ([]host.Variable, error) {
	return nil, d.Err
}
