/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"fmt"
	"strings"

	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// Resolution is the outcome of resolving one reference.
type Resolution struct {
	Value             any
	Type              string
	IsResolved        bool
	ResolvedFrom      string // dotted path of the token that supplied Value
	OriginalReference string
	// Chain lists the token paths visited, in order.
	Chain []string
	// Err is ErrCircularReference or ErrUnresolvedReference when unresolved.
	Err error
}

// Resolve resolves a {path} reference. Chains of references are followed;
// a reference that revisits a path is circular and left unresolved.
func (idx *Index) Resolve(ref string) Resolution {
	return idx.resolve(ref, ref, make(map[string]bool), nil)
}

func (idx *Index) resolve(ref, original string, visited map[string]bool, chain []string) Resolution {
	refPath := token.StripBraces(ref)
	if visited[refPath] {
		logger.Warn("circular reference detected resolving %s at %s", original, refPath)
		return unresolved(original, chain, fmt.Errorf("%w: %s", schema.ErrCircularReference, strings.Join(append(chain, refPath), " -> ")))
	}
	visited[refPath] = true

	entry, ok := idx.find(refPath)
	if !ok {
		return unresolved(original, chain, fmt.Errorf("%w: %s", schema.ErrUnresolvedReference, original))
	}
	chain = append(chain, entry.OriginalPath)

	if token.IsReference(entry.Value) {
		return idx.resolve(entry.Value.(string), original, visited, chain)
	}
	return Resolution{
		Value:             entry.Value,
		Type:              entry.Type,
		IsResolved:        true,
		ResolvedFrom:      entry.OriginalPath,
		OriginalReference: original,
		Chain:             chain,
	}
}

// find tries the exact key, the other delimiter, the last segment, then
// fuzzy matching.
func (idx *Index) find(refPath string) (Entry, bool) {
	if e, ok := idx.entries[refPath]; ok {
		return e, true
	}

	var alt string
	switch {
	case strings.Contains(refPath, "."):
		alt = token.DotsToSlashes(refPath)
	case strings.Contains(refPath, "/"):
		alt = token.SlashesToDots(refPath)
	}
	if alt != "" {
		if e, ok := idx.entries[alt]; ok {
			return e, true
		}
	}

	if segs := token.SplitPath(refPath); len(segs) > 1 {
		if e, ok := idx.entries[segs[len(segs)-1]]; ok {
			return e, true
		}
	}

	if m, ok := idx.FuzzyMatch(refPath); ok {
		logger.Debug("fuzzy matched %s to %s (score %.2f)", refPath, m.Key, m.Score)
		return idx.entries[m.Key], true
	}
	return Entry{}, false
}

func unresolved(original string, chain []string, err error) Resolution {
	return Resolution{
		Value:             original,
		Type:              token.TypeReference,
		IsResolved:        false,
		OriginalReference: original,
		Chain:             chain,
		Err:               err,
	}
}
