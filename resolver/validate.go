/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"fmt"
	"sort"
	"strings"

	"bennypowers.dev/varsync/token"
)

// Problem is a reference that could not be found or fixed.
type Problem struct {
	Collection string `json:"collection"`
	Mode       string `json:"mode"`
	Path       string `json:"path"`
	Reference  string `json:"reference"`
	Message    string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s/%s %s: %s", p.Collection, p.Mode, p.Path, p.Message)
}

// Correction is a reference rewritten by validation.
type Correction struct {
	Collection string `json:"collection"`
	Mode       string `json:"mode"`
	Path       string `json:"path"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// ValidateAndFixReferences checks that every reference names an existing
// token, first in its own mode group and then anywhere in the tree. Broken
// references are rewritten to an alias path that shares a suffix or prefix
// with them; those that cannot be fixed are reported and left as they are.
// The input tree is not modified.
func ValidateAndFixReferences(tree token.Tree, aliasPaths map[string]string) (token.Tree, []Problem, []Correction) {
	out := tree.Clone()
	candidates := uniqueSorted(aliasPaths)

	var problems []Problem
	var corrections []Correction
	for _, c := range out.CollectionNames() {
		for _, m := range out.ModeNames(c) {
			group := out[c][m]
			if group == nil {
				continue
			}
			_ = group.Walk(func(path []string, tok *token.Token) error {
				refPath, ok := token.ReferencePath(tok.Value)
				if !ok {
					return nil
				}
				if _, ok := lookup(out, group, refPath); ok {
					return nil
				}
				dotted := strings.Join(path, ".")
				if fix, ok := findFix(out, group, refPath, candidates); ok {
					to := token.MakeReference(fix)
					corrections = append(corrections, Correction{
						Collection: c, Mode: m, Path: dotted,
						From: tok.Value.(string), To: to,
					})
					tok.Value = to
					if target, ok := lookup(out, group, fix); ok && tok.Type == token.TypeReference {
						tok.Type = target.Type
					}
					return nil
				}
				problems = append(problems, Problem{
					Collection: c, Mode: m, Path: dotted,
					Reference: tok.Value.(string),
					Message:   fmt.Sprintf("reference %s does not name a token", tok.Value),
				})
				return nil
			})
		}
	}
	return out, problems, corrections
}

// lookup finds refPath in the group, then in any mode group, then as a
// collection.mode.path address.
func lookup(tree token.Tree, group *token.Group, refPath string) (*token.Token, bool) {
	segs := token.SplitPath(refPath)
	if len(segs) == 0 {
		return nil, false
	}
	if tok, ok := group.Token(segs); ok {
		return tok, true
	}
	for _, c := range tree.CollectionNames() {
		for _, m := range tree.ModeNames(c) {
			if g := tree[c][m]; g != nil {
				if tok, ok := g.Token(segs); ok {
					return tok, true
				}
			}
		}
	}
	if len(segs) > 2 {
		if g := tree[segs[0]][segs[1]]; g != nil {
			return g.Token(segs[2:])
		}
	}
	return nil, false
}

type fixCandidate struct {
	path   string
	exists bool
	suffix bool
}

// findFix picks the best alias path for a broken reference: existing
// targets first, suffix matches before prefix matches, then the longest path.
func findFix(tree token.Tree, group *token.Group, ref string, candidates []string) (string, bool) {
	var matches []fixCandidate
	for _, cand := range candidates {
		if cand == ref {
			continue
		}
		var fc fixCandidate
		switch {
		case strings.HasSuffix(cand, "."+ref), strings.HasSuffix(ref, "."+cand):
			fc = fixCandidate{path: cand, suffix: true}
		case strings.HasPrefix(cand, ref+"."), strings.HasPrefix(ref, cand+"."):
			fc = fixCandidate{path: cand}
		default:
			continue
		}
		_, fc.exists = lookup(tree, group, cand)
		matches = append(matches, fc)
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.exists != b.exists {
			return a.exists
		}
		if a.suffix != b.suffix {
			return a.suffix
		}
		if len(a.path) != len(b.path) {
			return len(a.path) > len(b.path)
		}
		return a.path < b.path
	})
	return matches[0].path, true
}

func uniqueSorted(m map[string]string) []string {
	seen := make(map[string]bool, len(m))
	out := make([]string, 0, len(m))
	for _, v := range m {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
