/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import "bennypowers.dev/varsync/token"

// Annotate returns a copy of the tree in which every resolvable reference
// token records $resolvedFrom and $originalValue. $value is left as is.
func Annotate(tree token.Tree) token.Tree {
	return resolveEach(tree, func(tok *token.Token, res Resolution) {
		tok.ResolvedFrom = res.ResolvedFrom
		tok.OriginalValue = res.OriginalReference
	})
}

// ResolveValues returns a copy of the tree with every resolvable reference
// replaced by its final value. Replaced tokens keep the reference in
// $originalValue and take the target's type when theirs is "reference".
func ResolveValues(tree token.Tree) token.Tree {
	return resolveEach(tree, func(tok *token.Token, res Resolution) {
		tok.ResolvedFrom = res.ResolvedFrom
		tok.OriginalValue = res.OriginalReference
		tok.Value = res.Value
		if tok.Type == token.TypeReference {
			tok.Type = res.Type
		}
	})
}

// resolveEach clones the tree and calls fn for every reference token that
// resolves. Each mode group is resolved against its own index first, then
// against the whole tree.
func resolveEach(tree token.Tree, fn func(*token.Token, Resolution)) token.Tree {
	out := tree.Clone()
	global := BuildIndex(tree.Clone())
	for _, c := range out.CollectionNames() {
		for _, m := range out.ModeNames(c) {
			group := out[c][m]
			if group == nil {
				continue
			}
			local := BuildGroupIndex(group.Clone())
			_ = group.Walk(func(_ []string, tok *token.Token) error {
				if !tok.IsReference() {
					return nil
				}
				ref := tok.Value.(string)
				res := local.Resolve(ref)
				if !res.IsResolved {
					res = global.Resolve(ref)
				}
				if res.IsResolved {
					fn(tok, res)
				}
				return nil
			})
		}
	}
	return out
}

// ResolveIn resolves ref as seen from one mode. That mode's tokens take
// precedence over same-named tokens elsewhere in the tree, so a chain
// starting in the mode stays in it where it can. An empty collection or
// mode resolves against the whole tree. opts tunes fuzzy matching.
func ResolveIn(tree token.Tree, collection, mode, ref string, opts Options) Resolution {
	if !token.IsReference(ref) {
		ref = token.MakeReference(ref)
	}
	return BuildModeIndex(tree, collection, mode, opts).Resolve(ref)
}

// BuildModeIndex indexes the whole tree with the tokens of one mode added
// first, so they win over same-named tokens in other modes.
func BuildModeIndex(tree token.Tree, collection, mode string, opts Options) *Index {
	tree = tree.Clone()
	idx := NewIndex(opts)
	if group := tree[collection][mode]; group != nil {
		_ = group.Walk(func(path []string, tok *token.Token) error {
			idx.Add(path, tok.Value, tok.Type)
			return nil
		})
	}
	_ = tree.Walk(func(_, _ string, path []string, tok *token.Token) error {
		idx.Add(path, tok.Value, tok.Type)
		return nil
	})
	return idx
}
