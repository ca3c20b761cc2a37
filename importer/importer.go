/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package importer applies an edited token tree back to a host document.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"

	"bennypowers.dev/varsync/codec"
	"bennypowers.dev/varsync/host"
	"bennypowers.dev/varsync/internal/logger"
	"bennypowers.dev/varsync/parser"
	"bennypowers.dev/varsync/schema"
	"bennypowers.dev/varsync/token"
)

// Options configures an import.
type Options struct {
	// Collections limits the import to tree collections whose key matches
	// one of these doublestar patterns. Empty means all.
	Collections []string
}

// Result summarizes an import.
type Result struct {
	Success bool `json:"success"`
	// Created counts variables created.
	Created int `json:"created"`
	// Updated counts variables that existed before the import and had at
	// least one value written.
	Updated int `json:"updated"`
	// Collections counts collections created.
	Collections int `json:"collections"`
	// Modes counts modes created.
	Modes int `json:"modes"`
	// Renamed counts collections and modes renamed.
	Renamed  int      `json:"renamed"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Apply reconciles tree against doc: collections and modes are matched by
// case-insensitive name, renamed when exactly one is orphaned, and created
// otherwise; then every token is written as a variable value. tree must be a
// token.Tree, a decoded JSON object, or raw JSON/YAML bytes.
//
// Per-token failures become warnings, as do collections and modes in the
// payload that are not objects. Only a payload that is not an object or a
// failed enumeration makes the result unsuccessful. Writes already applied are not
// rolled back.
func Apply(ctx context.Context, tree any, doc host.Document, opts Options) Result {
	edited, skipped, err := toTree(tree)
	if err != nil {
		return failure(err)
	}

	collections, err := doc.Collections(ctx)
	if err != nil {
		return failure(fmt.Errorf("%w: enumerating collections: %w", schema.ErrHost, err))
	}
	variables, err := doc.Variables(ctx)
	if err != nil {
		return failure(fmt.Errorf("%w: enumerating variables: %w", schema.ErrHost, err))
	}

	run := newRun(doc, collections, variables)
	for _, err := range skipped {
		run.warn("skipping %v", err)
	}
	run.apply(ctx, edited, opts)
	return run.result()
}

func failure(err error) Result {
	logger.Warn("import failed: %v", err)
	return Result{Success: false, Error: err.Error()}
}

// toTree accepts the payload shapes the import boundary receives.
// Collections and modes that are not objects are left out and returned as
// skipped.
func toTree(v any) (token.Tree, []error, error) {
	switch x := v.(type) {
	case token.Tree:
		if x == nil {
			return nil, nil, fmt.Errorf("%w: nil tree", schema.ErrInvalidPayload)
		}
		return x.Clone(), nil, nil
	case map[string]any:
		if x == nil {
			return nil, nil, fmt.Errorf("%w: nil object", schema.ErrInvalidPayload)
		}
		t, skipped := token.TreeFromMapSkipping(x)
		return t, skipped, nil
	case []byte:
		return decodePayload(x)
	case json.RawMessage:
		return decodePayload(x)
	default:
		return nil, nil, fmt.Errorf("%w: expected an object, got %T", schema.ErrInvalidPayload, v)
	}
}

func decodePayload(data []byte) (token.Tree, []error, error) {
	raw, err := parser.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", schema.ErrInvalidPayload, err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("%w: expected an object", schema.ErrInvalidPayload)
	}
	t, skipped := token.TreeFromMapSkipping(parser.Normalize(raw, schema.Detect(raw, schema.Unknown)))
	return t, skipped, nil
}

// run holds the state of one import. Nothing is shared between runs.
type run struct {
	doc         host.Document
	collections []host.Collection
	// byCollection caches variables by collection id, then name.
	byCollection map[string]map[string]host.Variable
	// global resolves references by name across all collections.
	global codec.VariableSet
	fold   cases.Caser

	// created lists collections created this run, by id.
	created map[string]bool
	// existing holds the ids of variables enumerated before the run.
	existing map[string]bool
	// updated holds the ids of existing variables written this run.
	updated           map[string]bool
	renamedCollection bool

	res      Result
	warnings []string
	seen     map[string]bool
}

func newRun(doc host.Document, collections []host.Collection, variables []host.Variable) *run {
	r := &run{
		doc:          doc,
		collections:  collections,
		byCollection: make(map[string]map[string]host.Variable),
		global:       codec.NewVariableSet(variables),
		fold:         cases.Fold(),
		created:      make(map[string]bool),
		existing:     make(map[string]bool, len(variables)),
		updated:      make(map[string]bool),
		seen:         make(map[string]bool),
	}
	for _, v := range variables {
		r.existing[v.ID] = true
		r.remember(v)
	}
	return r
}

func (r *run) remember(v host.Variable) {
	vars, ok := r.byCollection[v.CollectionID]
	if !ok {
		vars = make(map[string]host.Variable)
		r.byCollection[v.CollectionID] = vars
	}
	if _, exists := vars[v.Name]; !exists {
		vars[v.Name] = v
	}
	r.global.Add(v)
}

func (r *run) apply(ctx context.Context, tree token.Tree, opts Options) {
	keys := filterKeys(tree.CollectionNames(), opts.Collections)
	for _, key := range keys {
		coll, ok := r.reconcileCollection(ctx, key, keys)
		if !ok {
			continue
		}
		modeNames := tree.ModeNames(key)
		for _, modeName := range modeNames {
			modeID, ok := r.reconcileMode(ctx, coll, modeName, modeNames)
			if !ok {
				continue
			}
			r.applyGroup(ctx, coll, modeID, tree[key][modeName])
		}
	}
}

func (r *run) result() Result {
	r.res.Success = true
	r.res.Warnings = r.warnings
	return r.res
}

// warn records a deduplicated warning.
func (r *run) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.seen[msg] {
		return
	}
	r.seen[msg] = true
	logger.Warn("%s", msg)
	r.warnings = append(r.warnings, msg)
}

func (r *run) same(a, b string) bool {
	return r.fold.String(a) == r.fold.String(b)
}

// reconcileCollection finds, renames, or creates the collection for key.
// It returns an index into r.collections.
func (r *run) reconcileCollection(ctx context.Context, key string, keys []string) (int, bool) {
	for i, c := range r.collections {
		if r.same(c.Name, key) {
			return i, true
		}
	}

	if !r.renamedCollection && len(keys) == len(r.collections) && len(r.created) == 0 {
		if orphan, ok := r.soleOrphanCollection(keys); ok {
			old := r.collections[orphan].Name
			if err := r.doc.RenameCollection(ctx, r.collections[orphan].ID, key); err != nil {
				r.warn("renaming collection %q to %q: %v", old, key, err)
			} else {
				logger.Info("renamed collection %q to %q", old, key)
				r.collections[orphan].Name = key
				r.renamedCollection = true
				r.res.Renamed++
				return orphan, true
			}
		}
	}

	c, err := r.doc.CreateCollection(ctx, key)
	if err != nil {
		r.warn("creating collection %q: %v", key, err)
		return 0, false
	}
	r.collections = append(r.collections, c)
	r.created[c.ID] = true
	r.res.Collections++
	return len(r.collections) - 1, true
}

func (r *run) soleOrphanCollection(keys []string) (int, bool) {
	orphan, count := -1, 0
	for i, c := range r.collections {
		matched := false
		for _, k := range keys {
			if r.same(c.Name, k) {
				matched = true
				break
			}
		}
		if !matched {
			orphan = i
			count++
		}
	}
	return orphan, count == 1
}

// reconcileMode finds, renames, or creates the mode for name in the
// collection at index ci. A collection created this run adopts its default
// mode as its first mode.
func (r *run) reconcileMode(ctx context.Context, ci int, name string, names []string) (string, bool) {
	coll := &r.collections[ci]
	for _, m := range coll.Modes {
		if r.same(m.Name, name) {
			return m.ID, true
		}
	}

	fresh := r.created[coll.ID]
	canRename := len(names) == len(coll.Modes) && len(r.created) == 0
	if fresh && len(coll.Modes) == 1 && !r.modeNamed(coll, names) {
		canRename = true
	}
	if canRename {
		if orphan, ok := r.soleOrphanMode(coll, names); ok {
			old := coll.Modes[orphan].Name
			if err := r.doc.RenameMode(ctx, coll.ID, coll.Modes[orphan].ID, name); err != nil {
				r.warn("renaming mode %q of %q to %q: %v", old, coll.Name, name, err)
			} else {
				coll.Modes[orphan].Name = name
				if fresh {
					r.res.Modes++
				} else {
					logger.Info("renamed mode %q of %q to %q", old, coll.Name, name)
					r.res.Renamed++
				}
				return coll.Modes[orphan].ID, true
			}
		}
	}

	id, err := r.doc.AddMode(ctx, coll.ID, name)
	if err != nil {
		r.warn("adding mode %q to %q: %v", name, coll.Name, err)
		return "", false
	}
	coll.Modes = append(coll.Modes, host.Mode{ID: id, Name: name})
	r.res.Modes++
	return id, true
}

// modeNamed reports whether any of the collection's modes already matches
// one of names.
func (r *run) modeNamed(coll *host.Collection, names []string) bool {
	for _, m := range coll.Modes {
		for _, n := range names {
			if r.same(m.Name, n) {
				return true
			}
		}
	}
	return false
}

func (r *run) soleOrphanMode(coll *host.Collection, names []string) (int, bool) {
	orphan, count := -1, 0
	for i, m := range coll.Modes {
		matched := false
		for _, n := range names {
			if r.same(m.Name, n) {
				matched = true
				break
			}
		}
		if !matched {
			orphan = i
			count++
		}
	}
	return orphan, count == 1
}

type entry struct {
	path []string
	name string
	tok  *token.Token
	ref  bool
}

// orderTokens sorts by depth, then non-references before references, then
// lexically by name.
func orderTokens(group *token.Group) []entry {
	var entries []entry
	_ = group.Walk(func(path []string, tok *token.Token) error {
		entries = append(entries, entry{
			path: path,
			name: strings.Join(path, "/"),
			tok:  tok,
			ref:  isReferenceValue(tok.Value),
		})
		return nil
	})
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if len(a.path) != len(b.path) {
			return len(a.path) < len(b.path)
		}
		if a.ref != b.ref {
			return !a.ref
		}
		return a.name < b.name
	})
	return entries
}

// isReferenceValue excludes the "{}" sentinel.
func isReferenceValue(v any) bool {
	return v != token.EmptyObject && token.IsReference(v)
}

func (r *run) applyGroup(ctx context.Context, ci int, modeID string, group *token.Group) {
	if group == nil {
		return
	}
	coll := r.collections[ci]
	for _, e := range orderTokens(group) {
		r.applyToken(ctx, coll, modeID, e)
	}
}

func (r *run) applyToken(ctx context.Context, coll host.Collection, modeID string, e entry) {
	existing, exists := r.byCollection[coll.ID][e.name]

	target := r.nativeType(ctx, e.tok)
	if exists {
		target = existing.ResolvedType
	}

	value, err := r.decode(ctx, e.tok.Value, target)
	if err != nil {
		r.warn("%s/%s: %v", coll.Name, e.name, err)
		return
	}

	v := existing
	if !exists {
		v, err = r.doc.CreateVariable(ctx, e.name, coll.ID, target)
		if err != nil {
			r.warn("%s/%s: creating variable: %v", coll.Name, e.name, err)
			return
		}
		r.remember(v)
		r.res.Created++
	}

	if err := r.doc.SetValueForMode(ctx, v.ID, modeID, value); err != nil {
		r.warn("%s/%s: setting value: %v", coll.Name, e.name, err)
		return
	}
	if r.existing[v.ID] && !r.updated[v.ID] {
		r.updated[v.ID] = true
		r.res.Updated++
	}
}

// nativeType maps $type to a native type. References take their target's
// type, or STRING when the target does not exist yet.
func (r *run) nativeType(ctx context.Context, tok *token.Token) host.NativeType {
	if tok.Value == token.EmptyObject {
		return host.TypeString
	}
	switch tok.Type {
	case token.TypeColor:
		return host.TypeColor
	case token.TypeNumber, token.TypeDimension:
		return host.TypeFloat
	case token.TypeBoolean:
		return host.TypeBoolean
	case token.TypeReference:
		if path, ok := token.ReferencePath(tok.Value); ok {
			if v, ok := r.lookup(ctx).LookupVariable(token.DotsToSlashes(path)); ok {
				return v.ResolvedType
			}
		}
		return host.TypeString
	default:
		return host.TypeString
	}
}

func (r *run) decode(ctx context.Context, value any, target host.NativeType) (any, error) {
	if value == token.EmptyObject {
		if target != host.TypeString {
			return nil, fmt.Errorf("%w: empty object for %s variable", schema.ErrInvalidValue, target)
		}
		return token.EmptyObject, nil
	}
	native, err := codec.Decode(value, target, r.lookup(ctx))
	if err != nil {
		return nil, err
	}
	if target == host.TypeString {
		return stringify(native), nil
	}
	return native, nil
}

// documentLookup finds variables in the run's cache first, then asks the
// document, which may hold variables created after the run enumerated it.
type documentLookup struct {
	ctx context.Context
	r   *run
}

func (r *run) lookup(ctx context.Context) codec.VariableLookup {
	return documentLookup{ctx: ctx, r: r}
}

func (l documentLookup) LookupVariable(name string) (host.Variable, bool) {
	if v, ok := l.r.global.LookupVariable(name); ok {
		return v, true
	}
	v, ok, err := l.r.doc.FindVariableByName(l.ctx, name)
	if err != nil {
		l.r.warn("looking up variable %q: %v", name, err)
		return host.Variable{}, false
	}
	if ok {
		l.r.global.Add(v)
	}
	return v, ok
}

// stringify converts non-string scalars and objects for STRING variables.
func stringify(v any) any {
	switch x := v.(type) {
	case string, host.Alias:
		return v
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}

func filterKeys(keys, patterns []string) []string {
	if len(patterns) == 0 {
		return keys
	}
	var out []string
	for _, k := range keys {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, k); ok {
				out = append(out, k)
				break
			}
		}
	}
	return out
}
