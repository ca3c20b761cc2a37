/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"golang.org/x/text/cases"

	"bennypowers.dev/varsync/token"
)

// Options tunes fuzzy matching. The thresholds are heuristics.
type Options struct {
	// SegmentScore is the score of a match on the last segment alone.
	// Zero or less disables segment-only matches.
	SegmentScore float64

	// MinSuffixScore is the score a suffix match must exceed.
	MinSuffixScore float64
}

// DefaultOptions returns the default fuzzy matching thresholds.
func DefaultOptions() Options {
	return Options{SegmentScore: 0.5}
}

// Match is a fuzzy match candidate.
type Match struct {
	Key   string
	Score float64
	// SegmentOnly is set when only the last segment matched.
	SegmentOnly bool
}

// FuzzyMatch finds the best index key for path, comparing whole segments
// case-insensitively from the end. A candidate sharing k >= 2 trailing
// segments scores k/len(candidate). Any such suffix match beats a
// segment-only match; ties go to the lexically smallest key.
func (idx *Index) FuzzyMatch(path string) (Match, bool) {
	ref := foldSegments(path)
	if len(ref) == 0 {
		return Match{}, false
	}

	var best Match
	found := false
	for _, key := range idx.keys {
		cand := foldSegments(key)
		k := commonSuffix(ref, cand)
		if k == 0 {
			continue
		}
		m := Match{Key: key}
		if k == 1 {
			if idx.opts.SegmentScore <= 0 {
				continue
			}
			m.Score = idx.opts.SegmentScore
			m.SegmentOnly = true
		} else {
			m.Score = float64(k) / float64(len(cand))
			if m.Score <= idx.opts.MinSuffixScore {
				continue
			}
		}
		if !found || better(m, best) {
			best = m
			found = true
		}
	}
	return best, found
}

func better(a, b Match) bool {
	if a.SegmentOnly != b.SegmentOnly {
		return !a.SegmentOnly
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Key < b.Key
}

func foldSegments(path string) []string {
	fold := cases.Fold()
	segs := token.SplitPath(path)
	for i, s := range segs {
		segs[i] = fold.String(s)
	}
	return segs
}

func commonSuffix(a, b []string) int {
	n := 0
	for i, j := len(a)-1, len(b)-1; i >= 0 && j >= 0; i, j = i-1, j-1 {
		if a[i] != b[j] {
			break
		}
		n++
	}
	return n
}
