// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coverage computes per-base depth-of-coverage over a reference
// range from a feature.Index's Match features (spec.md §4.7).
package coverage

import (
	"errors"
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/kortschak/seqtools/feature"
)

// ErrInvalidRange is returned when the requested reference range is not
// well formed.
var ErrInvalidRange = errors.New("coverage: invalid range")

// Depth is the computed coverage over one reference range.
type Depth struct {
	RefRange feature.Range
	Values   []float64 // Values[i] is depth at RefRange.Min+i
	Max      float64
}

// At returns the depth at DNA index pos, or 0 if pos falls outside
// RefRange.
func (d *Depth) At(pos int) float64 {
	if pos < d.RefRange.Min || pos > d.RefRange.Max {
		return 0
	}
	return d.Values[pos-d.RefRange.Min]
}

// matchInterval adapts a Match feature.Feature to biogo/store/interval's
// IntTree, grounded on kortschak-ins/cmd/ins/main.go's subjectInterval
// (same Overlap/ID/Range shape, generalised from BLAST-hit containment
// testing to plain overlap testing for depth accumulation).
type matchInterval struct {
	uid uintptr
	f   *feature.Feature
}

func (m matchInterval) Overlap(b interval.IntRange) bool {
	return b.Start <= m.f.RefRange.Max && m.f.RefRange.Min <= b.End
}
func (m matchInterval) ID() uintptr { return m.uid }
func (m matchInterval) Range() interval.IntRange {
	return interval.IntRange{Start: m.f.RefRange.Min, End: m.f.RefRange.Max}
}

// ComputeDepth implements spec.md §4.7's computeDepth(features, refRange):
// every Match feature intersecting refRange increments each covered
// index by 1, or by its Score when weighted is true and the feature has
// one set.
func ComputeDepth(idx *feature.Index, refRange feature.Range, weighted bool) (*Depth, error) {
	if !refRange.Valid() {
		return nil, fmt.Errorf("%w: [%d,%d]", ErrInvalidRange, refRange.Min, refRange.Max)
	}

	var tree interval.IntTree
	var n uintptr
	for _, id := range idx.FeaturesOfType(feature.TypeMatch) {
		f, err := idx.Feature(id)
		if err != nil {
			continue
		}
		if !f.RefRange.Valid() {
			continue
		}
		if err := tree.Insert(matchInterval{uid: n, f: f}, true); err != nil {
			return nil, fmt.Errorf("coverage: building interval tree: %w", err)
		}
		n++
	}
	tree.AdjustRanges()

	values := make([]float64, refRange.Len())
	query := matchInterval{f: &feature.Feature{RefRange: refRange}}
	var maxDepth float64
	for _, hit := range tree.Get(query) {
		f := hit.(matchInterval).f
		start, end := f.RefRange.Min, f.RefRange.Max
		if start < refRange.Min {
			start = refRange.Min
		}
		if end > refRange.Max {
			end = refRange.Max
		}
		inc := 1.0
		if weighted && f.HasScore {
			inc = f.Score
		}
		for i := start; i <= end; i++ {
			v := values[i-refRange.Min] + inc
			values[i-refRange.Min] = v
			if v > maxDepth {
				maxDepth = v
			}
		}
	}
	return &Depth{RefRange: refRange, Values: values, Max: maxDepth}, nil
}
