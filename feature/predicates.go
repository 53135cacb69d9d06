// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

// GridFlags is the subset of the big-picture grid's display state this
// package needs to decide visibility; the grid itself is out of scope
// (spec.md §1) but the predicate it consults is not.
type GridFlags struct {
	ShowUnalignedSeq bool
	SquashMatches    bool
	ActiveStrand     Strand
	HideInactive     bool
}

// FeatureIsShownInGrid is a purely type- and strand-driven predicate
// with no drawing knowledge (spec.md §4.3): introns, CDS and UTR
// segments are detail-view-only; everything else is shown in the grid
// for the active strand, or both strands when HideInactive is false.
func FeatureIsShownInGrid(f *Feature, flags GridFlags) bool {
	switch f.Type {
	case TypeIntron, TypeCDS, TypeUTR:
		return false
	}
	if flags.HideInactive && f.RefStrand != StrandNone && f.RefStrand != flags.ActiveStrand {
		return false
	}
	return true
}

// FeatureIsShownInDetail reports whether f is shown in the detail view:
// everything except a bare MatchSet placeholder, which exists only to
// group its MatchSet children.
func FeatureIsShownInDetail(f *Feature) bool {
	return f.Type != TypeMatchSet
}
