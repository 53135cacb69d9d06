// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"sort"

	"github.com/kortschak/seqtools/coord"
)

// FinaliseOptions parameterises the finalisation pass (spec.md §4.5).
type FinaliseOptions struct {
	// RefOffset is subtracted from RefStart before computing RefFrame
	// for nucleotide matches shown in a peptide display.
	RefOffset int
	// DisplaySeqType selects whether displayRange/fullRange are cached
	// in DNA or peptide coordinates.
	DisplaySeqType coord.SeqType
	NumFrames      int
	DisplayRev     bool
	// RefRange bounds the reference sequence for coordinate projection.
	RefRange coord.Range
	// MaxUnalignedBases extends fullRange beyond displayRange into
	// unaligned flank, when DataType allows it (0 means unlimited, which
	// extends to the full unaligned tail of the match sequence).
	MaxUnalignedBases int
}

// Finalise runs the post-parse pass described in spec.md §4.5: style
// lookup, refFrame assignment, default gaps, the Exon rule, Parent
// stitching, per-FeatureSeq ref extents, and displayRange/fullRange
// caching. It must be called exactly once after every input file has
// been parsed into idx.
func (idx *Index) Finalise(opts FinaliseOptions) error {
	idx.stitchChildren()

	for _, f := range idx.features {
		if f.Source != "" && idx.Styles != nil {
			if s := idx.Styles.Lookup(f.Source); s != nil {
				if f.StyleRef == "" {
					f.StyleRef = f.Source
				}
			}
		}

		if f.Type == TypeMatch && opts.DisplaySeqType == coord.Peptide {
			f.RefFrame = ((f.RefRange.Min-opts.RefOffset)%3+3)%3 + 1
		}
		if f.Type == TypeCDS && f.Phase != PhaseUnset {
			base := ((f.RefRange.Min-opts.RefOffset)%3+3)%3 + 1
			base -= int(f.Phase)
			for base < 1 {
				base += 3
			}
			for base > 3 {
				base -= 3
			}
			f.RefFrame = base
		}

		if f.Type == TypeMatch && len(f.Gaps) == 0 {
			f.Gaps = []Gap{{
				RefStart: f.RefRange.Min, RefEnd: f.RefRange.Max,
				MatchStart: f.MatchRange.Min, MatchEnd: f.MatchRange.Max,
			}}
		}

		if IsChildType(f.Type) || f.Type == TypeTranscript {
			f.MatchStrand = f.RefStrand
		}
	}

	for _, s := range idx.seqs {
		sort.Slice(s.features, func(i, j int) bool {
			return idx.features[s.features[i]].RefRange.Min < idx.features[s.features[j]].RefRange.Min
		})

		first := true
		for _, fid := range s.features {
			f := idx.features[fid]
			switch f.RefStrand {
			case StrandForward:
				if first || f.RefRange.Min < s.RefExtentFwd.Min {
					s.RefExtentFwd.Min = f.RefRange.Min
				}
				if first || f.RefRange.Max > s.RefExtentFwd.Max {
					s.RefExtentFwd.Max = f.RefRange.Max
				}
			case StrandReverse:
				if first || f.RefRange.Min < s.RefExtentRev.Min {
					s.RefExtentRev.Min = f.RefRange.Min
				}
				if first || f.RefRange.Max > s.RefExtentRev.Max {
					s.RefExtentRev.Max = f.RefRange.Max
				}
			}
			first = false
		}
	}

	for _, f := range idx.features {
		if err := idx.cacheRanges(f, opts); err != nil {
			return err
		}
	}

	return nil
}

// stitchChildren attaches features with a parentIDTag to the parent's
// Transcript FeatureSeq rather than to a separate match seq (spec.md
// §4.5).
func (idx *Index) stitchChildren() {
	for _, f := range idx.features {
		if f.parentIDTag == "" {
			continue
		}
		parent, ok := idx.FeatureSeqByIDTag(f.parentIDTag)
		if !ok {
			continue
		}
		if f.hasSeq && f.seq == parent.id {
			continue
		}
		if f.hasSeq {
			old := idx.seqs[f.seq]
			old.features = removeID(old.features, f.id)
		}
		f.seq = parent.id
		f.hasSeq = true
		parent.features = append(parent.features, f.id)
		parent.Type = SeqTranscript
	}
}

func removeID(s []ID, id ID) []ID {
	out := s[:0]
	for _, x := range s {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// cacheRanges computes and caches displayRange/fullRange/fullMatchRange
// for f (spec.md §4.1, §4.5).
func (idx *Index) cacheRanges(f *Feature, opts FinaliseOptions) error {
	frame := f.RefFrame
	if frame == 0 {
		frame = 1
	}
	refRange := opts.RefRange
	if !refRange.Valid() {
		refRange = coord.Range{Min: f.RefRange.Min, Max: f.RefRange.Max}
	}

	lo, err := coord.DnaToDisplay(f.RefRange.Min, frame, opts.NumFrames, refRange, opts.DisplaySeqType, opts.DisplayRev)
	if err != nil {
		return err
	}
	hi, err := coord.DnaToDisplay(f.RefRange.Max, frame, opts.NumFrames, refRange, opts.DisplaySeqType, opts.DisplayRev)
	if err != nil {
		return err
	}
	dMin, dMax := lo.Idx, hi.Idx
	if dMin > dMax {
		dMin, dMax = dMax, dMin
	}
	f.DisplayRange = Range{Min: dMin, Max: dMax}

	full := f.DisplayRange
	if f.HasMatch {
		extend := opts.MaxUnalignedBases
		if extend <= 0 {
			extend = f.MatchRange.Len()
		}
		full.Min -= extend
		full.Max += extend
	}
	f.FullRange = full
	f.FullMatchRange = f.MatchRange
	f.rangesCached = true
	return nil
}

// Len returns the number of coordinates spanned, inclusive.
func (r Range) Len() int { return r.Max - r.Min + 1 }
