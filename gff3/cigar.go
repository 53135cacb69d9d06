// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

import (
	"strconv"
	"strings"

	"github.com/kortschak/seqtools/feature"
)

// parseGap expands a GFF3 "Gap=" or "Gaps=" CIGAR-like string into a
// list of aligned sub-ranges (spec.md §4.4). Each token is an operation
// letter (M, I or D) followed by a count. A cursor walks the reference
// and match ranges in the direction given by their respective strands;
// M advances both cursors and emits a Gap; D advances the reference
// cursor only; I advances the match cursor only.
//
// For a protein_match record (query is peptide, reference is DNA), M
// and D counts are scaled by NumFrames to convert peptide units into
// reference nucleotide units, unless LegacyPeptideCount is set, in
// which case the count is already in nucleotide units and the peptide
// (match) advance is derived by dividing it down.
func (p *parser) parseGap(s string, refRange, matchRange feature.Range, refStrand, matchStrand feature.Strand, soTerm string) []feature.Gap {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil
	}

	peptide := isPeptideAlignment(soTerm)
	numFrames := p.opts.NumFrames
	if numFrames < 1 {
		numFrames = 1
	}

	refDir, refCursor := 1, refRange.Min
	if refStrand == feature.StrandReverse {
		refDir, refCursor = -1, refRange.Max
	}
	matchDir, matchCursor := 1, matchRange.Min
	if matchStrand == feature.StrandReverse {
		matchDir, matchCursor = -1, matchRange.Max
	}

	gaps := make([]feature.Gap, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 2 {
			p.warn("malformed CIGAR token " + tok)
			return nil
		}
		op := tok[0]
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n <= 0 {
			p.warn("malformed CIGAR count in token " + tok)
			return nil
		}

		switch op {
		case 'M':
			refLen, matchLen := mStep(n, peptide, p.opts.LegacyPeptideCount, numFrames)
			rStart, rEnd, newRefCursor := step(refCursor, refLen, refDir)
			mStart, mEnd, newMatchCursor := step(matchCursor, matchLen, matchDir)
			gaps = append(gaps, feature.Gap{
				RefStart: rStart, RefEnd: rEnd,
				MatchStart: mStart, MatchEnd: mEnd,
			})
			refCursor, matchCursor = newRefCursor, newMatchCursor
		case 'D':
			refLen := dStep(n, peptide, p.opts.LegacyPeptideCount, numFrames)
			_, _, newRefCursor := step(refCursor, refLen, refDir)
			refCursor = newRefCursor
		case 'I':
			matchLen := iStep(n, peptide, p.opts.LegacyPeptideCount, numFrames)
			_, _, newMatchCursor := step(matchCursor, matchLen, matchDir)
			matchCursor = newMatchCursor
		case 'F', 'R':
			p.warn("frameshift CIGAR operation " + tok + " is unsupported")
			return nil
		default:
			p.warn("unknown CIGAR operation " + tok)
			return nil
		}
	}
	return gaps
}

// step consumes len positions from cursor in direction dir (+1 or -1),
// returning the closed [start,end] range covered (always start<=end)
// and the cursor's new position, one past the consumed span.
func step(cursor, length, dir int) (start, end, newCursor int) {
	if dir > 0 {
		start = cursor
		end = cursor + length - 1
		newCursor = cursor + length
	} else {
		end = cursor
		start = cursor - length + 1
		newCursor = cursor - length
	}
	return start, end, newCursor
}

// mStep returns the (refLen, matchLen) consumed by an M token of count n.
func mStep(n int, peptide, legacy bool, numFrames int) (refLen, matchLen int) {
	switch {
	case !peptide:
		return n, n
	case legacy:
		// n is already a nucleotide count (spec.md §9's "legacy" hack).
		return n, n / numFrames
	default:
		return n * numFrames, n
	}
}

// dStep returns the reference-only span consumed by a D token of count n.
func dStep(n int, peptide, legacy bool, numFrames int) int {
	if !peptide || legacy {
		return n
	}
	return n * numFrames
}

// iStep returns the match-only span consumed by an I token of count n.
func iStep(n int, peptide, legacy bool, numFrames int) int {
	if !peptide || !legacy {
		return n
	}
	return n / numFrames
}
