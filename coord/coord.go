// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coord implements the DNA/display coordinate projection engine:
// forward/reverse strand inversion, three-frame peptide translation, and
// range clipping. All operations here are pure functions over a Range and
// a small set of context flags — no feature model or I/O.
package coord

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a Range has min > max.
var ErrInvalidRange = errors.New("coord: invalid range")

// ErrFrameOutOfRange is returned when a frame is outside [1, numFrames].
var ErrFrameOutOfRange = errors.New("coord: frame out of range")

// SeqType distinguishes a DNA display from a translated peptide display.
type SeqType int

const (
	DNA SeqType = iota
	Peptide
)

// Range is an inclusive coordinate range [Min, Max].
type Range struct {
	Min, Max int
}

// Len returns the number of coordinates spanned, inclusive.
func (r Range) Len() int {
	return r.Max - r.Min + 1
}

// Valid reports whether the range is well formed.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}

func (r Range) validate() error {
	if !r.Valid() {
		return fmt.Errorf("%w: [%d,%d]", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

func validateFrame(frame, numFrames int) error {
	if frame < 1 || frame > numFrames {
		return fmt.Errorf("%w: frame %d not in [1,%d]", ErrFrameOutOfRange, frame, numFrames)
	}
	return nil
}

// InvertCoord mirrors idx about range when invert is true, otherwise
// returns idx unchanged.
func InvertCoord(idx int, r Range, invert bool) int {
	if !invert {
		return idx
	}
	return r.Min + r.Max - idx
}

// BoundsLimitValue clamps idx to [r.Min, r.Max].
func BoundsLimitValue(idx int, r Range) int {
	if idx < r.Min {
		return r.Min
	}
	if idx > r.Max {
		return r.Max
	}
	return idx
}

// BoundsLimitRange clamps rg to lie within bounds. If preserveLen is true
// and rg is narrower than bounds, rg is shifted rather than truncated so
// its length is preserved.
func BoundsLimitRange(rg, bounds Range, preserveLen bool) Range {
	if preserveLen {
		length := rg.Max - rg.Min
		if rg.Min < bounds.Min {
			rg.Min = bounds.Min
			rg.Max = rg.Min + length
		}
		if rg.Max > bounds.Max {
			rg.Max = bounds.Max
			rg.Min = rg.Max - length
		}
		if rg.Min < bounds.Min {
			rg.Min = bounds.Min
		}
		return rg
	}
	if rg.Min < bounds.Min {
		rg.Min = bounds.Min
	}
	if rg.Max > bounds.Max {
		rg.Max = bounds.Max
	}
	return rg
}

// DisplayCoord is the result of projecting a DNA index to display space.
// BaseNum identifies which of the 3 DNA bases within a codon the index
// corresponds to, and is always 1 for a DNA (non-peptide) display.
type DisplayCoord struct {
	Idx     int
	BaseNum int
}

// DnaToDisplay projects a DNA index in refRange under the given frame to
// display coordinates. seqType selects whether the display is raw DNA or
// a 3-frame peptide translation; numFrames is 1 for DNA, 3 for Peptide.
// When displayRev is true the result is mirrored about refRange.
func DnaToDisplay(dnaIdx int, frame, numFrames int, refRange Range, seqType SeqType, displayRev bool) (DisplayCoord, error) {
	if err := refRange.validate(); err != nil {
		return DisplayCoord{}, err
	}
	if err := validateFrame(frame, numFrames); err != nil {
		return DisplayCoord{}, err
	}

	if seqType == DNA {
		idx := dnaIdx
		if displayRev {
			idx = InvertCoord(idx, refRange, true)
		}
		return DisplayCoord{Idx: idx, BaseNum: 1}, nil
	}

	// Triplet boundary lies at refRange.Min + frame - 1.
	base0 := refRange.Min + frame - 1
	offset := dnaIdx - base0
	peptideIdx := floorDiv(offset, 3) + 1
	baseNum := mod(offset, 3) + 1

	if displayRev {
		// Mirror the peptide coordinate about the peptide range spanned
		// by refRange under this frame.
		maxOffset := refRange.Max - base0
		maxPeptideIdx := floorDiv(maxOffset, 3) + 1
		peptideIdx = maxPeptideIdx - (peptideIdx - 1)
		baseNum = 4 - baseNum
	}

	return DisplayCoord{Idx: peptideIdx, BaseNum: baseNum}, nil
}

// DisplayToDna is the exact inverse of DnaToDisplay: given a display
// index, frame and baseNum (1..3, meaningful only for Peptide), returns
// the originating DNA index.
func DisplayToDna(d DisplayCoord, frame, numFrames int, refRange Range, seqType SeqType, displayRev bool) (int, error) {
	if err := refRange.validate(); err != nil {
		return 0, err
	}
	if err := validateFrame(frame, numFrames); err != nil {
		return 0, err
	}

	if seqType == DNA {
		idx := d.Idx
		if displayRev {
			idx = InvertCoord(idx, refRange, true)
		}
		return idx, nil
	}

	base0 := refRange.Min + frame - 1
	peptideIdx, baseNum := d.Idx, d.BaseNum
	if displayRev {
		maxOffset := refRange.Max - base0
		maxPeptideIdx := floorDiv(maxOffset, 3) + 1
		peptideIdx = maxPeptideIdx - (peptideIdx - 1)
		baseNum = 4 - baseNum
	}
	return base0 + (peptideIdx-1)*3 + (baseNum - 1), nil
}

// ConvertDisplayRangeToDnaRange widens a display range to a DNA range,
// always producing a peptide-aligned triplet range when seqType is
// Peptide.
func ConvertDisplayRangeToDnaRange(displayRange Range, frame, numFrames int, refRange Range, seqType SeqType, displayRev bool) (Range, error) {
	if err := displayRange.validate(); err != nil {
		return Range{}, err
	}
	lo, err := DisplayToDna(DisplayCoord{Idx: displayRange.Min, BaseNum: 1}, frame, numFrames, refRange, seqType, displayRev)
	if err != nil {
		return Range{}, err
	}
	hi, err := DisplayToDna(DisplayCoord{Idx: displayRange.Max, BaseNum: 3}, frame, numFrames, refRange, seqType, displayRev)
	if err != nil {
		return Range{}, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return Range{Min: lo, Max: hi}, nil
}

// Rect is a pixel rectangle used for linear index-to-pixel projection.
type Rect struct {
	X0, X1 int
	Y0, Y1 int
}

// ConvertBaseIdxToRectPos linearly projects idx within dnaRange onto the
// horizontal (or vertical) extent of rect, optionally clipping the
// result to the rectangle bounds.
func ConvertBaseIdxToRectPos(idx int, rect Rect, dnaRange Range, horizontal, displayRev, clip bool) (float64, error) {
	if err := dnaRange.validate(); err != nil {
		return 0, err
	}
	lo, hi := rect.X0, rect.X1
	if !horizontal {
		lo, hi = rect.Y0, rect.Y1
	}
	pos := InvertCoord(idx, dnaRange, displayRev)
	frac := float64(pos-dnaRange.Min) / float64(dnaRange.Len())
	out := float64(lo) + frac*float64(hi-lo)
	if clip {
		if out < float64(lo) {
			out = float64(lo)
		}
		if out > float64(hi) {
			out = float64(hi)
		}
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
