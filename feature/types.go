// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feature implements the alignment feature model: Feature (MSP),
// FeatureSeq (BlxSequence), Column, Group, DataType, Style and the
// finalisation pass that turns raw parser output into the authoritative
// model consumed by the coordinate, coverage, fetch and selection
// packages.
package feature

import "fmt"

// Strand is the orientation of a feature relative to the reference.
type Strand int8

const (
	StrandNone Strand = iota
	StrandForward
	StrandReverse
)

func (s Strand) String() string {
	switch s {
	case StrandForward:
		return "+"
	case StrandReverse:
		return "-"
	default:
		return "."
	}
}

// Phase is the CDS reading phase, or PhaseUnset if not applicable.
type Phase int8

const (
	PhaseUnset Phase = -1
	Phase0     Phase = 0
	Phase1     Phase = 1
	Phase2     Phase = 2
)

// Type is the kind of alignment/annotation a Feature represents.
type Type int8

const (
	TypeMatch Type = iota
	TypeExon
	TypeCDS
	TypeUTR
	TypeIntron
	TypeMatchSet
	TypePolyASite
	TypePolyASignal
	TypeVariation
	TypeRegion
	TypeGap
	TypeFeatureSeriesSegment
	TypeXYPlot
	TypeTranscript // transcript record; its FeatureSeq receives Parent= children
)

func (t Type) String() string {
	switch t {
	case TypeMatch:
		return "Match"
	case TypeExon:
		return "Exon"
	case TypeCDS:
		return "CDS"
	case TypeUTR:
		return "UTR"
	case TypeIntron:
		return "Intron"
	case TypeMatchSet:
		return "MatchSet"
	case TypePolyASite:
		return "PolyASite"
	case TypePolyASignal:
		return "PolyASignal"
	case TypeVariation:
		return "Variation"
	case TypeRegion:
		return "Region"
	case TypeGap:
		return "Gap"
	case TypeFeatureSeriesSegment:
		return "FeatureSeriesSegment"
	case TypeXYPlot:
		return "XYPlot"
	case TypeTranscript:
		return "Transcript"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Range is an inclusive coordinate range. Kept distinct from coord.Range
// so this package has no dependency on the coordinate engine beyond what
// it imports explicitly for projection caching.
type Range struct {
	Min, Max int
}

func (r Range) Valid() bool { return r.Min <= r.Max }

// Gap is one aligned sub-range produced by CIGAR expansion, spec.md §4.4.
type Gap struct {
	RefStart, RefEnd     int
	MatchStart, MatchEnd int
}

// ID identifies a Feature within an Index. It is stable for the lifetime
// of the Index and is never reused after a feature is removed, matching
// spec.md §9's typed-index replacement for the original intrusive list.
type ID int

// SeqID identifies a FeatureSeq within an Index.
type SeqID int

// Feature is one alignment segment, exon, intron, CDS, UTR, SNP,
// polyA-site/signal, assembly gap, or region (spec.md §3).
type Feature struct {
	id ID

	Type Type

	RefName   string
	RefRange  Range
	RefStrand Strand
	RefFrame  int // 1, 2 or 3; 0 if not yet assigned

	MatchName   string
	MatchRange  Range
	MatchStrand Strand
	HasMatch    bool

	Score    float64
	HasScore bool
	Identity float64
	Phase    Phase

	Gaps []Gap

	DisplayRange   Range
	FullRange      Range
	FullMatchRange Range
	rangesCached   bool

	Source      string
	Description string
	StyleRef    string
	Filename    string

	idTag        string
	parentIDTag  string
	seq          SeqID
	hasSeq       bool
	children     []ID
}

// ID returns the feature's stable identifier.
func (f *Feature) ID() ID { return f.id }

// IsChildType reports whether t is an exon, intron, CDS or UTR: a type
// that Finalise stitches onto its parent's Transcript FeatureSeq
// (spec.md §4.4). Such features are still entries in the flat Feature
// list.
func IsChildType(t Type) bool {
	switch t {
	case TypeExon, TypeIntron, TypeCDS, TypeUTR:
		return true
	}
	return false
}
