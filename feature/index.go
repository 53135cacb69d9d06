// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import "fmt"

// Index is the single authoritative collection of Features and
// FeatureSeqs replacing the raw intrusive MSP list and parallel GLists
// of the original implementation (spec.md §9): one flat slice of
// Features addressed by typed ID, with a type-keyed index for fast
// by-type iteration, and a name+strand lookup table for FeatureSeqs.
type Index struct {
	features []*Feature
	byType   map[Type][]ID

	seqs      map[SeqID]*FeatureSeq
	seqByKey  map[seqKey]SeqID
	nextSeqID SeqID

	groups    map[GroupID]*Group
	nextGroup GroupID

	Columns *ColumnList
	Styles  *StyleSet
}

type seqKey struct {
	name   string
	strand Strand
}

// NewIndex creates an empty Index. cols and styles may be nil, in which
// case DefaultColumns is used and style lookups always miss.
func NewIndex(cols *ColumnList, styles *StyleSet) *Index {
	if cols == nil {
		cols = DefaultColumns()
	}
	return &Index{
		byType:   make(map[Type][]ID),
		seqs:     make(map[SeqID]*FeatureSeq),
		seqByKey: make(map[seqKey]SeqID),
		groups:   make(map[GroupID]*Group),
		Columns:  cols,
		Styles:   styles,
	}
}

// FeatureArgs are the validated inputs to CreateFeature.
type FeatureArgs struct {
	Type      Type
	RefName   string
	RefRange  Range
	RefStrand Strand

	MatchName   string
	MatchRange  Range
	MatchStrand Strand
	HasMatch    bool

	Score    float64
	HasScore bool
	Identity float64
	Phase    Phase

	Gaps []Gap

	Source      string
	Description string
	StyleRef    string
	Filename    string

	IDTag       string // this feature's own ID tag, if any (GFF3 ID=)
	ParentIDTag string // parent's ID tag, if any (GFF3 Parent=)
	SeqIDTag    string // the id tag addressing the owning FeatureSeq
	SeqStrand   Strand
	DataType    *DataType
}

// CreateFeature validates args and attaches the new Feature to the
// FeatureSeq addressed by args.SeqIDTag, creating it if absent
// (spec.md §4.3). Exon/Intron/CDS/UTR features have MatchStrand forced
// to RefStrand (the "Exon rule").
func (idx *Index) CreateFeature(args FeatureArgs) (*Feature, error) {
	if !args.RefRange.Valid() {
		return nil, fmt.Errorf("%w: ref range [%d,%d]", ErrInvalidRange, args.RefRange.Min, args.RefRange.Max)
	}
	if args.HasMatch && !args.MatchRange.Valid() {
		return nil, fmt.Errorf("%w: match range [%d,%d]", ErrInvalidRange, args.MatchRange.Min, args.MatchRange.Max)
	}

	matchStrand := args.MatchStrand
	if IsChildType(args.Type) {
		matchStrand = args.RefStrand
	} else if args.Type == TypeMatch {
		if matchStrand != StrandForward && matchStrand != StrandReverse {
			return nil, fmt.Errorf("%w: match feature requires Forward or Reverse strand, got %v", ErrInvalidStrand, matchStrand)
		}
	}

	f := &Feature{
		Type:        args.Type,
		RefName:     args.RefName,
		RefRange:    args.RefRange,
		RefStrand:   args.RefStrand,
		MatchName:   args.MatchName,
		MatchRange:  args.MatchRange,
		MatchStrand: matchStrand,
		HasMatch:    args.HasMatch,
		Score:       args.Score,
		HasScore:    args.HasScore,
		Identity:    args.Identity,
		Phase:       args.Phase,
		Gaps:        args.Gaps,
		Source:      args.Source,
		Description: args.Description,
		StyleRef:    args.StyleRef,
		Filename:    args.Filename,
		idTag:       args.IDTag,
		parentIDTag: args.ParentIDTag,
	}

	idx.features = append(idx.features, f)
	f.id = ID(len(idx.features) - 1)
	idx.byType[f.Type] = append(idx.byType[f.Type], f.id)

	if args.SeqIDTag != "" {
		seq := idx.AddFeatureSeq(args.MatchName, args.SeqIDTag, args.SeqStrand, args.DataType)
		f.seq = seq.id
		f.hasSeq = true
		seq.features = append(seq.features, f.id)
	}

	return f, nil
}

// AddFeatureSeq looks up a FeatureSeq by (normalised name, strand),
// with wildcard matching on StrandNone, creating a new entry when the
// key is absent (spec.md §4.3).
func (idx *Index) AddFeatureSeq(name, idTag string, strand Strand, dt *DataType) *FeatureSeq {
	norm := normaliseName(name)
	key := seqKey{name: norm, strand: strand}
	if id, ok := idx.seqByKey[key]; ok {
		return idx.seqs[id]
	}
	if strand != StrandNone {
		if id, ok := idx.seqByKey[seqKey{name: norm, strand: StrandNone}]; ok {
			s := idx.seqs[id]
			s.Strand = strand
			idx.seqByKey[key] = id
			return s
		}
	}

	idx.nextSeqID++
	s := &FeatureSeq{
		id:     idx.nextSeqID,
		IDTag:  idTag,
		Name:   norm,
		Strand: strand,
		DataType: dt,
	}
	idx.seqs[s.id] = s
	idx.seqByKey[key] = s.id
	if idTag != "" {
		idx.seqByKey[seqKey{name: "#idtag#" + idTag, strand: StrandNone}] = s.id
	}
	return s
}

// FeatureSeqByIDTag returns the FeatureSeq registered under idTag, for
// resolving GFF3 Parent= references (spec.md §4.4).
func (idx *Index) FeatureSeqByIDTag(idTag string) (*FeatureSeq, bool) {
	id, ok := idx.seqByKey[seqKey{name: "#idtag#" + idTag, strand: StrandNone}]
	if !ok {
		return nil, false
	}
	return idx.seqs[id], true
}

// Feature returns the Feature for id.
func (idx *Index) Feature(id ID) (*Feature, error) {
	if int(id) < 0 || int(id) >= len(idx.features) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFeatureID, id)
	}
	return idx.features[id], nil
}

// FeatureSeq returns the FeatureSeq for id.
func (idx *Index) FeatureSeq(id SeqID) (*FeatureSeq, error) {
	s, ok := idx.seqs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeqID, id)
	}
	return s, nil
}

// Features returns every Feature in creation order, for callers that
// need the flat global iteration list spec.md §3 describes alongside
// the per-FeatureSeq ownership lists.
func (idx *Index) Features() []*Feature {
	return idx.features
}

// FeaturesOfType returns the IDs of every Feature of type t.
func (idx *Index) FeaturesOfType(t Type) []ID {
	return idx.byType[t]
}

// FeatureSeqs returns every FeatureSeq, unordered.
func (idx *Index) FeatureSeqs() []*FeatureSeq {
	out := make([]*FeatureSeq, 0, len(idx.seqs))
	for _, s := range idx.seqs {
		out = append(out, s)
	}
	return out
}

// OwningFeatureSeq returns the FeatureSeq that owns f, if any. This is
// the back-reference invariant checked by spec.md §8 property 2: the
// set of Features owned by a FeatureSeq is exactly those whose seq
// back-reference equals it.
func (idx *Index) OwningFeatureSeq(f *Feature) (*FeatureSeq, bool) {
	if !f.hasSeq {
		return nil, false
	}
	s, ok := idx.seqs[f.seq]
	return s, ok
}
