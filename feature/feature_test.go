// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"errors"
	"testing"

	"github.com/kortschak/seqtools/coord"
)

func TestCreateFeatureInvalidRange(t *testing.T) {
	idx := NewIndex(nil, nil)
	_, err := idx.CreateFeature(FeatureArgs{
		Type:     TypeMatch,
		RefRange: Range{Min: 10, Max: 1},
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
}

func TestCreateFeatureExonRule(t *testing.T) {
	idx := NewIndex(nil, nil)
	f, err := idx.CreateFeature(FeatureArgs{
		Type:      TypeExon,
		RefRange:  Range{Min: 1, Max: 10},
		RefStrand: StrandReverse,
		SeqIDTag:  "transcript1",
		SeqStrand: StrandReverse,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.MatchStrand != StrandReverse {
		t.Errorf("exon rule: MatchStrand = %v, want %v", f.MatchStrand, StrandReverse)
	}
}

func TestCreateFeatureMatchRequiresStrand(t *testing.T) {
	idx := NewIndex(nil, nil)
	_, err := idx.CreateFeature(FeatureArgs{
		Type:        TypeMatch,
		RefRange:    Range{Min: 1, Max: 10},
		MatchRange:  Range{Min: 1, Max: 10},
		HasMatch:    true,
		MatchStrand: StrandNone,
	})
	if !errors.Is(err, ErrInvalidStrand) {
		t.Fatalf("got %v, want ErrInvalidStrand", err)
	}
}

func TestAddFeatureSeqDedup(t *testing.T) {
	idx := NewIndex(nil, nil)
	a := idx.AddFeatureSeq("EM:AV274505.2", "id1", StrandForward, nil)
	b := idx.AddFeatureSeq("av274505.2", "id2", StrandForward, nil)
	if a.ID() != b.ID() {
		t.Errorf("expected normalised names to collapse to one FeatureSeq, got %d and %d", a.ID(), b.ID())
	}
	if a.Name != "AV274505.2" {
		t.Errorf("normalised name = %q, want AV274505.2", a.Name)
	}
}

func TestOwnershipInvariant(t *testing.T) {
	idx := NewIndex(nil, nil)
	for i := 0; i < 5; i++ {
		_, err := idx.CreateFeature(FeatureArgs{
			Type:        TypeMatch,
			RefRange:    Range{Min: i * 10, Max: i*10 + 5},
			MatchRange:  Range{Min: 1, Max: 5},
			HasMatch:    true,
			MatchStrand: StrandForward,
			SeqIDTag:    "seqA",
			SeqStrand:   StrandForward,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for _, s := range idx.FeatureSeqs() {
		for _, fid := range s.Features() {
			f, err := idx.Feature(fid)
			if err != nil {
				t.Fatal(err)
			}
			owner, ok := idx.OwningFeatureSeq(f)
			if !ok || owner.ID() != s.ID() {
				t.Errorf("feature %d owned by %v, want %d", fid, owner, s.ID())
			}
		}
	}
}

func TestFinaliseDefaultGaps(t *testing.T) {
	idx := NewIndex(nil, nil)
	_, err := idx.CreateFeature(FeatureArgs{
		Type:        TypeMatch,
		RefRange:    Range{Min: 100, Max: 120},
		MatchRange:  Range{Min: 1, Max: 21},
		HasMatch:    true,
		MatchStrand: StrandForward,
		SeqIDTag:    "seqA",
	})
	if err != nil {
		t.Fatal(err)
	}
	err = idx.Finalise(FinaliseOptions{
		DisplaySeqType: coord.DNA,
		NumFrames:      1,
		RefRange:       coord.Range{Min: 1, Max: 1000},
	})
	if err != nil {
		t.Fatal(err)
	}
	f := idx.features[0]
	if len(f.Gaps) != 1 || f.Gaps[0].RefStart != 100 || f.Gaps[0].RefEnd != 120 {
		t.Errorf("default gaps = %+v, want single identity range", f.Gaps)
	}
}

func TestColumnValueNotAvailable(t *testing.T) {
	idx := NewIndex(nil, nil)
	f, err := idx.CreateFeature(FeatureArgs{
		Type:        TypeMatch,
		RefRange:    Range{Min: 1, Max: 10},
		MatchStrand: StrandForward,
	})
	if err != nil {
		t.Fatal(err)
	}
	v, err := idx.ColumnValue(f, nil, ColScore)
	if err != nil {
		t.Fatal(err)
	}
	if v != NotAvailable {
		t.Errorf("ColumnValue(ColScore) = %q, want %q", v, NotAvailable)
	}
	_, err = idx.ColumnValue(f, nil, ColumnID("BOGUS"))
	if !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("got %v, want ErrInvalidColumn", err)
	}
}
