// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selection

import (
	"testing"

	"github.com/kortschak/seqtools/coord"
	"github.com/kortschak/seqtools/feature"
)

func newTestIndex(t *testing.T) *feature.Index {
	t.Helper()
	idx := feature.NewIndex(nil, nil)
	_, err := idx.CreateFeature(feature.FeatureArgs{
		Type:        feature.TypeMatch,
		RefName:     "chr1",
		RefRange:    feature.Range{Min: 10, Max: 20},
		RefStrand:   feature.StrandForward,
		MatchStrand: feature.StrandForward,
		Score:       42,
		HasScore:    true,
		Identity:    95.5,
	})
	if err != nil {
		t.Fatalf("CreateFeature: %v", err)
	}
	return idx
}

func TestProjectDNAWithinFeature(t *testing.T) {
	idx := newTestIndex(t)
	svc := NewService(idx, coord.Range{Min: 1, Max: 100}, 1, coord.DNA, false)

	info, err := svc.ProjectDNA(15, 1, feature.StrandForward)
	if err != nil {
		t.Fatalf("ProjectDNA: %v", err)
	}
	if len(info.Features) != 1 {
		t.Fatalf("Features = %d, want 1", len(info.Features))
	}
	if !info.HasScore || info.Score != 42 {
		t.Errorf("Score = %v (has=%v), want 42", info.Score, info.HasScore)
	}
	if info.PercentID != 95.5 {
		t.Errorf("PercentID = %v, want 95.5", info.PercentID)
	}
	if info.DisplayIndex != 15 {
		t.Errorf("DisplayIndex = %v, want 15", info.DisplayIndex)
	}
}

func TestProjectDNAOutsideFeature(t *testing.T) {
	idx := newTestIndex(t)
	svc := NewService(idx, coord.Range{Min: 1, Max: 100}, 1, coord.DNA, false)

	info, err := svc.ProjectDNA(50, 1, feature.StrandForward)
	if err != nil {
		t.Fatalf("ProjectDNA: %v", err)
	}
	if len(info.Features) != 0 {
		t.Errorf("Features = %d, want 0", len(info.Features))
	}
}

func TestProjectRoundTripsThroughDisplay(t *testing.T) {
	idx := newTestIndex(t)
	svc := NewService(idx, coord.Range{Min: 1, Max: 100}, 1, coord.DNA, false)

	info, err := svc.ProjectDNA(15, 1, feature.StrandForward)
	if err != nil {
		t.Fatalf("ProjectDNA: %v", err)
	}
	back, err := svc.ProjectDisplay(info.DisplayIndex, info.BaseNum, 1, feature.StrandForward)
	if err != nil {
		t.Fatalf("ProjectDisplay: %v", err)
	}
	if back.DNAIndex != 15 {
		t.Errorf("round-tripped DNAIndex = %d, want 15", back.DNAIndex)
	}
}

func TestSelectDeselectNotify(t *testing.T) {
	idx := newTestIndex(t)
	seq := idx.AddFeatureSeq("match1", "", feature.StrandForward, nil)
	svc := NewService(idx, coord.Range{Min: 1, Max: 100}, 1, coord.DNA, false)

	ch, cancel := svc.Subscribe()
	defer cancel()

	if err := svc.Select(seq.ID()); err != nil {
		t.Fatalf("Select: %v", err)
	}
	select {
	case <-ch:
	default:
		t.Errorf("expected a notification after Select")
	}
	if !svc.IsSelected(seq.ID()) {
		t.Errorf("IsSelected = false, want true")
	}

	svc.Deselect(seq.ID())
	if svc.IsSelected(seq.ID()) {
		t.Errorf("IsSelected = true after Deselect, want false")
	}
}

func TestSelectUnknownFeatureSeq(t *testing.T) {
	idx := feature.NewIndex(nil, nil)
	svc := NewService(idx, coord.Range{Min: 1, Max: 100}, 1, coord.DNA, false)
	if err := svc.Select(feature.SeqID(999)); err == nil {
		t.Fatalf("expected error selecting an unknown FeatureSeq")
	}
}

func TestClearSelection(t *testing.T) {
	idx := newTestIndex(t)
	a := idx.AddFeatureSeq("a", "", feature.StrandForward, nil)
	b := idx.AddFeatureSeq("b", "", feature.StrandForward, nil)
	svc := NewService(idx, coord.Range{Min: 1, Max: 100}, 1, coord.DNA, false)

	svc.Select(a.ID())
	svc.Select(b.ID())
	if len(svc.Selected()) != 2 {
		t.Fatalf("Selected() = %d, want 2", len(svc.Selected()))
	}
	svc.ClearSelection()
	if len(svc.Selected()) != 0 {
		t.Errorf("Selected() after ClearSelection = %d, want 0", len(svc.Selected()))
	}
}
