// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package selection implements the selection/projection service (spec.md
// §4.10): DNA/display coordinate queries backed by the coordinate engine
// and the feature model, plus a persistent set of selected FeatureSeqs
// with subscribe/notify on change.
package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/biogo/store/interval"

	"github.com/kortschak/seqtools/coord"
	"github.com/kortschak/seqtools/feature"
)

// ErrNoSuchFeatureSeq is returned by Select/Deselect for an unknown id.
var ErrNoSuchFeatureSeq = errors.New("selection: no such feature sequence")

// SelectionInfo is the bundle returned by a coordinate query: canonical
// DNA index, display index, reading frame, strand, the feature(s)
// containing that position, and feedback fields lifted from the best
// containing feature (spec.md §4.10).
type SelectionInfo struct {
	DNAIndex     int
	DisplayIndex int
	BaseNum      int
	Frame        int
	Strand       feature.Strand

	Features []*feature.Feature

	PercentID float64
	HasScore  bool
	Score     float64
}

// Service is the single-threaded cooperative coordinate/selection
// service: one instance owns one reference range and feature index
// (spec.md §5's scheduling model — UI-bound services are never
// accessed concurrently, so Service takes no internal lock around its
// query methods, only around the selected-set and subscriber list which
// a background HTTP introspection server may touch from another
// goroutine).
type Service struct {
	idx        *feature.Index
	refRange   coord.Range
	numFrames  int
	seqType    coord.SeqType
	displayRev bool

	tree      interval.IntTree
	treeBuilt bool

	mu         sync.Mutex
	selected   map[feature.SeqID]bool
	subscriber []chan struct{}
}

// NewService builds a Service over idx, projecting within refRange
// using numFrames (1 for DNA, 3 for Peptide) and the given seqType.
// displayRev mirrors all display coordinates about refRange.
func NewService(idx *feature.Index, refRange coord.Range, numFrames int, seqType coord.SeqType, displayRev bool) *Service {
	return &Service{
		idx:        idx,
		refRange:   refRange,
		numFrames:  numFrames,
		seqType:    seqType,
		displayRev: displayRev,
		selected:   make(map[feature.SeqID]bool),
	}
}

type featureInterval struct {
	uid uintptr
	f   *feature.Feature
}

func (fi featureInterval) Overlap(b interval.IntRange) bool {
	return b.Start <= fi.f.RefRange.Max && fi.f.RefRange.Min <= b.End
}
func (fi featureInterval) ID() uintptr { return fi.uid }
func (fi featureInterval) Range() interval.IntRange {
	return interval.IntRange{Start: fi.f.RefRange.Min, End: fi.f.RefRange.Max}
}

func (s *Service) ensureTree() {
	if s.treeBuilt {
		return
	}
	var n uintptr
	for _, f := range s.idx.Features() {
		if !f.RefRange.Valid() {
			continue
		}
		s.tree.Insert(featureInterval{uid: n, f: f}, true)
		n++
	}
	s.tree.AdjustRanges()
	s.treeBuilt = true
}

// featuresAt returns every feature whose RefRange contains dnaIdx,
// restricted to strand when strand is not StrandNone.
func (s *Service) featuresAt(dnaIdx int, strand feature.Strand) []*feature.Feature {
	s.ensureTree()
	query := featureInterval{f: &feature.Feature{RefRange: feature.Range{Min: dnaIdx, Max: dnaIdx}}}
	var out []*feature.Feature
	for _, hit := range s.tree.Get(query) {
		f := hit.(featureInterval).f
		if strand != feature.StrandNone && f.RefStrand != feature.StrandNone && f.RefStrand != strand {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ProjectDNA implements spec.md §4.10's display-coord query starting
// from a canonical DNA index plus context (frame, strand).
func (s *Service) ProjectDNA(dnaIdx, frame int, strand feature.Strand) (*SelectionInfo, error) {
	dc, err := coord.DnaToDisplay(dnaIdx, frame, s.numFrames, s.refRange, s.seqType, s.displayRev)
	if err != nil {
		return nil, fmt.Errorf("selection: projecting dna index %d: %w", dnaIdx, err)
	}
	return s.build(dnaIdx, dc, frame, strand), nil
}

// ProjectDisplay is ProjectDNA's inverse: the UI supplies a display
// coordinate and gets back the full bundle, including the canonical DNA
// index.
func (s *Service) ProjectDisplay(displayIdx, baseNum, frame int, strand feature.Strand) (*SelectionInfo, error) {
	dc := coord.DisplayCoord{Idx: displayIdx, BaseNum: baseNum}
	dnaIdx, err := coord.DisplayToDna(dc, frame, s.numFrames, s.refRange, s.seqType, s.displayRev)
	if err != nil {
		return nil, fmt.Errorf("selection: projecting display index %d: %w", displayIdx, err)
	}
	return s.build(dnaIdx, dc, frame, strand), nil
}

func (s *Service) build(dnaIdx int, dc coord.DisplayCoord, frame int, strand feature.Strand) *SelectionInfo {
	feats := s.featuresAt(dnaIdx, strand)
	info := &SelectionInfo{
		DNAIndex:     dnaIdx,
		DisplayIndex: dc.Idx,
		BaseNum:      dc.BaseNum,
		Frame:        frame,
		Strand:       strand,
		Features:     feats,
	}
	if best := bestFeedback(feats); best != nil {
		info.PercentID = best.Identity
		info.HasScore = best.HasScore
		info.Score = best.Score
	}
	return info
}

// bestFeedback picks the highest-scoring feature among feats for the
// feedback-box fields, or the first feature if none carries a score.
func bestFeedback(feats []*feature.Feature) *feature.Feature {
	var best *feature.Feature
	for _, f := range feats {
		if best == nil {
			best = f
			continue
		}
		if f.HasScore && (!best.HasScore || f.Score > best.Score) {
			best = f
		}
	}
	return best
}

// Select adds seqID to the persistent selected set and notifies
// subscribers. It is safe to call from a goroutine other than the one
// driving Project* (e.g. the optional HTTP introspection server).
func (s *Service) Select(seqID feature.SeqID) error {
	if _, err := s.idx.FeatureSeq(seqID); err != nil {
		return fmt.Errorf("%w: %d", ErrNoSuchFeatureSeq, seqID)
	}
	s.mu.Lock()
	had := s.selected[seqID]
	s.selected[seqID] = true
	s.mu.Unlock()
	if !had {
		s.notify()
	}
	return nil
}

// Deselect removes seqID from the selected set, if present, and
// notifies subscribers.
func (s *Service) Deselect(seqID feature.SeqID) {
	s.mu.Lock()
	_, had := s.selected[seqID]
	delete(s.selected, seqID)
	s.mu.Unlock()
	if had {
		s.notify()
	}
}

// ClearSelection empties the selected set and notifies subscribers if
// it was non-empty.
func (s *Service) ClearSelection() {
	s.mu.Lock()
	had := len(s.selected) > 0
	s.selected = make(map[feature.SeqID]bool)
	s.mu.Unlock()
	if had {
		s.notify()
	}
}

// Selected returns the current selected FeatureSeq ids, in no
// particular order.
func (s *Service) Selected() []feature.SeqID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]feature.SeqID, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	return out
}

// IsSelected reports whether seqID is currently selected.
func (s *Service) IsSelected(seqID feature.SeqID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[seqID]
}

// Subscribe registers for selection-change notifications. The returned
// channel receives an empty struct after every Select/Deselect/
// ClearSelection call that changes state; it is buffered so a slow
// subscriber never blocks the notifier. cancel unregisters the channel.
func (s *Service) Subscribe() (ch <-chan struct{}, cancel func()) {
	c := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscriber = append(s.subscriber, c)
	s.mu.Unlock()
	return c, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscriber {
			if sub == c {
				s.subscriber = append(s.subscriber[:i], s.subscriber[i+1:]...)
				close(c)
				return
			}
		}
	}
}

func (s *Service) notify() {
	s.mu.Lock()
	subs := append([]chan struct{}(nil), s.subscriber...)
	s.mu.Unlock()
	for _, c := range subs {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}
