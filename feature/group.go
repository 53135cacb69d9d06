// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import "fmt"

// GroupID identifies a Group within an Index.
type GroupID int

// Group is a named, highlightable subset of FeatureSeqs (spec.md §3).
// Groups are presentation-only: they never affect projection.
// FeatureIsShownInGrid and FeatureIsShownInDetail do not consult group
// membership or the Visible flag.
type Group struct {
	id             GroupID
	Name           string
	Order          int
	Visible        bool
	Highlight      bool
	HighlightColor string

	members map[SeqID]bool
}

// ID returns the group's stable identifier.
func (g *Group) ID() GroupID { return g.id }

// Members returns the FeatureSeq IDs currently in the group.
func (g *Group) Members() []SeqID {
	out := make([]SeqID, 0, len(g.members))
	for id := range g.members {
		out = append(out, id)
	}
	return out
}

// CreateGroup adds a new, initially empty and visible Group.
func (idx *Index) CreateGroup(name string) *Group {
	idx.nextGroup++
	g := &Group{
		id:      idx.nextGroup,
		Name:    name,
		Visible: true,
		members: make(map[SeqID]bool),
	}
	idx.groups[g.id] = g
	return g
}

// DeleteGroup removes a group and its reverse index on member FeatureSeqs.
func (idx *Index) DeleteGroup(id GroupID) error {
	g, ok := idx.groups[id]
	if !ok {
		return fmt.Errorf("feature: unknown group %d", id)
	}
	for seqID := range g.members {
		if s, ok := idx.seqs[seqID]; ok {
			delete(s.groups, int(id))
		}
	}
	delete(idx.groups, id)
	return nil
}

// RenameGroup sets g's display name.
func (idx *Index) RenameGroup(id GroupID, name string) error {
	g, err := idx.group(id)
	if err != nil {
		return err
	}
	g.Name = name
	return nil
}

// SetGroupOrder sets g's display order.
func (idx *Index) SetGroupOrder(id GroupID, order int) error {
	g, err := idx.group(id)
	if err != nil {
		return err
	}
	g.Order = order
	return nil
}

// SetGroupVisible sets g's visibility.
func (idx *Index) SetGroupVisible(id GroupID, visible bool) error {
	g, err := idx.group(id)
	if err != nil {
		return err
	}
	g.Visible = visible
	return nil
}

// SetGroupHighlight sets g's highlight flag and colour.
func (idx *Index) SetGroupHighlight(id GroupID, highlight bool, color string) error {
	g, err := idx.group(id)
	if err != nil {
		return err
	}
	g.Highlight = highlight
	g.HighlightColor = color
	return nil
}

// AddToGroup adds seqID to group id, maintaining the reverse index on
// the FeatureSeq.
func (idx *Index) AddToGroup(id GroupID, seqID SeqID) error {
	g, err := idx.group(id)
	if err != nil {
		return err
	}
	s, ok := idx.seqs[seqID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSeqID, seqID)
	}
	g.members[seqID] = true
	if s.groups == nil {
		s.groups = make(map[int]bool)
	}
	s.groups[int(id)] = true
	return nil
}

// RemoveFromGroup removes seqID from group id.
func (idx *Index) RemoveFromGroup(id GroupID, seqID SeqID) error {
	g, err := idx.group(id)
	if err != nil {
		return err
	}
	delete(g.members, seqID)
	if s, ok := idx.seqs[seqID]; ok {
		delete(s.groups, int(id))
	}
	return nil
}

func (idx *Index) group(id GroupID) (*Group, error) {
	g, ok := idx.groups[id]
	if !ok {
		return nil, fmt.Errorf("feature: unknown group %d", id)
	}
	return g, nil
}
