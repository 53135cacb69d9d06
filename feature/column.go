// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

// ColumnValueType is the value kind a Column holds.
type ColumnValueType int8

const (
	ColumnString ColumnValueType = iota
	ColumnInt
	ColumnFloat
)

// ColumnID identifies a projectable attribute. This is the schema the UI
// binds to; no column beyond the identifier is hard-coded into Feature
// or FeatureSeq, per spec.md §3.
type ColumnID string

// Well-known column identifiers, matching spec.md §3's enumeration. A
// Column list may define additional identifiers; these are simply the
// well-known ones, several of which Index.ColumnValue computes itself.
const (
	ColName     ColumnID = "NAME"
	ColScore    ColumnID = "SCORE"
	ColID       ColumnID = "ID"
	ColStart    ColumnID = "START"
	ColSequence ColumnID = "SEQUENCE"
	ColEnd      ColumnID = "END"
	ColOrganism ColumnID = "ORGANISM"
	ColGene     ColumnID = "GENE"
	ColTissue   ColumnID = "TISSUE"
	ColStrain   ColumnID = "STRAIN"
	ColSource   ColumnID = "SOURCE"
	ColGroup    ColumnID = "GROUP"
)

// Column describes one projectable attribute of a FeatureSeq.
type Column struct {
	ID            ColumnID
	ValueType     ColumnValueType
	Title         string
	DefaultWidth  int
	Searchable    bool
	Summary       bool
	EMBLLine      string // optional EMBL line code to pull from on fetch, e.g. "OS"
	EMBLTag       string // optional EMBL feature-table qualifier, e.g. "/organism"
}

// ColumnList is an ordered schema of Columns, indexed by ID for fast
// lookup during parsing and projection.
type ColumnList struct {
	order []Column
	byID  map[ColumnID]int
}

// NewColumnList builds a ColumnList from cols, preserving order.
func NewColumnList(cols []Column) *ColumnList {
	cl := &ColumnList{
		order: append([]Column(nil), cols...),
		byID:  make(map[ColumnID]int, len(cols)),
	}
	for i, c := range cl.order {
		cl.byID[c.ID] = i
	}
	return cl
}

// Columns returns the schema in display order.
func (cl *ColumnList) Columns() []Column {
	return cl.order
}

// Lookup returns the Column for id and whether it exists.
func (cl *ColumnList) Lookup(id ColumnID) (Column, bool) {
	i, ok := cl.byID[id]
	if !ok {
		return Column{}, false
	}
	return cl.order[i], true
}

// DefaultColumns is a reasonable default schema matching the identifiers
// named in spec.md §3, for callers that have no style/schema file.
func DefaultColumns() *ColumnList {
	return NewColumnList([]Column{
		{ID: ColName, ValueType: ColumnString, Title: "Name", DefaultWidth: 20, Searchable: true, Summary: true},
		{ID: ColScore, ValueType: ColumnFloat, Title: "Score", DefaultWidth: 8, Summary: true},
		{ID: ColID, ValueType: ColumnFloat, Title: "%Id", DefaultWidth: 8, Summary: true},
		{ID: ColStart, ValueType: ColumnInt, Title: "Start", DefaultWidth: 10},
		{ID: ColEnd, ValueType: ColumnInt, Title: "End", DefaultWidth: 10},
		{ID: ColSequence, ValueType: ColumnString, Title: "Sequence", DefaultWidth: 0},
		{ID: ColOrganism, ValueType: ColumnString, Title: "Organism", DefaultWidth: 20, Searchable: true},
		{ID: ColGene, ValueType: ColumnString, Title: "Gene", DefaultWidth: 20, Searchable: true},
		{ID: ColTissue, ValueType: ColumnString, Title: "Tissue", DefaultWidth: 16, Searchable: true},
		{ID: ColStrain, ValueType: ColumnString, Title: "Strain", DefaultWidth: 16, Searchable: true},
		{ID: ColSource, ValueType: ColumnString, Title: "Source", DefaultWidth: 12, Searchable: true},
		{ID: ColGroup, ValueType: ColumnString, Title: "Group", DefaultWidth: 12},
	})
}
