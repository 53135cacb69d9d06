// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import "testing"

func TestFeatureColorNoStyleUsesDefaults(t *testing.T) {
	idx := NewIndex(nil, nil)
	f := &Feature{Type: TypeMatch}
	defaults := DefaultColors{Fill: "grey", Line: "black"}

	if got := idx.FeatureColor(f, StateNormal, PrintOff, RoleFill, defaults); got != "grey" {
		t.Errorf("FeatureColor(fill) = %q, want %q", got, "grey")
	}
	if got := idx.FeatureColor(f, StateNormal, PrintOff, RoleLine, defaults); got != "black" {
		t.Errorf("FeatureColor(line) = %q, want %q", got, "black")
	}
	if got := idx.FeatureColor(f, StateSelected, PrintOff, RoleFill, defaults); got != "*grey" {
		t.Errorf("FeatureColor(selected fill) = %q, want %q", got, "*grey")
	}
}

func TestFeatureColorStyleByType(t *testing.T) {
	styles := NewStyleSet([]Style{
		{
			Source:       "ensembl",
			FillColor:    "blue",
			LineColor:    "navy",
			CDSFillColor: "red",
			CDSLineColor: "darkred",
			UTRFillColor: "green",
			UTRLineColor: "darkgreen",
		},
	})
	idx := NewIndex(nil, styles)
	defaults := DefaultColors{Fill: "grey", Line: "black"}

	cds := &Feature{Type: TypeCDS, StyleRef: "ensembl"}
	if got := idx.FeatureColor(cds, StateNormal, PrintOff, RoleFill, defaults); got != "red" {
		t.Errorf("CDS fill = %q, want %q", got, "red")
	}
	if got := idx.FeatureColor(cds, StateNormal, PrintOff, RoleLine, defaults); got != "darkred" {
		t.Errorf("CDS line = %q, want %q", got, "darkred")
	}

	utr := &Feature{Type: TypeUTR, StyleRef: "ensembl"}
	if got := idx.FeatureColor(utr, StateNormal, PrintOff, RoleFill, defaults); got != "green" {
		t.Errorf("UTR fill = %q, want %q", got, "green")
	}

	other := &Feature{Type: TypeMatch, StyleRef: "ensembl"}
	if got := idx.FeatureColor(other, StateNormal, PrintOff, RoleFill, defaults); got != "blue" {
		t.Errorf("default-role fill = %q, want %q", got, "blue")
	}
	if got := idx.FeatureColor(other, StateSelected, PrintOff, RoleLine, defaults); got != "*navy" {
		t.Errorf("selected default-role line = %q, want %q", got, "*navy")
	}
}

func TestFeatureColorUnknownStyleRefFallsBackToDefaults(t *testing.T) {
	styles := NewStyleSet([]Style{{Source: "ensembl", FillColor: "blue"}})
	idx := NewIndex(nil, styles)
	f := &Feature{Type: TypeMatch, StyleRef: "no-such-source"}
	defaults := DefaultColors{Fill: "grey", Line: "black"}

	if got := idx.FeatureColor(f, StateNormal, PrintOff, RoleFill, defaults); got != "grey" {
		t.Errorf("FeatureColor with unregistered StyleRef = %q, want default %q", got, "grey")
	}
}
