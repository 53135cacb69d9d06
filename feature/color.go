// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

// SelectionState is whether a feature is part of the current selection.
type SelectionState int8

const (
	StateNormal SelectionState = iota
	StateSelected
)

// PrintMode selects between screen and print colour variants.
type PrintMode int8

const (
	PrintOff PrintMode = iota
	PrintOn
)

// ColorRole distinguishes a fill colour from a border/line colour.
type ColorRole int8

const (
	RoleFill ColorRole = iota
	RoleLine
)

// DefaultColors supplies the fallback fill/line colours used when no
// Style is registered for a feature's source.
type DefaultColors struct {
	Fill, Line string
}

// FeatureColor resolves the style → category → colour-slot chain
// described in spec.md §4.3: style is looked up by the feature's
// StyleRef (which Finalise sets from its source), CDS and UTR features
// take the style's CDS and UTR colours, and every other type, exons and
// matches included, takes the style's plain fill/line colours; there
// is no separate exon or match colour. The colour is selected by the
// (state, printMode, role) triple. printMode is
// accepted for API completeness (callers may keep separate print
// palettes) but this implementation uses the same colour for both,
// since no print-specific palette is modelled.
func (idx *Index) FeatureColor(f *Feature, state SelectionState, printMode PrintMode, role ColorRole, defaults DefaultColors) string {
	var style *Style
	if idx.Styles != nil && f.StyleRef != "" {
		style = idx.Styles.Lookup(f.StyleRef)
	}
	if style == nil {
		if role == RoleFill {
			return shade(defaults.Fill, state)
		}
		return shade(defaults.Line, state)
	}

	switch f.Type {
	case TypeCDS:
		if role == RoleFill {
			return shade(style.CDSFillColor, state)
		}
		return shade(style.CDSLineColor, state)
	case TypeUTR:
		if role == RoleFill {
			return shade(style.UTRFillColor, state)
		}
		return shade(style.UTRLineColor, state)
	default:
		if role == RoleFill {
			return shade(style.FillColor, state)
		}
		return shade(style.LineColor, state)
	}
}

// shade is a stand-in for the original's selected-state highlight
// computation: selected features are drawn with the "*" prefix
// convention so a UI renderer can apply its own highlight without this
// package needing to know colour spaces.
func shade(color string, state SelectionState) string {
	if color == "" {
		return ""
	}
	if state == StateSelected {
		return "*" + color
	}
	return color
}
