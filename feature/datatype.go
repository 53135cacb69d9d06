// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

// DataType is a named policy attached to a FeatureSeq: which fetch
// methods to try, in what order, for bulk, interactive (user) and
// optional-column population (spec.md §3, §4.6).
type DataType struct {
	Name             string
	BulkFetch        []string
	UserFetch        []string
	OptionalFetch    []string
	Flags            DataTypeFlags
}

// DataTypeFlags is the fixed flag vector mentioned in spec.md §3.
// Finalise does not read these flags: the fullRange extension is set
// by FinaliseOptions.MaxUnalignedBases alone.
type DataTypeFlags struct {
	// ShowUnalignedSeq records whether unaligned flanking sequence is
	// to be shown beyond displayRange.
	ShowUnalignedSeq bool
	// LimitUnalignedBases records whether MaxUnalignedBases caps the
	// number of unaligned flank bases shown.
	LimitUnalignedBases bool
	MaxUnalignedBases   int
}

// Style holds fill/line colour pairs for a source, with separate CDS and
// UTR variants (spec.md §3).
type Style struct {
	Source string

	FillColor      string
	LineColor      string
	CDSFillColor   string
	CDSLineColor   string
	UTRFillColor   string
	UTRLineColor   string
	Transparent    bool
}

// StyleSet looks up a Style by its source string.
type StyleSet struct {
	bySource map[string]*Style
}

// NewStyleSet builds a StyleSet from styles.
func NewStyleSet(styles []Style) *StyleSet {
	ss := &StyleSet{bySource: make(map[string]*Style, len(styles))}
	for i := range styles {
		s := styles[i]
		ss.bySource[s.Source] = &s
	}
	return ss
}

// Lookup returns the Style registered for source, or nil.
func (ss *StyleSet) Lookup(source string) *Style {
	if ss == nil {
		return nil
	}
	return ss.bySource[source]
}

// SpliceSite is a canonical donor/acceptor dinucleotide pair.
type SpliceSite struct {
	Forward        [2]string // e.g. "GT", "AG"
	Reverse        [2]string
	Complement     [2]string
	RevComplement  [2]string
	RequireBothEnds bool
}
