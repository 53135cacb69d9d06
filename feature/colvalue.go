// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import "fmt"

// NotAvailable is the sentinel column value spec.md §8 property 6 and
// §7 require: a column marked dataLoaded must contain either a
// populated value or this string.
const NotAvailable = "(not available)"

// ColumnValue returns the string representation of column id for f,
// consulting s for FeatureSeq-scoped columns (spec.md §4.3). Unknown
// columns return ErrInvalidColumn.
func (idx *Index) ColumnValue(f *Feature, s *FeatureSeq, id ColumnID) (string, error) {
	switch id {
	case ColName:
		if f.MatchName != "" {
			return f.MatchName, nil
		}
		if s != nil {
			return s.Name, nil
		}
		return f.RefName, nil
	case ColSource:
		return f.Source, nil
	case ColScore:
		if !f.HasScore {
			return NotAvailable, nil
		}
		return fmt.Sprintf("%.2f", f.Score), nil
	case ColID:
		return fmt.Sprintf("%.1f", f.Identity), nil
	case ColStart:
		v := f.RefRange.Min
		if f.RefStrand == StrandReverse {
			v = -v
		}
		return fmt.Sprintf("%d", v), nil
	case ColEnd:
		v := f.RefRange.Max
		if f.RefStrand == StrandReverse {
			v = -v
		}
		return fmt.Sprintf("%d", v), nil
	case ColSequence:
		if s == nil || !s.HasSeq {
			return NotAvailable, nil
		}
		lo, hi := f.MatchRange.Min, f.MatchRange.Max
		if lo < 1 {
			lo = 1
		}
		if hi > len(s.Sequence) {
			hi = len(s.Sequence)
		}
		if lo > hi {
			return NotAvailable, nil
		}
		return s.Sequence[lo-1 : hi], nil
	case ColGroup:
		if s == nil || len(s.groups) == 0 {
			return "", nil
		}
		for gid := range s.groups {
			if g, ok := idx.groups[GroupID(gid)]; ok {
				return g.Name, nil
			}
		}
		return "", nil
	}

	if s != nil {
		if v, ok := s.Column(id); ok {
			return v, nil
		}
	}
	if _, ok := idx.Columns.Lookup(id); ok {
		return NotAvailable, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidColumn, id)
}
