// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

// searchDoc is the flattened, indexable view of a FeatureSeq: one field
// per searchable Column (spec.md §3's Column.Searchable flag).
type searchDoc struct {
	Name   string
	Fields map[string]string
}

// SearchIndex is a free-text index over every FeatureSeq's searchable
// column values, supplementing spec.md §3's Column.Searchable flag with
// an actual query path for the (out of scope) UI search box. Grounded
// on nishad-srake's use of github.com/blevesearch/bleve/v2.
type SearchIndex struct {
	idx    bleve.Index
	bySeq  map[string]SeqID
}

// BuildSearchIndex builds an in-memory bleve index over every
// FeatureSeq in idx: its name, plus the value of each column flagged
// Searchable in idx.Columns that the FeatureSeq has set.
func BuildSearchIndex(idx *Index) (*SearchIndex, error) {
	mapping := bleve.NewIndexMapping()
	b, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("feature: creating search index: %w", err)
	}

	si := &SearchIndex{idx: b, bySeq: make(map[string]SeqID)}
	for _, s := range idx.FeatureSeqs() {
		doc := searchDoc{Name: s.Name, Fields: make(map[string]string)}
		for _, col := range idx.Columns.Columns() {
			if !col.Searchable {
				continue
			}
			var v string
			if col.ID == ColName {
				v = s.Name
			} else if cv, ok := s.Column(col.ID); ok {
				v = cv
			}
			if v != "" {
				doc.Fields[string(col.ID)] = v
			}
		}
		key := docKey(s.id)
		if err := b.Index(key, doc); err != nil {
			return nil, fmt.Errorf("feature: indexing %s: %w", s.Name, err)
		}
		si.bySeq[key] = s.id
	}
	return si, nil
}

func docKey(id SeqID) string {
	return fmt.Sprintf("seq-%d", id)
}

// Search runs a free-text query across every searchable column and
// returns the matching FeatureSeq IDs, highest relevance first.
func (si *SearchIndex) Search(query string) ([]SeqID, error) {
	if si == nil || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequest(q)
	res, err := si.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("feature: search %q: %w", query, err)
	}
	out := make([]SeqID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if id, ok := si.bySeq[hit.ID]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Close releases the underlying index resources.
func (si *SearchIndex) Close() error {
	if si == nil {
		return nil
	}
	return si.idx.Close()
}
