// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/kortschak/seqtools/feature"
)

// styleDoc is the YAML shape of a single style entry, matching spec.md
// §6's ".ini-like" style description translated to YAML: one document
// per source, with a `colours` spec string and an optional
// `transcript-cds-colours` string.
type styleDoc struct {
	Source               string `yaml:"source"`
	Colours              string `yaml:"colours"`
	TranscriptCDSColours string `yaml:"transcript-cds-colours"`
}

// ParseStyles reads a YAML style file — a list of styleDocs — into a
// feature.StyleSet. Each colour spec is `;`-separated items of the form
// `<normal|selected> <fill|border> <colour>` (spec.md §6); only the
// "normal" variant is kept, since feature.Style has no separate
// selected-state fields (selection highlighting is applied by
// feature.FeatureColor's shade function at lookup time instead).
func ParseStyles(r io.Reader) (*feature.StyleSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading style file: %w", err)
	}
	var docs []styleDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("config: decoding style yaml: %w", err)
	}

	styles := make([]feature.Style, 0, len(docs))
	for _, d := range docs {
		s := feature.Style{Source: d.Source}
		if err := applyColourSpec(&s, d.Colours, false); err != nil {
			return nil, fmt.Errorf("config: style %q colours: %w", d.Source, err)
		}
		if d.TranscriptCDSColours != "" {
			if err := applyColourSpec(&s, d.TranscriptCDSColours, true); err != nil {
				return nil, fmt.Errorf("config: style %q transcript-cds-colours: %w", d.Source, err)
			}
		}
		styles = append(styles, s)
	}
	return feature.NewStyleSet(styles), nil
}

// applyColourSpec parses a `;`-separated list of `<state> <role>
// <colour>` items, ignoring "selected" entries, and writes the
// "normal" ones into s's fill/line (or CDS fill/line, when cds is
// true) fields.
func applyColourSpec(s *feature.Style, spec string, cds bool) error {
	if spec == "" {
		return nil
	}
	for _, item := range strings.Split(spec, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fields := strings.Fields(item)
		if len(fields) != 3 {
			return fmt.Errorf("malformed colour item %q", item)
		}
		state, role, colour := fields[0], fields[1], fields[2]
		if state != "normal" {
			continue
		}
		switch role {
		case "fill":
			if cds {
				s.CDSFillColor = colour
			} else {
				s.FillColor = colour
			}
		case "border":
			if cds {
				s.CDSLineColor = colour
			} else {
				s.LineColor = colour
			}
		default:
			return fmt.Errorf("unknown colour role %q", role)
		}
	}
	return nil
}

// columnDoc is the YAML shape of one Column schema entry.
type columnDoc struct {
	ID           string `yaml:"id"`
	ValueType    string `yaml:"type"`
	Title        string `yaml:"title"`
	DefaultWidth int    `yaml:"width"`
	Searchable   bool   `yaml:"searchable"`
	Summary      bool   `yaml:"summary"`
	EMBLLine     string `yaml:"embl-line"`
	EMBLTag      string `yaml:"embl-tag"`
}

// ParseColumns reads a YAML Column schema file into a feature.ColumnList
// (SPEC_FULL.md's ambient config addition).
func ParseColumns(r io.Reader) (*feature.ColumnList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading column schema: %w", err)
	}
	var docs []columnDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("config: decoding column schema yaml: %w", err)
	}
	cols := make([]feature.Column, len(docs))
	for i, d := range docs {
		cols[i] = feature.Column{
			ID:           feature.ColumnID(strings.ToUpper(d.ID)),
			ValueType:    columnValueTypeFromString(d.ValueType),
			Title:        d.Title,
			DefaultWidth: d.DefaultWidth,
			Searchable:   d.Searchable,
			Summary:      d.Summary,
			EMBLLine:     d.EMBLLine,
			EMBLTag:      d.EMBLTag,
		}
	}
	return feature.NewColumnList(cols), nil
}

func columnValueTypeFromString(s string) feature.ColumnValueType {
	switch strings.ToLower(s) {
	case "int":
		return feature.ColumnInt
	case "float":
		return feature.ColumnFloat
	default:
		return feature.ColumnString
	}
}

// dataTypeDoc is the YAML shape of a DataType schema entry (spec.md §3).
type dataTypeDoc struct {
	Name          string   `yaml:"name"`
	BulkFetch     []string `yaml:"bulk-fetch"`
	UserFetch     []string `yaml:"user-fetch"`
	OptionalFetch []string `yaml:"optional-fetch"`
	Flags         struct {
		ShowUnalignedSeq    bool `yaml:"show-unaligned-seq"`
		LimitUnalignedBases bool `yaml:"limit-unaligned-bases"`
		MaxUnalignedBases   int  `yaml:"max-unaligned-bases"`
	} `yaml:"flags"`
}

// ParseDataTypes reads a YAML DataType schema file into a slice of
// feature.DataType, keyed by Name for the caller to index as needed.
func ParseDataTypes(r io.Reader) ([]feature.DataType, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading data-type schema: %w", err)
	}
	var docs []dataTypeDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("config: decoding data-type schema yaml: %w", err)
	}
	out := make([]feature.DataType, len(docs))
	for i, d := range docs {
		out[i] = feature.DataType{
			Name:          d.Name,
			BulkFetch:     d.BulkFetch,
			UserFetch:     d.UserFetch,
			OptionalFetch: d.OptionalFetch,
			Flags: feature.DataTypeFlags{
				ShowUnalignedSeq:    d.Flags.ShowUnalignedSeq,
				LimitUnalignedBases: d.Flags.LimitUnalignedBases,
				MaxUnalignedBases:   d.Flags.MaxUnalignedBases,
			},
		}
	}
	return out, nil
}
