// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gff3 parses GFF3 v3 documents, with an optional embedded or
// sidecar FASTA, into a feature.Index (spec.md §4.4). It tokenises the
// nine tab-separated columns and the attribute list, dispatches on the
// Sequence Ontology term, expands CIGAR/Gap strings into per-alignment
// sub-ranges, and leaves range/frame finalisation to feature.Index.Finalise.
package gff3

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/kortschak/seqtools/feature"
)

// Options configures the parser.
type Options struct {
	// NumFrames is the frame count used to scale protein_match CIGAR
	// operations into nucleotide units (spec.md §4.4). 3 for the usual
	// peptide display, 1 disables scaling entirely.
	NumFrames int

	// LegacyPeptideCount reproduces the "hack to make blixem work with
	// currently-wrong data from zmap" interpretation noted in spec.md §9:
	// when true, a CIGAR count n for a protein_match token is read as
	// already being a nucleotide count, and the peptide count is
	// derived as n/NumFrames, instead of the non-hacked default where n
	// is a peptide count scaled up by NumFrames.
	LegacyPeptideCount bool

	// DefaultSource is used for column 2 when it is "." and no Name
	// attribute source override applies.
	DefaultSource string
}

// Warning is a non-fatal parse diagnostic: the offending record is
// skipped (or the faulty attribute ignored) and parsing continues
// (spec.md §7).
type Warning struct {
	File string
	Line int
	Msg  string
}

func (w Warning) String() string {
	if w.File == "" {
		return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Msg)
}

// soType maps supported Sequence Ontology terms to feature.Type
// (spec.md §4.4). Transcript terms map to feature.TypeTranscript and
// become Features that also register the FeatureSeq their children
// are stitched onto.
var soType = map[string]feature.Type{
	"match":                feature.TypeMatch,
	"nucleotide_match":     feature.TypeMatch,
	"protein_match":        feature.TypeMatch,
	"match_part":           feature.TypeMatch,
	"match_set":            feature.TypeMatchSet,
	"transcript":           feature.TypeTranscript,
	"primary_transcript":   feature.TypeTranscript,
	"processed_transcript": feature.TypeTranscript,
	"mRNA":                 feature.TypeTranscript,
	"CDS":                  feature.TypeCDS,
	"UTR":                  feature.TypeUTR,
	"exon":                 feature.TypeExon,
	"intron":               feature.TypeIntron,
	"SNP":                  feature.TypeVariation,
	"polyA_sequence":       feature.TypePolyASite,
	"region":               feature.TypeRegion,
	"gap":                  feature.TypeGap,
}

// isPeptideAlignment reports whether a SO term implies a protein query
// aligned to a DNA reference, whose CIGAR counts are in peptide units
// and must be scaled by NumFrames to become reference nucleotide spans.
func isPeptideAlignment(soTerm string) bool {
	return soTerm == "protein_match"
}

// Result is everything Parse collects besides the Features and
// FeatureSeqs it attaches directly to the supplied feature.Index.
type Result struct {
	Warnings []Warning

	// Fasta holds sequences read from an embedded "##FASTA" section,
	// keyed by sequence ID.
	Fasta map[string]string

	// SequenceRegions holds the [start,end] bounds declared by
	// "##sequence-region" directives, keyed by sequence ID.
	SequenceRegions map[string][2]int
}

// Parse reads a GFF3(+FASTA) document from r into idx.
func Parse(r io.Reader, idx *feature.Index, opts Options) (*Result, error) {
	if opts.NumFrames == 0 {
		opts.NumFrames = 3
	}
	p := &parser{idx: idx, opts: opts, refSeqRanges: make(map[string][2]int)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		p.line++
		line := sc.Text()
		if p.inFasta {
			p.fastaLine(line)
			continue
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "##FASTA") {
			p.inFasta = true
			continue
		}
		if strings.HasPrefix(line, "##sequence-region") {
			p.sequenceRegion(line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		p.record(line)
	}
	p.flushFasta()
	res := &Result{Warnings: p.warnings, Fasta: p.fasta, SequenceRegions: p.refSeqRanges}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("gff3: scanning: %w", err)
	}
	return res, nil
}

// OpenFile opens path for reading, transparently decompressing a
// trailing ".gz" extension with pgzip, matching the tolerance for
// gzipped Ensembl dumps noted in SPEC_FULL.md's COMPONENT DETAIL section.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gff3: opening %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gff3: gzip header in %s: %w", path, err)
	}
	return &gzFile{Reader: zr, f: f}, nil
}

type gzFile struct {
	*pgzip.Reader
	f *os.File
}

func (g *gzFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}
