// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

import (
	"strings"
	"testing"

	"github.com/kortschak/seqtools/feature"
)

// TestParseMatchGap exercises the CIGAR expansion scenario from
// spec.md §8 (S1): a single nucleotide-nucleotide match record whose
// Gap string contains M, D and I operations. Because the SO term here
// is the generic "match" (not "protein_match"), the reference and
// match axes advance in lock-step with no NumFrames scaling, matching
// the cursor algorithm in cigar.go.
func TestParseMatchGap(t *testing.T) {
	const doc = "##gff-version 3\n" +
		"chr1\tPROT\tmatch\t100\t150\t0.99\t+\t.\tID=m1;Target=seqA 1 17 +;Gap=M8 D3 M6 I1 M6\n"

	idx := feature.NewIndex(nil, nil)
	res, err := Parse(strings.NewReader(doc), idx, Options{NumFrames: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}

	feats := idx.Features()
	if len(feats) != 1 {
		t.Fatalf("got %d features, want 1", len(feats))
	}
	f := feats[0]
	if f.Type != feature.TypeMatch {
		t.Fatalf("type = %v, want Match", f.Type)
	}
	if f.RefRange != (feature.Range{Min: 100, Max: 150}) {
		t.Errorf("RefRange = %+v, want [100,150]", f.RefRange)
	}
	if f.MatchRange != (feature.Range{Min: 1, Max: 17}) {
		t.Errorf("MatchRange = %+v, want [1,17]", f.MatchRange)
	}

	want := []feature.Gap{
		{RefStart: 100, RefEnd: 107, MatchStart: 1, MatchEnd: 8},
		{RefStart: 111, RefEnd: 116, MatchStart: 9, MatchEnd: 14},
		{RefStart: 117, RefEnd: 122, MatchStart: 16, MatchEnd: 21},
	}
	if len(f.Gaps) != len(want) {
		t.Fatalf("got %d gaps, want %d: %+v", len(f.Gaps), len(want), f.Gaps)
	}
	for i, g := range want {
		if f.Gaps[i] != g {
			t.Errorf("gap[%d] = %+v, want %+v", i, f.Gaps[i], g)
		}
	}
}

// TestParseUnsupportedType checks that a record with an unrecognised SO
// term produces a warning rather than an error, and is skipped
// (spec.md §7's tolerant-parse policy).
func TestParseUnsupportedType(t *testing.T) {
	const doc = "chr1\t.\tbogus_type\t1\t10\t.\t+\t.\tID=x1\n"
	idx := feature.NewIndex(nil, nil)
	res, err := Parse(strings.NewReader(doc), idx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(res.Warnings), res.Warnings)
	}
	if len(idx.Features()) != 0 {
		t.Fatalf("got %d features, want 0", len(idx.Features()))
	}
}

// TestParseInvalidStrandWarns checks that a malformed column-7 strand
// character (neither +, -, . nor ?) produces a warning, distinct from
// the "." (not stranded) and "?" (unknown) GFF3 conventions which are
// silently accepted as StrandNone.
func TestParseInvalidStrandWarns(t *testing.T) {
	const doc = "chr1\t.\tregion\t1\t10\t.\tx\t.\tID=g1\n"
	idx := feature.NewIndex(nil, nil)
	res, err := Parse(strings.NewReader(doc), idx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(res.Warnings), res.Warnings)
	}
	feats := idx.Features()
	if len(feats) != 1 {
		t.Fatalf("got %d features, want 1 (record should still be created)", len(feats))
	}
	if feats[0].RefStrand != feature.StrandNone {
		t.Errorf("RefStrand = %v, want StrandNone", feats[0].RefStrand)
	}
}

// TestParseDotAndQuestionStrandsNoWarning checks that the two
// documented "no strand information" GFF3 conventions don't trigger the
// invalid-strand warning.
func TestParseDotAndQuestionStrandsNoWarning(t *testing.T) {
	const doc = "chr1\t.\tregion\t1\t10\t.\t.\t.\tID=g1\n" +
		"chr1\t.\tregion\t20\t30\t.\t?\t.\tID=g2\n"
	idx := feature.NewIndex(nil, nil)
	res, err := Parse(strings.NewReader(doc), idx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

// TestParseChildStitching checks that an exon record with a Parent
// attribute resolves against the mRNA's ID tag once Finalise runs
// (spec.md §4.5).
func TestParseChildStitching(t *testing.T) {
	const doc = "chr1\t.\tmRNA\t1\t100\t.\t+\t.\tID=t1;sequence=transcript1\n" +
		"chr1\t.\texon\t1\t20\t.\t+\t.\tID=e1;Parent=t1\n"
	idx := feature.NewIndex(nil, nil)
	if _, err := Parse(strings.NewReader(doc), idx, Options{}); err != nil {
		t.Fatal(err)
	}
	seq, ok := idx.FeatureSeqByIDTag("t1")
	if !ok {
		t.Fatal("transcript FeatureSeq not registered under ID t1")
	}
	if len(seq.Features()) != 1 {
		t.Fatalf("before Finalise, seq should own only the mRNA record itself, got %d", len(seq.Features()))
	}

	if err := idx.Finalise(feature.FinaliseOptions{NumFrames: 1}); err != nil {
		t.Fatal(err)
	}
	if len(seq.Features()) != 2 {
		t.Fatalf("after Finalise, seq should own the mRNA and its stitched exon, got %d", len(seq.Features()))
	}
}

// TestParseSequenceRegionAndFasta checks that the ancillary
// ##sequence-region and ##FASTA directives are captured in Result
// rather than silently dropped.
func TestParseSequenceRegionAndFasta(t *testing.T) {
	const doc = "##sequence-region chr1 1 1000\n" +
		"##FASTA\n" +
		">chr1\n" +
		"ACGTACGT\n" +
		"TTTT\n"
	idx := feature.NewIndex(nil, nil)
	res, err := Parse(strings.NewReader(doc), idx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.SequenceRegions["chr1"]; got != [2]int{1, 1000} {
		t.Errorf("sequence-region = %v, want [1 1000]", got)
	}
	if res.Fasta["chr1"] != "ACGTACGTTTTT" {
		t.Errorf("fasta[chr1] = %q, want ACGTACGTTTTT", res.Fasta["chr1"])
	}
}

// TestParseGzipFallback checks that OpenFile, given a path without a
// .gz suffix, takes the plain os.Open branch and reports a missing file
// as an error. The pgzip decompression branch is not tested here.
func TestParseGzipFallback(t *testing.T) {
	_, err := OpenFile("testdata/does-not-exist.gff3")
	if err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}
