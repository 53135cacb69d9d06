// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sequtil

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Record is one parsed multi-sequence FASTA entry, used for bulk reads
// such as a ##FASTA section or a Dotter -F/-f sequence file, where only
// the name and residues are needed (contrast ReadFastaSeq, which also
// honours the spec's embedded-range and IUPAC validation rules for a
// single record).
type Record struct {
	Name string
	Desc string
	Seq  []byte
}

// ReadFastaRecords reads every FASTA entry from r using biogo's
// seqio/fasta scanner, the same way the teacher's fragment splitter
// reads input (cmd/ins/fragment.go).
func ReadFastaRecords(r io.Reader, seqType SeqType) ([]Record, error) {
	alpha := alphabet.DNA
	if seqType == Peptide {
		alpha = alphabet.Protein
	}
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alpha)))
	var recs []Record
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		letters := make([]byte, s.Len())
		for i := range letters {
			letters[i] = byte(s.At(i).L)
		}
		recs = append(recs, Record{Name: s.ID, Desc: s.Desc, Seq: letters})
	}
	if err := sc.Error(); err != nil {
		return recs, fmt.Errorf("sequtil: reading fasta records: %w", err)
	}
	return recs, nil
}

// WriteFastaRecord writes rec to w wrapped at width residues per line,
// using biogo's '%a' seq.Sequence formatting verb (cmd/ins/fragment.go).
func WriteFastaRecord(w io.Writer, rec Record, width int) error {
	s := linear.NewSeq(rec.Name, alphabet.BytesToLetters(rec.Seq), alphabet.DNAredundant)
	s.Desc = rec.Desc
	_, err := fmt.Fprintf(w, "%*a\n", width, s)
	return err
}
