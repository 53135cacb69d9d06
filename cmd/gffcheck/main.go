// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gffcheck parses a GFF3(+FASTA) file and reports feature and
// FeatureSeq counts plus any parse warnings. It is a thin smoke-test
// wrapper over the gff3 and feature packages, not a replacement for the
// Blixem CLI surface (out of scope, spec.md §1).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kortschak/seqtools/feature"
	"github.com/kortschak/seqtools/gff3"
)

var numFrames int

var rootCmd = &cobra.Command{
	Use:   "gffcheck <file.gff3>",
	Short: "Parse a GFF3 file and report feature counts and warnings",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().IntVar(&numFrames, "frames", 3, "frame count used to scale protein_match CIGAR operations")
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	rc, err := gff3.OpenFile(path)
	if err != nil {
		return fmt.Errorf("gffcheck: %w", err)
	}
	defer rc.Close()

	idx := feature.NewIndex(feature.DefaultColumns(), nil)
	res, err := gff3.Parse(rc, idx, gff3.Options{NumFrames: numFrames})
	if err != nil {
		return fmt.Errorf("gffcheck: %w", err)
	}

	fmt.Printf("features: %d\n", len(idx.Features()))
	fmt.Printf("feature sequences: %d\n", len(idx.FeatureSeqs()))
	fmt.Printf("embedded fasta entries: %d\n", len(res.Fasta))
	fmt.Printf("sequence-region directives: %d\n", len(res.SequenceRegions))
	if len(res.Warnings) > 0 {
		fmt.Printf("warnings: %d\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Println("  " + w.String())
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Print(err)
		os.Exit(1)
	}
}
