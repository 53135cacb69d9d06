// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command depth parses a GFF3 file, computes per-base depth-of-coverage
// over a reference range, and prints it. A thin smoke-test wrapper over
// the coverage package.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kortschak/seqtools/coverage"
	"github.com/kortschak/seqtools/feature"
	"github.com/kortschak/seqtools/gff3"
)

var (
	rangeMin int
	rangeMax int
	weighted bool
)

var rootCmd = &cobra.Command{
	Use:   "depth <file.gff3>",
	Short: "Compute per-base depth of coverage over a reference range",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().IntVar(&rangeMin, "min", 1, "reference range lower bound")
	rootCmd.Flags().IntVar(&rangeMax, "max", 0, "reference range upper bound (0 means span every parsed feature)")
	rootCmd.Flags().BoolVar(&weighted, "weighted", false, "weight depth by feature score")
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	rc, err := gff3.OpenFile(path)
	if err != nil {
		return fmt.Errorf("depth: %w", err)
	}
	defer rc.Close()

	idx := feature.NewIndex(nil, nil)
	if _, err := gff3.Parse(rc, idx, gff3.Options{NumFrames: 3}); err != nil {
		return fmt.Errorf("depth: %w", err)
	}

	refRange := feature.Range{Min: rangeMin, Max: rangeMax}
	if refRange.Max == 0 {
		refRange.Max = spanningMax(idx, refRange.Min)
	}

	d, err := coverage.ComputeDepth(idx, refRange, weighted)
	if err != nil {
		return fmt.Errorf("depth: %w", err)
	}

	fmt.Printf("max depth: %v\n", d.Max)
	for pos := refRange.Min; pos <= refRange.Max; pos++ {
		fmt.Printf("%d\t%v\n", pos, d.At(pos))
	}
	return nil
}

func spanningMax(idx *feature.Index, min int) int {
	max := min
	for _, f := range idx.Features() {
		if f.RefRange.Valid() && f.RefRange.Max > max {
			max = f.RefRange.Max
		}
	}
	return max
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Print(err)
		os.Exit(1)
	}
}
