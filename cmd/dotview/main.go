// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dotview runs the dot-plot engine over a pair of FASTA files
// and saves the resulting plot, or loads a previously saved plot and
// prints a summary. A thin smoke-test wrapper over the dotplot package;
// the full Dotter CLI surface (§6) is out of scope.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kortschak/seqtools/dotplot"
	"github.com/kortschak/seqtools/sequtil"
)

var (
	refPath, matchPath string
	outPath            string
	loadPath           string
	window             int
	zoom               int
	textFormat         bool
)

var rootCmd = &cobra.Command{
	Use:   "dotview",
	Short: "Compute or inspect a Dotter-style dot-plot",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&refPath, "ref", "", "reference FASTA file")
	rootCmd.Flags().StringVar(&matchPath, "match", "", "match FASTA file")
	rootCmd.Flags().StringVar(&outPath, "save", "", "path to save the computed plot")
	rootCmd.Flags().StringVar(&loadPath, "load", "", "path to a previously saved plot, printed and exited")
	rootCmd.Flags().IntVar(&window, "window", 10, "sliding-window size")
	rootCmd.Flags().IntVar(&zoom, "zoom", 1, "pixels per convolution cell")
	rootCmd.Flags().BoolVar(&textFormat, "text", false, "use the text/TSV format instead of binary")
}

// dnaMatrix is a simple identity/mismatch substitution matrix over the
// 5-symbol DNA+N alphabet, standing in for a caller-supplied -M matrix
// file (spec.md §6's `-M <file>` flag is out of scope; this gives the
// smoke-test wrapper something to convolve with).
func dnaMatrix() (*dotplot.Matrix, error) {
	const alphabet = "ACGTN"
	scores := make([][]int, len(alphabet))
	for i := range scores {
		scores[i] = make([]int, len(alphabet))
		for j := range scores[i] {
			if i == j && alphabet[i] != 'N' {
				scores[i][j] = 5
			} else {
				scores[i][j] = -4
			}
		}
	}
	return dotplot.NewMatrix(scores, alphabet)
}

func run(cmd *cobra.Command, args []string) error {
	if loadPath != "" {
		return showSaved(loadPath)
	}
	if refPath == "" || matchPath == "" {
		return fmt.Errorf("dotview: --ref and --match are required unless --load is given")
	}

	ref, err := readSingleFasta(refPath)
	if err != nil {
		return err
	}
	match, err := readSingleFasta(matchPath)
	if err != nil {
		return err
	}

	mtx, err := dnaMatrix()
	if err != nil {
		return fmt.Errorf("dotview: %w", err)
	}

	p, err := dotplot.Compute(ref, match, mtx, dotplot.Options{Zoom: zoom, Window: window}, nil, 0)
	if err != nil {
		return fmt.Errorf("dotview: computing plot: %w", err)
	}
	fmt.Printf("computed %dx%d plot, window=%d zoom=%d\n", p.Width, p.Height, p.Window, zoom)

	if outPath == "" {
		return nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("dotview: %w", err)
	}
	defer f.Close()
	if textFormat {
		return p.SaveText(f)
	}
	return p.SaveBinary(f)
}

func showSaved(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dotview: %w", err)
	}
	defer f.Close()

	var p *dotplot.Plot
	if textFormat {
		p, err = dotplot.LoadText(f)
	} else {
		p, err = dotplot.LoadBinary(f)
	}
	if err != nil {
		return fmt.Errorf("dotview: loading %s: %w", path, err)
	}
	fmt.Printf("loaded %dx%d plot, window=%d\n", p.Width, p.Height, p.Window)
	return nil
}

func readSingleFasta(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dotview: %w", err)
	}
	defer f.Close()
	recs, err := sequtil.ReadFastaRecords(f, sequtil.DNA)
	if err != nil {
		return nil, fmt.Errorf("dotview: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("dotview: %s contains no sequences", path)
	}
	return recs[0].Seq, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Print(err)
		os.Exit(1)
	}
}
