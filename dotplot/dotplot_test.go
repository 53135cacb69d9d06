// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dotplot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kortschak/seqtools/feature"
)

// toyMatrix builds a substitution matrix over a 12-symbol alphabet with
// an exact match score of 51 and a mismatch score of -100. With window
// 5, a fully-matching diagonal scores 5*51=255, saturating the clamp
// exactly, while any mismatch drags the window sum deeply negative and
// clamps to 0. Real BLOSUM62 over a realistic 120aa pair (spec.md §8
// scenario S5) cannot be hand-verified without executing code, so this
// toy matrix stands in for it: same qualitative property (an
// all-maximum-intensity main diagonal against a zero background),
// fully checkable by hand arithmetic.
func toyMatrix(t *testing.T) *Matrix {
	t.Helper()
	const alphabet = "ABCDEFGHIJKL"
	scores := make([][]int, len(alphabet))
	for i := range scores {
		scores[i] = make([]int, len(alphabet))
		for j := range scores[i] {
			if i == j {
				scores[i][j] = 51
			} else {
				scores[i][j] = -100
			}
		}
	}
	m, err := NewMatrix(scores, alphabet)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return m
}

func TestComputeDiagonalSaturation(t *testing.T) {
	mtx := toyMatrix(t)
	seq := []byte("ABCDEFGHIJKL")

	p, err := Compute(seq, seq, mtx, Options{Zoom: 1, Window: 5}, nil, feature.StrandNone)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	wantDim := len(seq) - 5 + 1
	if p.Width != wantDim || p.Height != wantDim {
		t.Fatalf("dims = %dx%d, want %dx%d", p.Width, p.Height, wantDim, wantDim)
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			got := p.Pixelmap[y*p.Width+x]
			if x == y {
				if got != 255 {
					t.Errorf("Pixelmap[%d][%d] = %d, want 255 (main diagonal)", y, x, got)
				}
			} else if got != 0 {
				t.Errorf("Pixelmap[%d][%d] = %d, want 0 (off diagonal)", y, x, got)
			}
		}
	}
	if p.State != Ready {
		t.Errorf("State = %v, want Ready", p.State)
	}
}

func TestComputeMemoryLimit(t *testing.T) {
	mtx := toyMatrix(t)
	seq := bytes.Repeat([]byte("A"), 10000)
	_, err := Compute(seq, seq, mtx, Options{Zoom: 1, Window: 5, MemoryLimitMB: 1}, nil, feature.StrandNone)
	if err == nil {
		t.Fatalf("expected memory limit error")
	}
}

func TestComputeRejectsNonPositiveWindow(t *testing.T) {
	mtx := toyMatrix(t)
	_, err := Compute([]byte("ABC"), []byte("ABC"), mtx, Options{Window: 0}, nil, feature.StrandNone)
	if err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestSaveLoadBinaryRoundTrip(t *testing.T) {
	mtx := toyMatrix(t)
	seq := []byte("ABCDEFGHIJKL")
	p, err := Compute(seq, seq, mtx, Options{Zoom: 1, Window: 5}, nil, feature.StrandNone)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var buf bytes.Buffer
	if err := p.SaveBinary(&buf); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	loaded, err := LoadBinary(&buf)
	if err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}
	if loaded.Width != p.Width || loaded.Height != p.Height {
		t.Fatalf("dims mismatch: got %dx%d, want %dx%d", loaded.Width, loaded.Height, p.Width, p.Height)
	}
	if !bytes.Equal(loaded.Pixelmap, p.Pixelmap) {
		t.Errorf("Pixelmap mismatch after binary round trip")
	}
	if loaded.Window != p.Window || loaded.PixelFactor != p.PixelFactor {
		t.Errorf("header fields mismatch: window=%d/%d factor=%d/%d", loaded.Window, p.Window, loaded.PixelFactor, p.PixelFactor)
	}
}

func TestSaveLoadTextRoundTrip(t *testing.T) {
	mtx := toyMatrix(t)
	seq := []byte("ABCDEFGHIJKL")
	p, err := Compute(seq, seq, mtx, Options{Zoom: 1, Window: 5}, nil, feature.StrandNone)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var buf bytes.Buffer
	if err := p.SaveText(&buf); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	loaded, err := LoadText(&buf)
	if err != nil {
		t.Fatalf("LoadText: %v", err)
	}
	if !bytes.Equal(loaded.Pixelmap, p.Pixelmap) {
		t.Errorf("Pixelmap mismatch after text round trip")
	}
}

func TestHSPOverlayDrawsDiagonal(t *testing.T) {
	mtx := toyMatrix(t)
	seq := []byte("ABCDEFGHIJKL")
	idx := feature.NewIndex(nil, nil)
	ft, err := idx.CreateFeature(feature.FeatureArgs{
		Type:        feature.TypeMatch,
		RefName:     "ref",
		RefRange:    feature.Range{Min: 0, Max: 7},
		RefStrand:   feature.StrandForward,
		MatchName:   "match",
		MatchRange:  feature.Range{Min: 0, Max: 7},
		MatchStrand: feature.StrandForward,
	})
	if err != nil {
		t.Fatalf("CreateFeature: %v", err)
	}

	p, err := Compute(seq, seq, mtx, Options{Zoom: 1, Window: 5}, []*feature.Feature{ft}, feature.StrandForward)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if p.HSPPixmap == nil {
		t.Fatalf("HSPPixmap not populated")
	}
	if p.HSPPixmap[0] == 0 {
		t.Errorf("HSPPixmap[0][0] = 0, want the diagonal start to be drawn")
	}
}

func TestGreyrampApplyAndInvert(t *testing.T) {
	g := Greyramp{BlackPoint: 0, WhitePoint: 100}
	table := g.Table()
	if table[0] != 0 {
		t.Errorf("table[0] = %d, want 0", table[0])
	}
	if table[100] != 255 {
		t.Errorf("table[100] = %d, want 255", table[100])
	}

	inv := Greyramp{BlackPoint: 0, WhitePoint: 100, Invert: true}
	invTable := inv.Table()
	if invTable[0] != 255 {
		t.Errorf("inverted table[0] = %d, want 255", invTable[0])
	}
}

func TestAutoWindowClampsToMinimum(t *testing.T) {
	f1 := []float64{0.5, 0.5}
	f2 := []float64{0.5, 0.5}
	mtx := [][]int{{2, -1}, {-1, 2}}
	w := AutoWindow(0.3, 0.1, 100, 100, f1, f2, mtx)
	if w < 5 {
		t.Errorf("AutoWindow = %d, want >= 5", w)
	}
}

func TestStateString(t *testing.T) {
	if got := Ready.String(); got != "Ready" {
		t.Errorf("Ready.String() = %q, want Ready", got)
	}
	if !strings.HasPrefix(State(99).String(), "State(") {
		t.Errorf("unknown state did not fall back to State(n) form")
	}
}
