// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dotplot implements the Dotter dot-plot engine (spec.md §4.8):
// sliding-window substitution-matrix convolution over a pair of
// sequences, greyramp intensity mapping, HSP overlay, and binary/text
// save-load round-tripping.
package dotplot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/kortschak/seqtools/feature"
	"github.com/kortschak/seqtools/karlin"
)

// State is a Dotter session's position in its lifecycle.
type State int8

const (
	Idle State = iota
	Computing
	Ready
	Redrawn
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Computing:
		return "Computing"
	case Ready:
		return "Ready"
	case Redrawn:
		return "Redrawn"
	case Loaded:
		return "Loaded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// ErrMemoryLimitExceeded is returned when a Compute call's pixelmap
// would exceed the configured MemoryLimitMB.
var ErrMemoryLimitExceeded = errors.New("dotplot: memory limit exceeded")

// Matrix is a square substitution score matrix addressed by residue
// letter, e.g. a 24x24 BLOSUM62 table, backed by gonum's mat.Dense so
// Compute's per-offset convolution reads scores via Dense.At instead of
// a hand-rolled 2D slice.
type Matrix struct {
	*mat.Dense
	Alphabet string
}

// NewMatrix builds a Matrix from a square slice of integer scores and
// the alphabet string addressing its rows/columns (spec.md §4.8's
// "24x24 substitution matrix mtx").
func NewMatrix(scores [][]int, alphabet string) (*Matrix, error) {
	n := len(scores)
	if n != len(alphabet) {
		return nil, fmt.Errorf("dotplot: matrix size %d does not match alphabet length %d", n, len(alphabet))
	}
	data := make([]float64, 0, n*n)
	for _, row := range scores {
		if len(row) != n {
			return nil, fmt.Errorf("dotplot: matrix row length %d does not match %d", len(row), n)
		}
		for _, v := range row {
			data = append(data, float64(v))
		}
	}
	return &Matrix{Dense: mat.NewDense(n, n, data), Alphabet: alphabet}, nil
}

// tob is the per-residue ascii-to-alphabet-index translation table
// (spec.md §4.8 step 1), computed on demand per lookup since the
// alphabets involved are short.
func (m *Matrix) tob(c byte) int {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return strings.IndexByte(m.Alphabet, c)
}

func (m *Matrix) score(a, b byte) int {
	i, j := m.tob(a), m.tob(b)
	if i < 0 || j < 0 {
		return 0
	}
	return int(m.At(i, j))
}

// AutoWindow implements spec.md §4.8 step 2: when no explicit window is
// requested, derive one from Karlin-Altschul statistics and clamp it to
// [5, qlen/4].
func AutoWindow(lambda, k float64, qlen, slen int, f1, f2 []float64, mtx [][]int) int {
	w := karlin.SuggestedWindow(lambda, k, qlen, slen, f1, f2, mtx)
	if w < 5 {
		w = 5
	}
	if max := qlen / 4; max > 0 && w > max {
		w = max
	}
	return w
}

// Greyramp maps a raw clamped convolution score into a displayed
// intensity byte, parameterised by black/white points and an invert
// flag (spec.md §4.8 step 4). It is recomputable without rerunning the
// convolution.
type Greyramp struct {
	BlackPoint, WhitePoint int
	Invert                 bool
}

// DefaultGreyramp passes raw scores through unchanged.
var DefaultGreyramp = Greyramp{BlackPoint: 0, WhitePoint: 255}

func (g Greyramp) apply(raw byte) byte {
	bp, wp := g.BlackPoint, g.WhitePoint
	if wp <= bp {
		wp = bp + 1
	}
	scaled := (int(raw) - bp) * 255 / (wp - bp)
	switch {
	case scaled < 0:
		scaled = 0
	case scaled > 255:
		scaled = 255
	}
	if g.Invert {
		scaled = 255 - scaled
	}
	return byte(scaled)
}

// Table returns the full 256-entry lookup for this Greyramp.
func (g Greyramp) Table() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = g.apply(byte(i))
	}
	return t
}

// HSPMode selects how Match features are drawn onto a plot's overlay.
type HSPMode int8

const (
	HSPLine HSPMode = iota
	HSPFunc
	HSPGreyscale
)

// Options configures a Compute call.
type Options struct {
	Zoom          int // pixels per convolution cell; 0 defaults to 1
	PixelFactor   int // 0 defaults to 1
	Window        int // sliding-window length; must be >0 (see AutoWindow)
	Offset        int // subtracted from the scaled score before clamping
	MemoryLimitMB int // 0 disables the memory guard
	Greyramp      Greyramp
	HSPMode       HSPMode
}

// Plot is one computed or loaded dot-plot.
type Plot struct {
	State State

	Width, Height int
	PixelFactor   int
	Window        int
	Greyramp      Greyramp

	Pixelmap  []byte // row-major Height*Width, raw clamped scores
	HSPPixmap []byte // same dimensions; nil if no overlay was drawn
}

// Render applies the plot's Greyramp to Pixelmap, returning a fresh
// Height*Width byte slice of display intensities.
func (p *Plot) Render() []byte {
	table := p.Greyramp.Table()
	out := make([]byte, len(p.Pixelmap))
	for i, v := range p.Pixelmap {
		out[i] = table[v]
	}
	return out
}

// SetGreyramp replaces the plot's Greyramp; a Ready plot moves to
// Redrawn since only the displayed intensities change, not Pixelmap.
func (p *Plot) SetGreyramp(g Greyramp) {
	p.Greyramp = g
	if p.State == Ready {
		p.State = Redrawn
	}
}

// Compute runs the sliding-window convolution of ref against match
// using mtx, per spec.md §4.8 steps 1-3. hsps, when non-empty, are
// drawn into a separate overlay pixmap per step 5; only features whose
// RefStrand equals plotStrand are drawn.
func Compute(ref, match []byte, mtx *Matrix, opts Options, hsps []*feature.Feature, plotStrand feature.Strand) (*Plot, error) {
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	if opts.PixelFactor <= 0 {
		opts.PixelFactor = 1
	}
	if opts.Window <= 0 {
		return nil, fmt.Errorf("dotplot: window size must be positive, got %d", opts.Window)
	}
	if opts.Greyramp == (Greyramp{}) {
		opts.Greyramp = DefaultGreyramp
	}

	w := opts.Window
	width := (len(match)-w)/opts.Zoom + 1
	height := (len(ref)-w)/opts.Zoom + 1
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("dotplot: window %d is too large for sequence lengths %d/%d", w, len(ref), len(match))
	}

	if opts.MemoryLimitMB > 0 {
		need := int64(width) * int64(height)
		limit := int64(opts.MemoryLimitMB) * 1024 * 1024
		if need > limit {
			return nil, fmt.Errorf("%w: %d bytes requested, limit %d bytes", ErrMemoryLimitExceeded, need, limit)
		}
	}

	p := &Plot{
		State:       Computing,
		Width:       width,
		Height:      height,
		PixelFactor: opts.PixelFactor,
		Window:      w,
		Greyramp:    opts.Greyramp,
		Pixelmap:    make([]byte, width*height),
	}

	for y := 0; y < height; y++ {
		i := y * opts.Zoom
		for x := 0; x < width; x++ {
			j := x * opts.Zoom
			var sum int
			for k := 0; k < w; k++ {
				sum += mtx.score(ref[i+k], match[j+k])
			}
			raw := sum*opts.PixelFactor - opts.Offset
			p.Pixelmap[y*width+x] = clampByte(raw)
		}
	}

	if len(hsps) > 0 {
		p.HSPPixmap = make([]byte, width*height)
		p.overlayHSPs(hsps, plotStrand, opts)
	}

	p.State = Ready
	return p, nil
}

func clampByte(v int) byte {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return byte(v)
	}
}

func (p *Plot) overlayHSPs(hsps []*feature.Feature, plotStrand feature.Strand, opts Options) {
	zoom := opts.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	for _, f := range hsps {
		if f.Type != feature.TypeMatch || f.RefStrand != plotStrand {
			continue
		}
		x0, y0 := f.MatchRange.Min/zoom, f.RefRange.Min/zoom
		x1, y1 := f.MatchRange.Max/zoom, f.RefRange.Max/zoom
		intensity := byte(255)
		if (opts.HSPMode == HSPFunc || opts.HSPMode == HSPGreyscale) && f.HasScore {
			intensity = clampByte(int(f.Score))
		}
		drawLine(p.HSPPixmap, p.Width, p.Height, x0, y0, x1, y1, intensity)
	}
}

// drawLine is a standard Bresenham rasteriser, used to render each
// HSP's ref/match diagonal into the overlay pixmap.
func drawLine(buf []byte, width, height, x0, y0, x1, y1 int, intensity byte) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < width && y0 >= 0 && y0 < height {
			buf[y0*width+x0] = intensity
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var binaryMagic = [4]byte{'D', 'P', 'L', 'T'}

// SaveBinary writes p in the fixed little-endian binary format: magic
// bytes, width, height, pixel factor, window size, greyramp params,
// then the raw Pixelmap bytes (spec.md §4.8 save/load).
func (p *Plot) SaveBinary(w io.Writer) error {
	if _, err := w.Write(binaryMagic[:]); err != nil {
		return err
	}
	hdr := [6]int32{
		int32(p.Width), int32(p.Height), int32(p.PixelFactor), int32(p.Window),
		int32(p.Greyramp.BlackPoint), int32(p.Greyramp.WhitePoint),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr[:]); err != nil {
		return err
	}
	var invert byte
	if p.Greyramp.Invert {
		invert = 1
	}
	if err := binary.Write(w, binary.LittleEndian, invert); err != nil {
		return err
	}
	_, err := w.Write(p.Pixelmap)
	return err
}

// LoadBinary reconstructs a Plot from SaveBinary's format, without
// requiring the original sequences; HSPPixmap is left nil (HSP overlay
// disabled when loading from a file with no features supplied).
func LoadBinary(r io.Reader) (*Plot, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, fmt.Errorf("dotplot: reading magic: %w", err)
	}
	if got != binaryMagic {
		return nil, fmt.Errorf("dotplot: bad magic %q", got)
	}
	var hdr [6]int32
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("dotplot: reading header: %w", err)
	}
	var invert byte
	if err := binary.Read(r, binary.LittleEndian, &invert); err != nil {
		return nil, fmt.Errorf("dotplot: reading greyramp invert flag: %w", err)
	}
	p := &Plot{
		State:       Loaded,
		Width:       int(hdr[0]),
		Height:      int(hdr[1]),
		PixelFactor: int(hdr[2]),
		Window:      int(hdr[3]),
		Greyramp:    Greyramp{BlackPoint: int(hdr[4]), WhitePoint: int(hdr[5]), Invert: invert != 0},
	}
	p.Pixelmap = make([]byte, p.Width*p.Height)
	if _, err := io.ReadFull(r, p.Pixelmap); err != nil {
		return nil, fmt.Errorf("dotplot: reading pixelmap: %w", err)
	}
	return p, nil
}

// SaveText writes p in the text/TSV format: a tab-separated metadata
// header line, then one line per row of space-separated intensity
// bytes (spec.md §4.8 save/load).
func (p *Plot) SaveText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	_, err := fmt.Fprintf(bw, "width=%d\theight=%d\tpixelFactor=%d\twindow=%d\tblackPoint=%d\twhitePoint=%d\tinvert=%t\n",
		p.Width, p.Height, p.PixelFactor, p.Window, p.Greyramp.BlackPoint, p.Greyramp.WhitePoint, p.Greyramp.Invert)
	if err != nil {
		return err
	}
	for y := 0; y < p.Height; y++ {
		row := p.Pixelmap[y*p.Width : (y+1)*p.Width]
		for x, v := range row {
			if x > 0 {
				bw.WriteByte(' ')
			}
			if _, err := fmt.Fprintf(bw, "%d", v); err != nil {
				return err
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// LoadText is SaveText's inverse.
func LoadText(r io.Reader) (*Plot, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return nil, fmt.Errorf("dotplot: empty text plot")
	}
	p := &Plot{State: Loaded}
	_, err := fmt.Sscanf(sc.Text(), "width=%d\theight=%d\tpixelFactor=%d\twindow=%d\tblackPoint=%d\twhitePoint=%d\tinvert=%t",
		&p.Width, &p.Height, &p.PixelFactor, &p.Window, &p.Greyramp.BlackPoint, &p.Greyramp.WhitePoint, &p.Greyramp.Invert)
	if err != nil {
		return nil, fmt.Errorf("dotplot: parsing header: %w", err)
	}

	p.Pixelmap = make([]byte, 0, p.Width*p.Height)
	for sc.Scan() {
		for _, f := range strings.Fields(sc.Text()) {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("dotplot: parsing pixel value %q: %w", f, err)
			}
			p.Pixelmap = append(p.Pixelmap, byte(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.Pixelmap) != p.Width*p.Height {
		return nil, fmt.Errorf("dotplot: read %d pixels, want %dx%d", len(p.Pixelmap), p.Width, p.Height)
	}
	return p, nil
}
