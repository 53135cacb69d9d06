// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package karlin computes Karlin-Altschul statistics (λ, K, H) for a
// scoring scheme's score-probability distribution, and the suggested
// Dotter sliding-window size derived from them (spec.md §4.9).
package karlin

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoNegativeScore and ErrNoPositiveScore are returned when the
// supplied distribution cannot support a positive λ: Karlin-Altschul
// theory requires at least one negative and one positive score with
// nonzero probability (a negative-drift walk that can still cross
// zero).
var (
	ErrNoNegativeScore = errors.New("karlin: distribution has no negative score")
	ErrNoPositiveScore = errors.New("karlin: distribution has no positive score")
)

const (
	maxBisectIter = 25
	maxKIter      = 20
	sumLimit      = 1e-2
	fallbackK     = 0.1
)

// Warning carries a non-fatal condition raised while solving K (spec.md
// §4.9's divergent-series fallback).
type Warning struct {
	Message string
}

func (w Warning) String() string { return w.Message }

// Result holds the solved Karlin-Altschul parameters.
type Result struct {
	Lambda   float64
	K        float64
	H        float64
	Warnings []Warning
}

// Solve computes (λ, K, H) from a score-probability distribution pr,
// keyed by integer score (spec.md §4.9). Float outputs are returned
// verbatim; no rounding is applied.
func Solve(pr map[int]float64) (*Result, error) {
	hasNeg, hasPos := false, false
	for s, p := range pr {
		if p <= 0 {
			continue
		}
		if s < 0 {
			hasNeg = true
		}
		if s > 0 {
			hasPos = true
		}
	}
	if !hasNeg {
		return nil, ErrNoNegativeScore
	}
	if !hasPos {
		return nil, ErrNoPositiveScore
	}

	lambda, err := solveLambda(pr)
	if err != nil {
		return nil, err
	}
	h := computeH(pr, lambda)
	k, warnings := computeK(pr, lambda)

	return &Result{Lambda: lambda, K: k, H: h, Warnings: warnings}, nil
}

func sumExp(pr map[int]float64, lambda float64) float64 {
	var sum float64
	for s, p := range pr {
		if p == 0 {
			continue
		}
		sum += p * math.Exp(lambda*float64(s))
	}
	return sum
}

// solveLambda finds λ>0 solving Σ pr[i]·exp(λ·i) = 1 by bisection,
// doubling an initial upper bracket until the sum exceeds 1, then
// bisecting for maxBisectIter steps (spec.md §4.9).
func solveLambda(pr map[int]float64) (float64, error) {
	lo, hi := 0.0, 1.0
	for i := 0; i < maxBisectIter && sumExp(pr, hi) < 1; i++ {
		hi *= 2
	}
	if sumExp(pr, hi) < 1 {
		return 0, fmt.Errorf("karlin: failed to bracket lambda")
	}
	for i := 0; i < maxBisectIter; i++ {
		mid := (lo + hi) / 2
		if sumExp(pr, mid) < 1 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}

func computeH(pr map[int]float64, lambda float64) float64 {
	var sum float64
	for s, p := range pr {
		if p == 0 {
			continue
		}
		sum += p * float64(s) * math.Exp(lambda*float64(s))
	}
	return lambda * sum
}

// computeK finds the lowest and highest scores with nonzero
// probability and dispatches to the closed form for the degenerate
// simple-walk case (low=-1 or high=1), else a renewal-theory geometric
// series: C = Σ P(S_n>0)/n accumulated by direct convolution of the
// step distribution, truncated once a term falls below sumLimit or
// maxKIter is reached without convergence, in which case K falls back
// to fallbackK with a Warning (spec.md §4.9).
func computeK(pr map[int]float64, lambda float64) (float64, []Warning) {
	low, high := math.MaxInt32, math.MinInt32
	var mean float64
	for s, p := range pr {
		if p <= 0 {
			continue
		}
		if s < low {
			low = s
		}
		if s > high {
			high = s
		}
		mean += p * float64(s)
	}
	mu := -mean // magnitude of the negative drift

	if low == -1 || high == 1 {
		return lambda * (1 - math.Exp(-lambda)) / mu, nil
	}

	dist := map[int]float64{0: 1}
	var c float64
	converged := false
	for n := 1; n <= maxKIter; n++ {
		dist = convolve(dist, pr)
		var pPos float64
		for s, p := range dist {
			if s > 0 {
				pPos += p
			}
		}
		term := pPos / float64(n)
		c += term
		if term < sumLimit {
			converged = true
			break
		}
	}
	if !converged {
		return fallbackK, []Warning{{Message: "karlin: K series did not converge within the iteration limit, using fallback K"}}
	}
	return lambda * math.Exp(-2*c) / mu, nil
}

func convolve(a, b map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(a)*len(b))
	for sa, pa := range a {
		if pa == 0 {
			continue
		}
		for sb, pb := range b {
			if pb == 0 {
				continue
			}
			out[sa+sb] += pa * pb
		}
	}
	return out
}

// SuggestedWindow implements spec.md §4.9's winsizeFromlambdak: given
// sequence lengths n and m, per-residue frequency tables f1 and f2
// (indexed identically to mtx), and the solved λ and K, returns the
// recommended sliding-window size E/r rounded to the nearest integer.
// Clamping to the caller's valid window range is the caller's
// responsibility (spec.md §4.8 step 2).
func SuggestedWindow(lambda, k float64, n, m int, f1, f2 []float64, mtx [][]int) int {
	e := (math.Log(float64(n)*float64(m)) + math.Log(k)) / lambda
	var r float64
	for i := range f1 {
		for j := range f2 {
			s := float64(mtx[i][j])
			r += f1[i] * f2[j] * math.Exp(lambda*s) * s
		}
	}
	return int(math.Round(e / r))
}
