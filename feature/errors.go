// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import "errors"

// Model errors (spec.md §7): programmer errors that abort the enclosing
// operation. Callers log and re-raise; they are never downgraded to a
// warning the way input errors are.
var (
	ErrInvalidRange     = errors.New("feature: invalid range")
	ErrFrameOutOfRange  = errors.New("feature: frame out of range")
	ErrSeqDataMismatch  = errors.New("feature: conflicting sequence data for same FeatureSeq")
	ErrInvalidColumn    = errors.New("feature: invalid column")
	ErrInvalidStrand    = errors.New("feature: invalid match strand for feature type")
	ErrUnknownFeatureID = errors.New("feature: unknown feature id")
	ErrUnknownSeqID     = errors.New("feature: unknown FeatureSeq id")
)
