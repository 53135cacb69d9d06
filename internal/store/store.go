// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store provides ordered-key encoding helpers for the
// modernc.org/kv-backed stores in this module. Adapted from
// kortschak-ins's internal/store, which hard-coded a BLAST hit
// record's fields (subject name, position, bitscore, strand) into a
// single marshal/compare pair for its repeat-identification pipeline.
// That pipeline has no place in a Blixem/Dotter backend, so this
// package keeps the underlying length-prefixed string and big-endian
// scalar encoding idiom but generalises it to plain component
// functions any caller can compose into its own key layout: fetch's
// attempt ledger uses it today, and a future on-disk coverage cache
// could key depth results the same way.
package store

import (
	"bytes"
	"encoding/binary"
	"math"
)

var order = binary.BigEndian

// WriteString appends a length-prefixed string to buf. Length-prefixing
// rather than delimiting keeps the encoding byte-comparable: two keys
// sharing a prefix component still compare correctly once the prefix
// ends, since the length itself breaks any ambiguity.
func WriteString(buf *bytes.Buffer, s string) {
	var b [8]byte
	order.PutUint64(b[:], uint64(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}

// ReadString reads a length-prefixed string written by WriteString,
// returning the remaining unread bytes.
func ReadString(data []byte) (string, []byte) {
	if len(data) < 8 {
		return "", nil
	}
	n := order.Uint64(data[:8])
	data = data[8:]
	if uint64(len(data)) < n {
		return "", nil
	}
	return string(data[:n]), data[n:]
}

// WriteUint64 appends a big-endian uint64 to buf, preserving numeric
// ordering under byte-wise key comparison.
func WriteUint64(buf *bytes.Buffer, n uint64) {
	var b [8]byte
	order.PutUint64(b[:], n)
	buf.Write(b[:])
}

// ReadUint64 reads a big-endian uint64 written by WriteUint64,
// returning the remaining unread bytes.
func ReadUint64(data []byte) (uint64, []byte) {
	if len(data) < 8 {
		return 0, nil
	}
	return order.Uint64(data[:8]), data[8:]
}

// WriteInt64 appends n as a sign-flipped big-endian uint64, so that
// byte-wise comparison of the encoded form orders negative values
// before positive ones the same as the signed integers themselves.
func WriteInt64(buf *bytes.Buffer, n int64) {
	WriteUint64(buf, uint64(n)^(1<<63))
}

// ReadInt64 reads an int64 written by WriteInt64.
func ReadInt64(data []byte) (int64, []byte) {
	u, rest := ReadUint64(data)
	return int64(u ^ (1 << 63)), rest
}

// WriteFloat64 appends the raw IEEE 754 bit pattern of f to buf. The
// raw bit pattern does not preserve numeric ordering across sign, so
// callers that need ordering (rather than plain storage-and-recall, as
// fetch's ledger does) should compare decoded values rather than the
// encoded bytes.
func WriteFloat64(buf *bytes.Buffer, f float64) {
	WriteUint64(buf, math.Float64bits(f))
}

// ReadFloat64 reads a float64 written by WriteFloat64.
func ReadFloat64(data []byte) (float64, []byte) {
	bits, rest := ReadUint64(data)
	return math.Float64frombits(bits), rest
}
