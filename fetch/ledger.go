// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fetch

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"modernc.org/kv"

	"github.com/kortschak/seqtools/internal/store"
)

// Ledger persists a record of every fetch attempt the dispatcher has
// made, for later inspection through LastAttempt and All. The
// dispatcher only writes to it: BulkFetch and UserFetch do not consult
// earlier attempts when choosing which methods to try. Adapted from the embedded
// modernc.org/kv-backed hit store kortschak-ins keeps for BLAST
// results, repointed from BLAST hit keys at a fetch-attempt ledger.
type Ledger struct {
	db *kv.DB
}

// Attempt is one logged fetch attempt.
type Attempt struct {
	Method string
	Name   string
	At     time.Time
	Failed bool
	Err    string
}

// OpenLedger creates or opens the ledger database at path, ordering
// entries by method name then sequence name then timestamp.
func OpenLedger(path string) (*Ledger, error) {
	opts := &kv.Options{Compare: compareAttemptKey}
	db, err := kv.Open(path, opts)
	if err != nil {
		db, err = kv.Create(path, opts)
		if err != nil {
			return nil, fmt.Errorf("fetch: opening ledger %s: %w", path, err)
		}
	}
	return &Ledger{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// RecordAttempt logs one batch fetch attempt: one entry per name, all
// sharing the same outcome, matching the per-method batching BulkFetch
// performs.
func (l *Ledger) RecordAttempt(method string, names []string, err error) {
	if l == nil || l.db == nil {
		return
	}
	failed := err != nil
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	l.db.BeginTransaction()
	for _, name := range names {
		a := Attempt{Method: method, Name: name, At: timeNow(), Failed: failed, Err: msg}
		key := marshalAttemptKey(a)
		l.db.Set(key, marshalAttemptValue(a))
	}
	l.db.Commit()
}

// LastAttempt returns the most recent logged attempt for (method,
// name), if any, by scanning entries sharing that key prefix.
func (l *Ledger) LastAttempt(method, name string) (Attempt, bool) {
	if l == nil || l.db == nil {
		return Attempt{}, false
	}
	prefix := marshalAttemptPrefix(method, name)
	enum, _, err := l.db.Seek(prefix)
	if err != nil {
		return Attempt{}, false
	}
	var latest Attempt
	found := false
	for {
		k, v, err := enum.Next()
		if err != nil || !bytes.HasPrefix(k, prefix) {
			break
		}
		a := unmarshalAttemptValue(v)
		if !found || a.At.After(latest.At) {
			latest = a
			found = true
		}
	}
	return latest, found
}

// All returns every attempt recorded in the ledger, ordered by method
// then name then timestamp, for cmd/auditfetch's inspection tool.
func (l *Ledger) All() ([]Attempt, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	enum, err := l.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch: scanning ledger: %w", err)
	}
	var out []Attempt
	for {
		k, v, err := enum.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return out, fmt.Errorf("fetch: scanning ledger: %w", err)
		}
		method, rest := store.ReadString(k)
		name, rest := store.ReadString(rest)
		a := unmarshalAttemptValue(v)
		a.Method, a.Name = method, name
		if ns, _ := store.ReadUint64(rest); len(rest) >= 8 {
			a.At = time.Unix(0, int64(ns))
		}
		out = append(out, a)
	}
	return out, nil
}

// timeNow is a seam so tests can avoid depending on wall-clock time by
// overriding it; it is never overridden in production code paths.
var timeNow = time.Now

func marshalAttemptPrefix(method, name string) []byte {
	var buf bytes.Buffer
	store.WriteString(&buf, method)
	store.WriteString(&buf, name)
	return buf.Bytes()
}

func marshalAttemptKey(a Attempt) []byte {
	var buf bytes.Buffer
	store.WriteString(&buf, a.Method)
	store.WriteString(&buf, a.Name)
	store.WriteUint64(&buf, uint64(a.At.UnixNano()))
	return buf.Bytes()
}

func marshalAttemptValue(a Attempt) []byte {
	var buf bytes.Buffer
	var b [1]byte
	if a.Failed {
		b[0] = 1
	}
	buf.Write(b[:])
	store.WriteString(&buf, a.Err)
	return buf.Bytes()
}

func unmarshalAttemptValue(data []byte) Attempt {
	var a Attempt
	if len(data) == 0 {
		return a
	}
	a.Failed = data[0] == 1
	data = data[1:]
	a.Err, _ = store.ReadString(data)
	return a
}

// compareAttemptKey orders ledger entries by method, then name, then
// timestamp, following the same length-prefixed-then-scalar key layout
// idiom internal/store generalised from kortschak-ins's BLAST hit key
// comparator.
func compareAttemptKey(x, y []byte) int {
	xMethod, rest := store.ReadString(x)
	yMethod, restY := store.ReadString(y)
	if xMethod != yMethod {
		if xMethod < yMethod {
			return -1
		}
		return 1
	}
	xName, restX2 := store.ReadString(rest)
	yName, restY2 := store.ReadString(restY)
	if xName != yName {
		if xName < yName {
			return -1
		}
		return 1
	}
	return bytes.Compare(restX2, restY2)
}
