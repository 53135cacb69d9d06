// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fetch implements the sequence bulk-fetch dispatcher (spec.md
// §4.6): it walks an ordered list of FetchMethods per FeatureSeq,
// invoking whichever back-end Client each method names, until the
// sequence and its optional columns are populated or every method has
// been exhausted.
package fetch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kortschak/seqtools/feature"
)

// Kind is the transport a FetchMethod uses.
type Kind int8

const (
	KindSocketPfetch Kind = iota
	KindHTTPPfetch
	KindSqlite
	KindFileScript
	KindInternal
	KindNone
)

// ParserKind is the output format a FetchMethod's response is parsed as.
type ParserKind int8

const (
	ParseRaw ParserKind = iota
	ParseEmblFlatFile
	ParseFasta
	ParseTabularID
)

// Method describes one fetch back-end (spec.md §4.6): connection
// parameters, an optional command template using the %q (query), %i
// (id), %r (ref name) and %d (dataset) substitution tokens, and the
// parser to apply to whatever the client returns.
type Method struct {
	Name string
	Kind Kind

	Host   string
	Port   int
	DBPath string
	Query  string // SQL query text, for KindSqlite

	CommandTemplate string // for KindFileScript

	Parser  ParserKind
	Timeout time.Duration
}

func (m Method) timeout() time.Duration {
	if m.Timeout <= 0 {
		return 30 * time.Second
	}
	return m.Timeout
}

// Record is one fetched sequence and any optional columns the method's
// parser extracted alongside it.
type Record struct {
	Sequence string
	Columns  map[feature.ColumnID]string
}

// Client is a fetch back-end capable of resolving a batch of names in
// one round trip. Implementations live in the socketpfetch, httppfetch,
// sqlitefetch and scriptfetch subpackages.
type Client interface {
	// Fetch resolves names against the given Method, returning a Record
	// for every name it could find. Names absent from the returned map
	// are treated as "no entry" by the dispatcher and advance to the
	// next method in the list.
	Fetch(ctx context.Context, method Method, names []string) (map[string]Record, error)
}

// ErrNoMethod reports that no Client is registered for a Method's kind.
// BulkFetch and UserFetch do not return it: they move on to the next
// method instead.
var ErrNoMethod = errors.New("fetch: no client registered for method")

// CancellationToken is the sole cancellation mechanism (spec.md §4.6):
// the dispatcher checks it between methods, never in the middle of a
// single method invocation, so a cancelled fetch never leaves a
// FeatureSeq half-populated by one method.
type CancellationToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancellationToken returns a token that is live until Cancel is
// called or parent is done.
func NewCancellationToken(parent context.Context) *CancellationToken {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &CancellationToken{ctx: ctx, cancel: cancel}
}

// Cancel requests that any in-progress bulkFetch stop after its current
// method completes.
func (t *CancellationToken) Cancel() { t.cancel() }

// Cancelled reports whether Cancel has been called (or the parent
// context ended).
func (t *CancellationToken) Cancelled() bool {
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Dispatcher runs bulk and user fetches across a registry of Clients
// keyed by Kind.
type Dispatcher struct {
	Clients map[Kind]Client
	Ledger  *Ledger // optional; nil disables attempt logging
}

// NewDispatcher returns a Dispatcher with no registered clients.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{Clients: make(map[Kind]Client)}
}

// Register associates a Client with the Method kinds it serves.
func (d *Dispatcher) Register(kind Kind, c Client) {
	d.Clients[kind] = c
}

// worklistEntry tracks one FeatureSeq's progress through an ordered
// method list (spec.md §4.6 step 1).
type worklistEntry struct {
	seq         *feature.FeatureSeq
	methodIndex int
}

// requiredColumnsPopulated reports whether seq already has a sequence
// and every required column value, so it can be skipped entirely.
func requiredColumnsPopulated(seq *feature.FeatureSeq, required []feature.ColumnID) bool {
	if !seq.HasSeq {
		return false
	}
	for _, id := range required {
		if _, ok := seq.Column(id); !ok {
			return false
		}
	}
	return true
}

// BulkFetch implements spec.md §4.6's bulkFetch(seqList, columnList):
// seqs are grouped by the method each currently resolves to, batched
// per distinct method, and retried against the next method in
// methods on failure or partial response, until every method has been
// attempted for every seq. Seqs still unresolved after the last method
// are marked FetchFailed.
func (d *Dispatcher) BulkFetch(ctx context.Context, methods []Method, seqs []*feature.FeatureSeq, required []feature.ColumnID, tok *CancellationToken) error {
	work := make([]*worklistEntry, 0, len(seqs))
	for _, s := range seqs {
		if requiredColumnsPopulated(s, required) {
			continue
		}
		work = append(work, &worklistEntry{seq: s})
	}

	for methodIdx, m := range methods {
		if tok != nil && tok.Cancelled() {
			for _, w := range work {
				if w.seq.FetchState != feature.FetchLoaded {
					w.seq.FetchState = feature.FetchPending
				}
			}
			return nil
		}

		var batch []*worklistEntry
		byNorm := make(map[string]*worklistEntry)
		for _, w := range work {
			if w.methodIndex != methodIdx {
				continue
			}
			batch = append(batch, w)
			byNorm[strings.ToUpper(w.seq.Name)] = w
		}
		if len(batch) == 0 {
			continue
		}

		names := make([]string, len(batch))
		for i, w := range batch {
			names[i] = w.seq.Name
		}

		client, ok := d.Clients[m.Kind]
		if !ok {
			d.advance(batch, methodIdx)
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, m.timeout())
		results, err := client.Fetch(cctx, m, names)
		cancel()
		if d.Ledger != nil {
			d.Ledger.RecordAttempt(m.Name, names, err)
		}
		if err != nil {
			d.advance(batch, methodIdx)
			continue
		}

		for norm, rec := range normaliseKeys(results) {
			w, ok := byNorm[norm]
			if !ok {
				continue
			}
			applyRecord(w.seq, rec, m.Name)
		}
		var remaining []*worklistEntry
		for _, w := range batch {
			if w.seq.FetchState != feature.FetchLoaded {
				remaining = append(remaining, w)
			}
		}
		d.advance(remaining, methodIdx)
	}

	for _, w := range work {
		if w.seq.FetchState != feature.FetchLoaded {
			w.seq.FetchState = feature.FetchFailed
		}
	}
	return nil
}

func (d *Dispatcher) advance(batch []*worklistEntry, methodIdx int) {
	for _, w := range batch {
		w.methodIndex = methodIdx + 1
	}
}

func normaliseKeys(results map[string]Record) map[string]Record {
	out := make(map[string]Record, len(results))
	for k, v := range results {
		out[strings.ToUpper(k)] = v
	}
	return out
}

func applyRecord(seq *feature.FeatureSeq, rec Record, methodName string) {
	if rec.Sequence != "" {
		seq.Sequence = rec.Sequence
		seq.HasSeq = true
	}
	for id, v := range rec.Columns {
		seq.SetColumn(id, v)
	}
	seq.SetColumn(feature.ColumnID("FETCH_METHOD"), methodName)
	seq.FetchState = feature.FetchLoaded
}

// UserFetch implements spec.md §4.6's userFetch(seq, displayCallback):
// a single-seq synchronous path through methods, delivering the first
// successful raw result string to display.
func (d *Dispatcher) UserFetch(ctx context.Context, methods []Method, seq *feature.FeatureSeq, display func(string)) error {
	for _, m := range methods {
		client, ok := d.Clients[m.Kind]
		if !ok {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, m.timeout())
		results, err := client.Fetch(cctx, m, []string{seq.Name})
		cancel()
		if d.Ledger != nil {
			d.Ledger.RecordAttempt(m.Name, []string{seq.Name}, err)
		}
		if err != nil {
			continue
		}
		for norm, rec := range normaliseKeys(results) {
			if norm != strings.ToUpper(seq.Name) {
				continue
			}
			applyRecord(seq, rec, m.Name)
			display(rec.Sequence)
			return nil
		}
	}
	seq.FetchState = feature.FetchFailed
	return nil
}
