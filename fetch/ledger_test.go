// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fetch

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLedgerRecordAndLastAttempt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.kv")
	l, err := OpenLedger(path)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer l.Close()

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	restore := timeNow
	timeNow = func() time.Time { return clock }
	defer func() { timeNow = restore }()

	l.RecordAttempt("primary", []string{"AV274505.2"}, errors.New("connection refused"))
	clock = clock.Add(time.Minute)
	l.RecordAttempt("primary", []string{"AV274505.2"}, nil)

	a, ok := l.LastAttempt("primary", "AV274505.2")
	if !ok {
		t.Fatalf("LastAttempt: not found")
	}
	if a.Failed {
		t.Errorf("LastAttempt.Failed = true, want false (most recent attempt succeeded)")
	}
	if !a.At.Equal(clock) {
		t.Errorf("LastAttempt.At = %v, want %v", a.At, clock)
	}
}

func TestLedgerLastAttemptMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.kv")
	l, err := OpenLedger(path)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer l.Close()

	if _, ok := l.LastAttempt("primary", "NOTHERE.1"); ok {
		t.Errorf("LastAttempt found an entry that was never recorded")
	}
}

func TestLedgerReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.kv")
	l, err := OpenLedger(path)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	l.RecordAttempt("primary", []string{"AV274505.2"}, nil)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenLedger(path)
	if err != nil {
		t.Fatalf("reopen OpenLedger: %v", err)
	}
	defer reopened.Close()
	if _, ok := reopened.LastAttempt("primary", "AV274505.2"); !ok {
		t.Errorf("expected attempt recorded before close to survive reopen")
	}
}

func TestLedgerNilSafe(t *testing.T) {
	var l *Ledger
	l.RecordAttempt("x", []string{"y"}, nil) // must not panic
	if _, ok := l.LastAttempt("x", "y"); ok {
		t.Errorf("nil ledger reported an attempt")
	}
	if err := l.Close(); err != nil {
		t.Errorf("nil ledger Close returned %v, want nil", err)
	}
}
