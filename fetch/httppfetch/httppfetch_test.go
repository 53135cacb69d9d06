// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package httppfetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/kortschak/seqtools/fetch"
)

func TestFetchTabular(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.PostForm.Get("request"); got != "AV274505.2 AV274506.1" {
			t.Errorf("request field = %q", got)
		}
		io.WriteString(w, "AV274505.2\tACGTACGT\nAV274506.1\tTTTTGGGG\n")
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	host, port := u.Hostname(), u.Port()

	c, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	method := fetch.Method{Host: host, Parser: fetch.ParseTabularID}
	if port != "" {
		method.Port = mustAtoi(t, port)
	}

	got, err := c.Fetch(context.Background(), method, []string{"AV274505.2", "AV274506.1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got["AV274505.2"].Sequence != "ACGTACGT" {
		t.Errorf("AV274505.2 sequence = %q", got["AV274505.2"].Sequence)
	}
	if got["AV274506.1"].Sequence != "TTTTGGGG" {
		t.Errorf("AV274506.1 sequence = %q", got["AV274506.1"].Sequence)
	}
}

func TestFetchRawSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ACGTACGTACGT\n")
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	c, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	method := fetch.Method{Host: u.Hostname(), Port: mustAtoi(t, u.Port())}
	got, err := c.Fetch(context.Background(), method, []string{"AV274505.2"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got["AV274505.2"].Sequence != "ACGTACGTACGT" {
		t.Errorf("sequence = %q", got["AV274505.2"].Sequence)
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	c, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	method := fetch.Method{Host: u.Hostname(), Port: mustAtoi(t, u.Port())}
	if _, err := c.Fetch(context.Background(), method, []string{"x"}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	var n int
	for _, r := range s {
		if r < '0' || r > '9' {
			t.Fatalf("not numeric: %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n
}
