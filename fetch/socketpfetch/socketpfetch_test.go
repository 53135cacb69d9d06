// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package socketpfetch

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/kortschak/seqtools/fetch"
)

// serve accepts one connection, reads newline-delimited names until a
// blank line, then writes back canned replies from answers (by name),
// "no match" for any name absent from answers.
func serve(t *testing.T, ln net.Listener, answers map[string]string) {
	t.Helper()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		sc := bufio.NewScanner(conn)
		var names []string
		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				break
			}
			names = append(names, line)
		}
		for _, n := range names {
			if seq, ok := answers[n]; ok {
				conn.Write([]byte(seq + "\n"))
			} else {
				conn.Write([]byte("no match\n"))
			}
		}
	}()
}

func TestFetch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	serve(t, ln, map[string]string{
		"AV274505.2": "ACGTACGTACGT",
	})

	c := NewClient()
	method := fetch.Method{Host: ln.Addr().(*net.TCPAddr).IP.String(), Port: ln.Addr().(*net.TCPAddr).Port}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := c.Fetch(ctx, method, []string{"AV274505.2", "NOTHERE.1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got["AV274505.2"].Sequence != "ACGTACGTACGT" {
		t.Errorf("sequence = %q", got["AV274505.2"].Sequence)
	}
}

func TestResolveAddrDefaults(t *testing.T) {
	addr := resolveAddr(fetch.Method{})
	if !strings.Contains(addr, "22100") {
		t.Errorf("resolveAddr defaults = %q, want port 22100", addr)
	}
}

func TestResolveAddrEnvOverride(t *testing.T) {
	t.Setenv("BLIXEM_PFETCH", "pfetch.example.org")
	t.Setenv("BLIXEM_PORT", "9999")
	addr := resolveAddr(fetch.Method{})
	if addr != "pfetch.example.org:9999" {
		t.Errorf("resolveAddr env override = %q", addr)
	}
}

func TestFetchEmptyNames(t *testing.T) {
	c := NewClient()
	got, err := c.Fetch(context.Background(), fetch.Method{}, nil)
	if err != nil || got != nil {
		t.Fatalf("Fetch(nil) = %v, %v, want nil, nil", got, err)
	}
}
