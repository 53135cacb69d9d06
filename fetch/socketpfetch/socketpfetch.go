// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package socketpfetch implements the SocketPfetch fetch.Method kind
// (spec.md §4.6): a single TCP connection to a pfetch server, one
// queried name written per line, and one sequence (or "no match")
// read back per line, matching the Sanger pfetch socket protocol
// Blixem uses as its primary EMBL/UniProt lookup path.
package socketpfetch

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/kortschak/seqtools/fetch"
)

// Default host and port used when a Method leaves them unset, matching
// the values the original pfetch client falls back to.
const (
	DefaultHost = "pfetch"
	DefaultPort = 22100
)

// Client dials a pfetch socket server fresh for every Fetch call, since
// the server closes the connection once it has answered the batch.
type Client struct {
	// Dialer lets tests substitute a local listener's dial func; nil
	// uses net.Dialer's DialContext.
	Dialer func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewClient returns a Client that dials with the standard net.Dialer.
func NewClient() *Client {
	return &Client{}
}

func (c *Client) dial(ctx context.Context, addr string) (net.Conn, error) {
	if c.Dialer != nil {
		return c.Dialer(ctx, "tcp", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// resolveAddr applies method.Host/Port, then the BLIXEM_PFETCH and
// BLIXEM_PORT environment overrides, then the package defaults, in
// that order of precedence (method-specific settings win; the
// environment is a deployment-wide fallback).
func resolveAddr(method fetch.Method) string {
	host := method.Host
	if host == "" {
		if h := os.Getenv("BLIXEM_PFETCH"); h != "" {
			host = h
		} else {
			host = DefaultHost
		}
	}
	port := method.Port
	if port == 0 {
		if p := os.Getenv("BLIXEM_PORT"); p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				port = n
			}
		}
		if port == 0 {
			port = DefaultPort
		}
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Fetch writes one name per line to the server, followed by a blank
// line marking end of request, then reads one sequence per line back
// in the same order, matching the pfetch socket protocol's
// request/response framing.
func (c *Client) Fetch(ctx context.Context, method fetch.Method, names []string) (map[string]fetch.Record, error) {
	if len(names) == 0 {
		return nil, nil
	}
	addr := resolveAddr(method)

	conn, err := c.dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("socketpfetch: dialing %s: %w", addr, err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		conn.SetDeadline(dl)
	}

	var req strings.Builder
	for _, n := range names {
		req.WriteString(n)
		req.WriteByte('\n')
	}
	req.WriteByte('\n')
	if _, err := conn.Write([]byte(req.String())); err != nil {
		return nil, fmt.Errorf("socketpfetch: writing request: %w", err)
	}

	out := make(map[string]fetch.Record, len(names))
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for _, name := range names {
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.EqualFold(line, "no match") {
			continue
		}
		out[name] = fetch.Record{Sequence: line}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("socketpfetch: reading response: %w", err)
	}
	return out, nil
}
