// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package httppfetch implements the HttpPfetch fetch.Method kind
// (spec.md §4.6): queried names are POSTed as a "request" form field to
// the method's URL (host/port), and the response body is parsed
// according to the method's parser kind, mirroring the EBI pfetch-DAS
// HTTP protocol Blixem falls back to when the socket pfetch server is
// unreachable.
package httppfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/kortschak/seqtools/fetch"
	"github.com/kortschak/seqtools/sequtil"
)

// Client POSTs queries to a pfetch HTTP endpoint, reusing one
// *http.Client (and its cookie jar) across calls so a server that
// hands out a session cookie on first contact stays authenticated for
// subsequent batches.
type Client struct {
	HTTPClient *http.Client
}

// NewClient returns a Client with a fresh cookie jar.
func NewClient() (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("httppfetch: creating cookie jar: %w", err)
	}
	return &Client{HTTPClient: &http.Client{Jar: jar}}, nil
}

// Fetch POSTs names as a single space-separated "request" field to
// method's URL (built from Host/Port) and parses the response body per
// method.Parser.
func (c *Client) Fetch(ctx context.Context, method fetch.Method, names []string) (map[string]fetch.Record, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}

	endpoint := method.Host
	if method.Port != 0 {
		endpoint = fmt.Sprintf("%s:%d", method.Host, method.Port)
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	form := url.Values{"request": {strings.Join(names, " ")}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("httppfetch: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httppfetch: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httppfetch: %s: status %s", endpoint, resp.Status)
	}

	switch method.Parser {
	case fetch.ParseFasta:
		return parseFasta(resp.Body)
	case fetch.ParseTabularID:
		return parseTabular(resp.Body)
	default:
		return parseRaw(resp.Body, names)
	}
}

func parseFasta(r io.Reader) (map[string]fetch.Record, error) {
	recs, err := sequtil.ReadFastaRecords(r, sequtil.DNA)
	if err != nil {
		return nil, fmt.Errorf("httppfetch: parsing fasta: %w", err)
	}
	out := make(map[string]fetch.Record, len(recs))
	for _, rec := range recs {
		out[rec.Name] = fetch.Record{Sequence: string(rec.Seq)}
	}
	return out, nil
}

// parseTabular reads one "name\tsequence" pair per line, the format
// pfetch-DAS uses for multi-sequence batch responses.
func parseTabular(r io.Reader) (map[string]fetch.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("httppfetch: reading response: %w", err)
	}
	out := make(map[string]fetch.Record)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			continue
		}
		out[fields[0]] = fetch.Record{Sequence: fields[1]}
	}
	return out, nil
}

// parseRaw treats the whole response as the sequence for a single
// queried name, the pfetch-DAS behaviour for a one-name request.
func parseRaw(r io.Reader, names []string) (map[string]fetch.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("httppfetch: reading response: %w", err)
	}
	body := strings.TrimSpace(string(data))
	if body == "" || strings.HasPrefix(body, "no match") || len(names) == 0 {
		return nil, nil
	}
	return map[string]fetch.Record{names[0]: {Sequence: body}}, nil
}
