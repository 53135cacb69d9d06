// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scriptfetch implements the FileScript fetch.Method kind
// (spec.md §4.6): an external command is built from the method's
// command template, substituting %q (query names), %i (id), %r (ref
// name) and %d (dataset), then run and its stdout parsed according to
// the method's parser kind.
package scriptfetch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/biogo/external"

	"github.com/kortschak/seqtools/fetch"
	"github.com/kortschak/seqtools/sequtil"
)

// Client runs a FileScript fetch.Method as an external command. RefName
// and Dataset fill the %r/%d template tokens; they are fixed for the
// lifetime of the Client (one per reference sequence / dataset
// combination), matching the way Blixem invokes an efetch-style script
// once per reference.
type Client struct {
	RefName string
	Dataset string
}

// script is the exec.Cmd builder, following the same buildarg-tag and
// ExtraFlags idiom kortschak-ins uses for BLAST invocations
// (blast.Nucleic.BuildCommand): a fixed program name field plus a
// manually-split flags string built from the substituted template.
type script struct {
	Cmd        string `buildarg:"{{if .}}{{.}}{{else}}pfetch{{end}}"`
	ExtraFlags string
}

func (s script) buildCommand() (*exec.Cmd, error) {
	cl := external.Must(external.Build(s))
	var extra []string
	if s.ExtraFlags != "" {
		extra = strings.Fields(s.ExtraFlags)
	}
	return exec.Command(cl[0], append(cl[1:], extra...)...), nil
}

// substitute expands %q, %i, %r and %d in tmpl. %q becomes the space
// separated, individually quoted query names; %i becomes the first
// name (the common case of a single-id lookup); %r and %d come from
// the Client's fixed RefName/Dataset.
func (c *Client) substitute(tmpl string, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	id := ""
	if len(names) > 0 {
		id = names[0]
	}
	r := strings.NewReplacer(
		"%q", strings.Join(quoted, " "),
		"%i", id,
		"%r", c.RefName,
		"%d", c.Dataset,
	)
	return r.Replace(tmpl)
}

// Fetch runs method's command template against names and parses stdout
// per method.Parser.
func (c *Client) Fetch(ctx context.Context, method fetch.Method, names []string) (map[string]fetch.Record, error) {
	if len(names) == 0 {
		return nil, nil
	}
	prog, flags, err := splitTemplate(c.substitute(method.CommandTemplate, names))
	if err != nil {
		return nil, fmt.Errorf("scriptfetch: %w", err)
	}

	cl, err := (script{Cmd: prog, ExtraFlags: flags}).buildCommand()
	if err != nil {
		return nil, fmt.Errorf("scriptfetch: building command: %w", err)
	}
	cl = exec.CommandContext(ctx, cl.Path, cl.Args[1:]...)

	var stdout, stderr bytes.Buffer
	cl.Stdout = &stdout
	cl.Stderr = &stderr
	if err := cl.Run(); err != nil {
		return nil, fmt.Errorf("scriptfetch: %s: %w: %s", prog, err, stderr.String())
	}

	switch method.Parser {
	case fetch.ParseFasta:
		return parseFasta(&stdout)
	default:
		return parseRaw(&stdout, names)
	}
}

func splitTemplate(cmd string) (prog, flags string, err error) {
	f := strings.Fields(cmd)
	if len(f) == 0 {
		return "", "", fmt.Errorf("empty command template")
	}
	return f[0], strings.Join(f[1:], " "), nil
}

func parseFasta(r *bytes.Buffer) (map[string]fetch.Record, error) {
	recs, err := sequtil.ReadFastaRecords(r, sequtil.DNA)
	if err != nil {
		return nil, fmt.Errorf("scriptfetch: parsing fasta: %w", err)
	}
	out := make(map[string]fetch.Record, len(recs))
	for _, rec := range recs {
		out[rec.Name] = fetch.Record{Sequence: string(rec.Seq)}
	}
	return out, nil
}

// parseRaw treats the whole response as the sequence for the single
// queried name, the common case for a one-shot script lookup.
func parseRaw(r *bytes.Buffer, names []string) (map[string]fetch.Record, error) {
	sc := bufio.NewScanner(r)
	var b strings.Builder
	for sc.Scan() {
		b.WriteString(strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if b.Len() == 0 || len(names) == 0 {
		return nil, nil
	}
	return map[string]fetch.Record{names[0]: {Sequence: b.String()}}, nil
}
