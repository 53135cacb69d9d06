// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the on-disk configuration and schema files spec.md
// §6 references: the blixemrc TOML config (fetch-method definitions) and
// the YAML style/Column/DataType schema files. Parsing these is an
// ambient concern carried regardless of spec.md §1's CLI/UI non-goals;
// the structures it produces feed the fetch, feature and dotplot
// packages' constructors.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/komkom/toml"

	"github.com/kortschak/seqtools/fetch"
)

// MethodConfig is one [pfetch-http]/[pfetch-socket]/[sqlite]/... group
// from blixemrc, before being resolved into a fetch.Method (spec.md §6).
type MethodConfig struct {
	Kind      string `json:"kind"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Location  string `json:"location"`
	Args      string `json:"args"`
	Query     string `json:"query"`
	Output    string `json:"output"`
	CookieJar string `json:"cookie-jar"`
	TimeoutMS int    `json:"timeout-ms"`
}

// Blixemrc is the parsed form of the blixemrc config file.
type Blixemrc struct {
	Blixem struct {
		DefaultFetchMode string `json:"default-fetch-mode"`
	} `json:"blixem"`
	Methods map[string]MethodConfig `json:"-"`
}

// rawBlixemrc mirrors the on-disk key groups before method config blocks
// are split out of the top-level map: every top-level key other than
// "blixem" names a fetch method group.
type rawBlixemrc map[string]json.RawMessage

// ParseBlixemrc reads a blixemrc file (TOML, per spec.md §6), decoding
// it through komkom/toml's TOML→JSON reader the same way
// pranabkalita-bioserve-inertia's TOMLConverter does, then
// encoding/json.
func ParseBlixemrc(r io.Reader) (*Blixemrc, error) {
	jr := toml.New(r)
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, jr); err != nil {
		return nil, fmt.Errorf("config: converting blixemrc toml: %w", err)
	}

	var raw rawBlixemrc
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("config: decoding blixemrc json: %w", err)
	}

	cfg := &Blixemrc{Methods: make(map[string]MethodConfig)}
	for name, msg := range raw {
		if name == "blixem" {
			if err := json.Unmarshal(msg, &cfg.Blixem); err != nil {
				return nil, fmt.Errorf("config: decoding [blixem] group: %w", err)
			}
			continue
		}
		var mc MethodConfig
		if err := json.Unmarshal(msg, &mc); err != nil {
			return nil, fmt.Errorf("config: decoding [%s] group: %w", name, err)
		}
		cfg.Methods[name] = mc
	}
	return cfg, nil
}

// kindFromString maps blixemrc's textual method group names to
// fetch.Kind, matching spec.md §6's pfetch-http/pfetch-socket/sqlite
// groups plus the FileScript back-end this module adds for §4.6's
// "any external command" fetch method, and an "internal" group for
// indexed-FASTA lookup against sequence already local to the caller.
func kindFromString(name string) (fetch.Kind, error) {
	switch name {
	case "pfetch-socket":
		return fetch.KindSocketPfetch, nil
	case "pfetch-http":
		return fetch.KindHTTPPfetch, nil
	case "sqlite":
		return fetch.KindSqlite, nil
	case "script":
		return fetch.KindFileScript, nil
	case "internal":
		return fetch.KindInternal, nil
	default:
		return 0, fmt.Errorf("config: unknown fetch method kind %q", name)
	}
}

func parserFromString(s string) fetch.ParserKind {
	switch s {
	case "fasta":
		return fetch.ParseFasta
	case "tabular":
		return fetch.ParseTabularID
	default:
		return fetch.ParseRaw
	}
}

// ResolveMethods converts every parsed MethodConfig into a fetch.Method,
// ready to register with a fetch.Dispatcher.
func (c *Blixemrc) ResolveMethods() (map[string]fetch.Method, error) {
	out := make(map[string]fetch.Method, len(c.Methods))
	for name, mc := range c.Methods {
		kind, err := kindFromString(name)
		if err != nil {
			return nil, err
		}
		m := fetch.Method{
			Name:   name,
			Kind:   kind,
			Host:   mc.Host,
			Port:   mc.Port,
			DBPath: mc.Location,
			Parser: parserFromString(mc.Output),
		}
		switch kind {
		case fetch.KindSqlite:
			m.Query = mc.Query
		case fetch.KindFileScript:
			m.CommandTemplate = mc.Args
		}
		if mc.TimeoutMS > 0 {
			m.Timeout = time.Duration(mc.TimeoutMS) * time.Millisecond
		}
		out[name] = m
	}
	return out, nil
}
