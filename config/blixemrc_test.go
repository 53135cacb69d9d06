// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"strings"
	"testing"

	"github.com/kortschak/seqtools/fetch"
)

const sampleBlixemrc = `
[blixem]
default-fetch-mode = "pfetch-http"

[pfetch-http]
host = "www.sanger.ac.uk"
port = 80
args = "request=%i"
output = "fasta"

[sqlite]
location = "/data/seqs.db"
query = "SELECT Name, sequence FROM embl_seq WHERE Name IN (?NAMES?)"
output = "tabular"
`

func TestParseBlixemrc(t *testing.T) {
	cfg, err := ParseBlixemrc(strings.NewReader(sampleBlixemrc))
	if err != nil {
		t.Fatalf("ParseBlixemrc: %v", err)
	}
	if cfg.Blixem.DefaultFetchMode != "pfetch-http" {
		t.Errorf("DefaultFetchMode = %q, want pfetch-http", cfg.Blixem.DefaultFetchMode)
	}
	httpMC, ok := cfg.Methods["pfetch-http"]
	if !ok {
		t.Fatalf("missing pfetch-http method group")
	}
	if httpMC.Host != "www.sanger.ac.uk" || httpMC.Port != 80 {
		t.Errorf("pfetch-http = %+v, want host www.sanger.ac.uk port 80", httpMC)
	}

	methods, err := cfg.ResolveMethods()
	if err != nil {
		t.Fatalf("ResolveMethods: %v", err)
	}
	m, ok := methods["pfetch-http"]
	if !ok {
		t.Fatalf("missing resolved pfetch-http method")
	}
	if m.Kind != fetch.KindHTTPPfetch {
		t.Errorf("Kind = %v, want KindHTTPPfetch", m.Kind)
	}
	if m.Parser != fetch.ParseFasta {
		t.Errorf("Parser = %v, want ParseFasta", m.Parser)
	}

	sqliteM, ok := methods["sqlite"]
	if !ok {
		t.Fatalf("missing resolved sqlite method")
	}
	if sqliteM.Kind != fetch.KindSqlite || sqliteM.DBPath != "/data/seqs.db" {
		t.Errorf("sqlite method = %+v, want Kind=KindSqlite DBPath=/data/seqs.db", sqliteM)
	}
	if sqliteM.Parser != fetch.ParseTabularID {
		t.Errorf("Parser = %v, want ParseTabularID", sqliteM.Parser)
	}
	if sqliteM.Query == "" {
		t.Errorf("sqlite method Query is empty, want the configured query text")
	}
	if want := "SELECT Name, sequence FROM embl_seq WHERE Name IN (?NAMES?)"; sqliteM.Query != want {
		t.Errorf("Query = %q, want %q", sqliteM.Query, want)
	}
}

func TestParseBlixemrcUnknownMethodKind(t *testing.T) {
	const bad = `
[blixem]
default-fetch-mode = "bogus"

[not-a-real-method]
host = "x"
`
	cfg, err := ParseBlixemrc(strings.NewReader(bad))
	if err != nil {
		t.Fatalf("ParseBlixemrc: %v", err)
	}
	if _, err := cfg.ResolveMethods(); err == nil {
		t.Fatalf("expected an error resolving an unknown method group")
	}
}
