// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command blxfetch drives the fetch dispatcher against a blixemrc
// config and a list of sequence names, reporting which loaded and
// which failed. A thin smoke-test wrapper over the fetch package and
// its method back-ends; the full Blixem CLI surface is out of scope.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kortschak/seqtools/config"
	"github.com/kortschak/seqtools/feature"
	"github.com/kortschak/seqtools/fetch"
	"github.com/kortschak/seqtools/fetch/httppfetch"
	"github.com/kortschak/seqtools/fetch/internalfetch"
	"github.com/kortschak/seqtools/fetch/scriptfetch"
	"github.com/kortschak/seqtools/fetch/socketpfetch"
	"github.com/kortschak/seqtools/fetch/sqlitefetch"
)

var (
	configPath string
	names      string
	ledgerPath string
)

var rootCmd = &cobra.Command{
	Use:   "blxfetch",
	Short: "Drive the fetch dispatcher against a blixemrc config and a name list",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "blixemrc config file (required)")
	rootCmd.Flags().StringVar(&names, "names", "", "comma-separated sequence names (required)")
	rootCmd.Flags().StringVar(&ledgerPath, "ledger", "", "optional fetch-attempt ledger path")
	rootCmd.MarkFlagRequired("config")
	rootCmd.MarkFlagRequired("names")
}

func run(cmd *cobra.Command, args []string) error {
	f, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf("blxfetch: %w", err)
	}
	defer f.Close()

	cfg, err := config.ParseBlixemrc(f)
	if err != nil {
		return fmt.Errorf("blxfetch: %w", err)
	}
	resolved, err := cfg.ResolveMethods()
	if err != nil {
		return fmt.Errorf("blxfetch: %w", err)
	}
	methods := make([]fetch.Method, 0, len(resolved))
	for _, m := range resolved {
		methods = append(methods, m)
	}
	if len(methods) == 0 {
		return fmt.Errorf("blxfetch: no fetch methods configured")
	}

	d := fetch.NewDispatcher()
	d.Register(fetch.KindHTTPPfetch, mustHTTPClient())
	d.Register(fetch.KindSocketPfetch, &socketpfetch.Client{})
	sqliteClient := sqlitefetch.NewClient()
	defer sqliteClient.Close()
	d.Register(fetch.KindSqlite, sqliteClient)
	d.Register(fetch.KindFileScript, &scriptfetch.Client{})
	internalClient := internalfetch.NewClient()
	defer internalClient.Close()
	d.Register(fetch.KindInternal, internalClient)

	if ledgerPath != "" {
		ledger, err := fetch.OpenLedger(ledgerPath)
		if err != nil {
			return fmt.Errorf("blxfetch: %w", err)
		}
		defer ledger.Close()
		d.Ledger = ledger
	}

	idx := feature.NewIndex(nil, nil)
	var seqs []*feature.FeatureSeq
	for _, n := range strings.Split(names, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		seqs = append(seqs, idx.AddFeatureSeq(n, "", feature.StrandNone, nil))
	}
	if len(seqs) == 0 {
		return fmt.Errorf("blxfetch: no names given")
	}

	if err := d.BulkFetch(context.Background(), methods, seqs, nil, nil); err != nil {
		return fmt.Errorf("blxfetch: %w", err)
	}

	for _, s := range seqs {
		switch s.FetchState {
		case feature.FetchLoaded:
			fmt.Printf("%s: loaded (%d bases)\n", s.Name, len(s.Sequence))
		case feature.FetchFailed:
			fmt.Printf("%s: failed\n", s.Name)
		default:
			fmt.Printf("%s: pending\n", s.Name)
		}
	}
	return nil
}

func mustHTTPClient() *httppfetch.Client {
	c, err := httppfetch.NewClient()
	if err != nil {
		log.Fatalf("blxfetch: building http client: %v", err)
	}
	return c
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Print(err)
		os.Exit(1)
	}
}
