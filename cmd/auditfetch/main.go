// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command auditfetch dumps a fetch-attempt ledger as a JSON stream on
// stdout, one record per logged attempt. Adapted from cmd/audit-ins-db,
// which performed the same inspection over the BLAST-pipeline's
// forward.db/regions.db/reverse.db kv stores; this tool repoints that
// idiom at fetch.Ledger, the kv store that superseded them.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kortschak/seqtools/fetch"
)

var ledgerPath string

var rootCmd = &cobra.Command{
	Use:   "auditfetch",
	Short: "Dump a fetch-attempt ledger as JSON",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&ledgerPath, "ledger", "", "ledger database path (required)")
	rootCmd.MarkFlagRequired("ledger")
}

func run(cmd *cobra.Command, args []string) error {
	ledger, err := fetch.OpenLedger(ledgerPath)
	if err != nil {
		return fmt.Errorf("auditfetch: %w", err)
	}
	defer ledger.Close()

	attempts, err := ledger.All()
	if err != nil {
		return fmt.Errorf("auditfetch: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, a := range attempts {
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("auditfetch: %w", err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Print(err)
		os.Exit(1)
	}
}
