/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startSupplier string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a supplier sync",
	Long: `Start a sync job for one supplier, or for every active supplier
when --supplier is omitted.

Examples:
  syncctl start --supplier brandline
  syncctl start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startSupplier, "supplier", "", "Supplier code (all active suppliers if omitted)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	req := struct {
		SupplierID string `json:"supplier_id,omitempty"`
	}{SupplierID: startSupplier}

	var resp struct {
		Mode   string   `json:"mode"`
		JobIDs []string `json:"job_ids"`
	}
	if err := doJSON("POST", "/sync/start", req, &resp); err != nil {
		return fmt.Errorf("start sync: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(resp)
	}

	fmt.Printf("✓ %s (%d job(s))\n", resp.Mode, len(resp.JobIDs))
	for _, id := range resp.JobIDs {
		fmt.Printf("  %s\n", id)
	}
	return nil
}
