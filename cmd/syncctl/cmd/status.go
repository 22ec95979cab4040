/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active syncs and queue depth",
	Long: `Show which suppliers currently hold a sync lock, and the waiting,
active, failed, and delayed counts for each job queue.

Examples:
  syncctl status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type queueStats struct {
	Queue     string `json:"queue"`
	Waiting   int    `json:"waiting"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Delayed   int    `json:"delayed"`
	Paused    bool   `json:"paused"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	var active struct {
		SupplierIDs []string `json:"supplier_ids"`
	}
	if err := doJSON("GET", "/sync/active", nil, &active); err != nil {
		return fmt.Errorf("fetch active syncs: %w", err)
	}

	var stats []queueStats
	if err := doJSON("GET", "/queues/stats", nil, &stats); err != nil {
		return fmt.Errorf("fetch queue stats: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(map[string]any{
			"active_suppliers": active.SupplierIDs,
			"queues":           stats,
		})
	}

	if len(active.SupplierIDs) == 0 {
		fmt.Println("No active syncs")
	} else {
		fmt.Println("Active syncs:")
		for _, id := range active.SupplierIDs {
			fmt.Printf("  %s\n", id)
		}
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "QUEUE\tWAITING\tACTIVE\tCOMPLETED\tFAILED\tDELAYED\tPAUSED")
	for _, s := range stats {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%t\n",
			s.Queue, s.Waiting, s.Active, s.Completed, s.Failed, s.Delayed, s.Paused)
	}
	return w.Flush()
}
