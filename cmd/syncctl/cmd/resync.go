/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resyncForce bool

var resyncCmd = &cobra.Command{
	Use:   "resync <supplier-code>",
	Short: "Force a full resync of one supplier",
	Long: `Clear the supplier's stored content hashes and enqueue a normal
sync job. With every hash cleared, every family compares as changed, so
the ordinary sync path re-imports the supplier's full catalog.

Examples:
  syncctl resync brandline
  syncctl resync brandline --force`,
	Args: cobra.ExactArgs(1),
	RunE: runResync,
}

func init() {
	resyncCmd.Flags().BoolVarP(&resyncForce, "force", "f", false, "Skip confirmation")
	rootCmd.AddCommand(resyncCmd)
}

func runResync(cmd *cobra.Command, args []string) error {
	supplier := args[0]

	if !resyncForce {
		fmt.Printf("Full resync of '%s' re-imports its entire catalog. Continue? [y/N]: ", supplier)
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	var resp struct {
		Mode   string   `json:"mode"`
		JobIDs []string `json:"job_ids"`
	}
	if err := doJSON("POST", "/sync/resync/"+supplier, nil, &resp); err != nil {
		return fmt.Errorf("resync: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(resp)
	}

	fmt.Printf("✓ Full resync queued for '%s' (%d job(s))\n", supplier, len(resp.JobIDs))
	return nil
}
