/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop <supplier-code>",
	Short: "Request a running sync to stop at its next safe point",
	Long: `Set the cooperative stop sentinel for a supplier. Always succeeds,
regardless of whether a sync is actually running for that supplier.

Examples:
  syncctl stop brandline`,
	Args: cobra.ExactArgs(1),
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	supplier := args[0]

	var resp struct {
		Success bool `json:"success"`
	}
	if err := doJSON("POST", "/sync/stop/"+supplier, nil, &resp); err != nil {
		return fmt.Errorf("stop sync: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(resp)
	}

	fmt.Printf("✓ Stop requested for '%s'\n", supplier)
	return nil
}
