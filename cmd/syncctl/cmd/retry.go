/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	retryID  string
	retryAll bool
	retryN   int
)

var retryCmd = &cobra.Command{
	Use:   "retry <queue>",
	Short: "Retry one failed job, or every failed job in a queue",
	Long: `Retry a job by id, or retry every failed job in the queue with
--all (optionally capped with --n).

Examples:
  syncctl retry product-family --id abc123
  syncctl retry product-family --all
  syncctl retry product-family --all --n 50`,
	Args: cobra.ExactArgs(1),
	RunE: runRetry,
}

func init() {
	retryCmd.Flags().StringVar(&retryID, "id", "", "Job id to retry")
	retryCmd.Flags().BoolVar(&retryAll, "all", false, "Retry every failed job in the queue")
	retryCmd.Flags().IntVar(&retryN, "n", 0, "Cap on jobs retried with --all (0 = server default of 100)")
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	queue := args[0]

	if retryAll {
		req := struct {
			N int `json:"n,omitempty"`
		}{N: retryN}
		var resp struct {
			Retried int `json:"retried"`
		}
		if err := doJSON("POST", "/queues/"+queue+"/retry-failed", req, &resp); err != nil {
			return fmt.Errorf("retry failed jobs: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(resp)
		}
		fmt.Printf("✓ Retried %d job(s)\n", resp.Retried)
		return nil
	}

	if retryID == "" {
		return fmt.Errorf("--id or --all required")
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := doJSON("POST", "/queues/"+queue+"/jobs/"+retryID+"/retry", nil, &resp); err != nil {
		return fmt.Errorf("retry job: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(resp)
	}

	fmt.Printf("✓ Job '%s' queued for retry\n", retryID)
	return nil
}
