/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listState    string
	listQuery    string
	listPage     int
	listPageSize int
)

var listCmd = &cobra.Command{
	Use:   "list <queue>",
	Short: "List jobs in a queue",
	Long: `List jobs in one of supplier-sync, product-family, or image-upload.

Examples:
  syncctl list product-family
  syncctl list product-family --state failed
  syncctl list image-upload --state active --page 2`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listState, "state", "", "Filter by state (waiting, active, completed, failed, delayed)")
	listCmd.Flags().StringVar(&listQuery, "q", "", "Filter by job id substring")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 20, "Jobs per page")
	rootCmd.AddCommand(listCmd)
}

type jobProgress struct {
	Step    string `json:"step"`
	Percent int    `json:"percent"`
}

type jobSummary struct {
	ID        string       `json:"id"`
	Queue     string       `json:"queue"`
	State     string       `json:"state"`
	Retried   int          `json:"retried"`
	MaxRetry  int          `json:"max_retry"`
	LastError string       `json:"last_error,omitempty"`
	Progress  *jobProgress `json:"progress,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	queue := args[0]

	q := url.Values{}
	q.Set("page", fmt.Sprint(listPage))
	q.Set("page_size", fmt.Sprint(listPageSize))
	if listState != "" {
		q.Set("state", listState)
	}
	if listQuery != "" {
		q.Set("q", listQuery)
	}

	var resp struct {
		Page     int          `json:"page"`
		PageSize int          `json:"page_size"`
		Jobs     []jobSummary `json:"jobs"`
	}
	if err := doJSON("GET", "/queues/"+queue+"/jobs?"+q.Encode(), nil, &resp); err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(resp)
	}

	if len(resp.Jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATE\tRETRIED\tMAX_RETRY\tPROGRESS\tLAST_ERROR")
	for _, j := range resp.Jobs {
		progress := "-"
		if j.Progress != nil {
			progress = fmt.Sprintf("%s (%d%%)", j.Progress.Step, j.Progress.Percent)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", j.ID, j.State, j.Retried, j.MaxRetry, progress, truncate(j.LastError, 40))
	}
	return w.Flush()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
