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

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <queue> <job-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a job from a queue",
	Long: `Delete one job from a queue, regardless of its state.

Examples:
  syncctl delete product-family abc123
  syncctl delete product-family abc123 --force`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	queue, id := args[0], args[1]

	if !deleteForce {
		fmt.Printf("Delete job '%s' from queue '%s'? [y/N]: ", id, queue)
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := doJSON("DELETE", "/queues/"+queue+"/jobs/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(map[string]string{"queue": queue, "id": id, "status": "deleted"})
	}

	fmt.Printf("✓ Job '%s' deleted from '%s'\n", id, queue)
	return nil
}
