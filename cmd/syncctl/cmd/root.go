/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL    string
	authToken    string
	outputFormat string
	httpClient   = &http.Client{Timeout: 30 * time.Second}
)

var rootCmd = &cobra.Command{
	Use:   "syncctl",
	Short: "CLI for the Promidata synchronization engine's control surface",
	Long: `syncctl drives the synchronization engine's HTTP control surface.

Examples:
  # Start a sync for one supplier, or every active supplier if omitted
  syncctl start --supplier brandline

  # Force a full resync, ignoring stored content hashes
  syncctl resync brandline

  # Check what's currently running and queue depth
  syncctl status

  # List failed jobs in the product-family queue
  syncctl list product-family --state failed

  # Retry one job, or every failed job in a queue
  syncctl retry product-family --id abc123
  syncctl retry product-family --all`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("SYNCCTL_SERVER", "http://localhost:8080"), "Control surface base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("SYNCCTL_TOKEN"), "Admin API token (or SYNCCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json")
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// apiError mirrors internal/httpapi's {error:{message,code}} envelope,
// so a non-2xx response surfaces the engine's own message instead of a
// bare status code.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// doJSON issues one control-surface request, decoding a JSON response
// body into out (nil to discard it).
func doJSON(method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, serverURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s (%s)", apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("request failed: %s: %s", resp.Status, string(data))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
