/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package main

import (
	"os"

	"github.com/atlaspim/syncengine/cmd/syncctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
