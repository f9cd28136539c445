// Package main provides the entry point for the wordindex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/wordindex/cmd/wordindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
