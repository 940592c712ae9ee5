// Package main provides the CLI entry point for the evidence log analyzer
// The tool keeps communication-log evidence in JSON files:
// 1. add-log, remove-log, list, import - record and browse log entries
// 2. audit, add-user - administer accounts and review the access history
// 3. export, query - copy the logs to SQLite and run read-only SQL against them
package main

import (
	"fmt"
	"os"

	"evidence-log-analyzer/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
