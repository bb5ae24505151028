package main

import (
	"os"

	"github.com/wonny/dealfunnel/cmd/funnel/commands"
)

// main is the entry point for the funnel CLI
// ⭐ single entry point: go run ./cmd/funnel [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
