// Package main is the entry point for the connector CLI.
package main

import (
	"fmt"
	"os"

	"github.com/abushkanya/connector/cli/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
