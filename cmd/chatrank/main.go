// Package main is the entry point for the chatrank CLI.
package main

import (
	"os"

	"github.com/chatrank/chatrank/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
