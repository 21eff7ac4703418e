// Package main is the entry point for the runlog CLI.
package main

import (
	"log"
	"os"

	"github.com/watchfire-io/runlog/internal/cli"
)

func main() {
	log.SetFlags(0)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
