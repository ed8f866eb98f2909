// Package main is the entry point for the publiccode-issueopener CLI.
package main

import (
	"fmt"
	"os"

	"github.com/italia/publiccode-issueopener/internal/app"
	"github.com/italia/publiccode-issueopener/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Ports are bound once the configuration is loaded
	container := &app.Container{}

	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.Execute()
}
