// Package main is the entry point for the exodash binary.
package main

import (
	"os"

	"exodash/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
