// Package main is the entry point for the dojoctl operator tool.
package main

import (
	"os"

	"kingdojo/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
