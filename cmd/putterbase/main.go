// Package main is the entry point for the putterbase server.
package main

import (
	"os"

	"github.com/rgclark/putterbase/cmd/putterbase/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
