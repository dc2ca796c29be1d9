// Package main is the entry point for the u2kit unified2 log tool.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/u2kit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
