// Package main provides the tracegrad CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tracegrad/tracegrad/autodiff"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("tracegrad %s\n", version)
			return
		case "info":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: tracegrad info <trace-file>")
				os.Exit(2)
			}
			if err := info(os.Args[2]); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("tracegrad - trace-based automatic differentiation")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version             Show version")
	fmt.Println("  info <trace-file>   Summarize a saved trace")
}

func info(path string) error {
	t, err := autodiff.Load(path)
	if err != nil {
		return err
	}
	fmt.Printf("entries:      %d\n", t.Len())
	fmt.Printf("independents: %d\n", t.NumIndependents())
	fmt.Printf("dependents:   %d\n", t.NumDependents())
	fmt.Printf("values:       %v\n", t.Values())
	return nil
}
