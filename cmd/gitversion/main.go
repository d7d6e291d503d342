// Package main is the entry point for the gitversion command.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jmgilman/go/gitversion/cmd/gitversion/commands"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer, opts ...commands.Option) int {
	cli := commands.New(opts...)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	return 0
}
