package main

import (
	"fmt"
	"os"

	"github.com/roach88/datalite/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// The root command silences cobra's own printing, so errors
		// reach the user exactly once, here.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
