package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/clemhq/clem/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands render their own error output; print only errors that
		// escaped rendering (e.g. flag parsing).
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
