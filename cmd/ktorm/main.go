// Command ktorm renders and runs declarative SQL query definitions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mik629/ktorm/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures; flag and argument errors
		// are printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
