// Command bto manages BTO projects, applications and officer rosters.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/bto/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
