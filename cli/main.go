package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/devilmonastery/biniq/cli/internal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand()

	err := rootCmd.ExecuteContext(ctx)
	if mErr := cli.WriteMetrics(); mErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", mErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}
