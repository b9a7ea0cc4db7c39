// Command plantctl processes plant sheets locally, generates sample sheets,
// and uploads sheets to a running server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/plantmetrics/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
