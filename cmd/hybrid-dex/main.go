package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/dex"
)

func main() {
	os.Exit(run())
}

// run returns 2 when the program rejected a transaction and 1 on any other
// failure.
func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := newRootCommand(newRPCClient).ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, dex.ErrRemoteRejected) {
		return 2
	}
	return 1
}
