package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"galaxy-airline/internal/gateway"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, e := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if cerr := e.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, gateway.Message(err))
		os.Exit(1)
	}
}
