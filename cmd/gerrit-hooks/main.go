package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/gerrit-hooks/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
