package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/c360chat/c360chat/internal/cli/c360chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	code := c360chat.Run(ctx, os.Args[1:], c360chat.Options{
		Lookup: os.LookupEnv,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	stop()
	os.Exit(code)
}
