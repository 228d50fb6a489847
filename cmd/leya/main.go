// Package main provides the leya CLI process entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/leya/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runner := app.Runner{Stdout: os.Stdout, Stderr: os.Stderr, Stdin: os.Stdin}
	code := runner.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
