package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/leya/internal/config"
	"github.com/rbright/leya/internal/ipc"
	"github.com/rbright/leya/internal/rpc"
	"github.com/rbright/leya/internal/session"
)

// commandServe owns the runtime socket and, when configured, the gRPC
// listener until ctx is cancelled.
func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	var rpcListener net.Listener
	if addr := strings.TrimSpace(cfg.RPC.Listen); addr != "" {
		rpcListener, err = net.Listen("tcp", addr)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: listen grpc %s: %v\n", addr, err)
			return 1
		}
	}

	asst, err := buildAssistant(ctx, cfg, logger)
	if err != nil {
		if rpcListener != nil {
			_ = rpcListener.Close()
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = asst.Close() }()
	if asst.report.Degraded {
		fmt.Fprintf(r.Stderr, "warning: custom commands unavailable: %v\n", asst.report.Reason)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return asst.controller.Run(gctx) })
	g.Go(func() error { return ipc.Serve(gctx, listener, asst.controller) })
	if rpcListener != nil {
		g.Go(func() error { return rpc.Serve(gctx, rpcListener, asst.controller, logger) })
	}

	fmt.Fprintf(r.Stdout, "leya listening on %s\n", socketPath)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// commandListen runs the assistant in-process, reading one utterance per
// line from stdin.
func (r Runner) commandListen(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	asst, err := buildAssistant(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = asst.Close() }()
	stop := asst.run(ctx)
	defer stop()

	lines := make(chan string)
	go scanLines(r.stdin(), lines)

	for {
		select {
		case <-ctx.Done():
			return 0
		case line, ok := <-lines:
			if !ok {
				return 0
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			result, err := asst.controller.Submit(ctx, line)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return 0
				}
				fmt.Fprintf(r.Stderr, "error: %v\n", err)
				return 1
			}
			r.printResult(result)
		}
	}
}

func (r Runner) printResult(result session.Result) {
	for _, prompt := range result.Prompts {
		fmt.Fprintln(r.Stdout, prompt)
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
	}
}

func (r Runner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

// scanLines forwards lines until EOF. The goroutine outlives a cancelled
// listen only until the reader returns.
func scanLines(reader io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}
