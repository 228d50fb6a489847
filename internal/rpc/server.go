package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/rbright/leya/internal/ipc"
)

// Serve answers gRPC calls on listener with handler until ctx is cancelled.
func Serve(ctx context.Context, listener net.Listener, handler ipc.Handler, logger *slog.Logger) error {
	server := grpc.NewServer()
	server.RegisterService(&serviceDesc, handler)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		server.GracefulStop()
	}()

	if logger != nil {
		logger.Info("grpc listening", "addr", listener.Addr().String())
	}
	err := server.Serve(listener)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		server.Stop()
		<-stopped
		return fmt.Errorf("serve grpc: %w", err)
	}
	<-stopped
	return nil
}
