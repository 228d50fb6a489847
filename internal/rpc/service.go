// Package rpc exposes the IPC command surface as a gRPC service. Messages are
// google.protobuf.Struct values carrying the IPC request and response fields.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rbright/leya/internal/ipc"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "leya.v1.Assistant"
	// HandleMethod is the full method path of the unary Handle call.
	HandleMethod = "/" + ServiceName + "/Handle"
)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ipc.Handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: handleUnary},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "leya/v1/assistant.proto",
}

func handleUnary(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		return handle(ctx, srv.(ipc.Handler), req.(*structpb.Struct))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HandleMethod}
	return interceptor(ctx, in, info, call)
}

func handle(ctx context.Context, handler ipc.Handler, in *structpb.Struct) (*structpb.Struct, error) {
	var req ipc.Request
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	out, err := toStruct(ipc.Dispatch(ctx, handler, req))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStruct converts a JSON-tagged value into a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func fromStruct(in *structpb.Struct, dst any) error {
	if in == nil {
		return fmt.Errorf("empty message")
	}
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
