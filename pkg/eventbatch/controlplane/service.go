// Package controlplane exposes the engine's host boundary over gRPC:
// Flush/Cancel/Status RPCs plus a server-streaming feed of host callback
// events (invalid write key, disabled source) a same-machine host
// process subscribes to.
//
// The client/server surface below is shaped the way protoc-gen-go-grpc
// generates it (see controlplane.proto), hand-written against the
// pre-generated emptypb/structpb well-known types rather than a
// generated messages file.
package controlplane

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName                  = "controlplane.ControlPlane"
	methodFlush                  = "/" + serviceName + "/Flush"
	methodCancel                 = "/" + serviceName + "/Cancel"
	methodStatus                 = "/" + serviceName + "/Status"
	methodWatchHostEvents        = "/" + serviceName + "/WatchHostEvents"
)

// Server is the service implementation surface.
type Server interface {
	Flush(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	Cancel(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	Status(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	WatchHostEvents(req *emptypb.Empty, stream ControlPlane_WatchHostEventsServer) error
}

// ControlPlane_WatchHostEventsServer is the server-side stream handle
// for WatchHostEvents.
type ControlPlane_WatchHostEventsServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type watchHostEventsServer struct {
	grpc.ServerStream
}

func (s *watchHostEventsServer) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

func flushHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).Flush(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodFlush}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Flush(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func cancelHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).Cancel(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCancel}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Cancel(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).Status(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodStatus}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Status(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func watchHostEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(Server).WatchHostEvents(in, &watchHostEventsServer{stream})
}

// ServiceDesc is the grpc.ServiceDesc for Server, analogous to a
// protoc-gen-go-grpc generated "_ServiceDesc" value.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Flush", Handler: flushHandler},
		{MethodName: "Cancel", Handler: cancelHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchHostEvents",
			Handler:       watchHostEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "controlplane.proto",
}

// RegisterServer registers srv on s.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client is the host-side API for talking to a running engine's
// control plane.
type Client interface {
	Flush(ctx context.Context, opts ...grpc.CallOption) error
	Cancel(ctx context.Context, opts ...grpc.CallOption) error
	Status(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchHostEvents(ctx context.Context, opts ...grpc.CallOption) (ControlPlane_WatchHostEventsClient, error)
}

// ControlPlane_WatchHostEventsClient is the client-side stream handle
// for WatchHostEvents.
type ControlPlane_WatchHostEventsClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type watchHostEventsClient struct {
	grpc.ClientStream
}

func (c *watchHostEventsClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}

	return m, nil
}

type client struct {
	cc grpc.ClientConnInterface
}

// NewClient builds a Client over cc.
func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc: cc}
}

func (c *client) Flush(ctx context.Context, opts ...grpc.CallOption) error {
	out := new(emptypb.Empty)
	return c.cc.Invoke(ctx, methodFlush, new(emptypb.Empty), out, opts...)
}

func (c *client) Cancel(ctx context.Context, opts ...grpc.CallOption) error {
	out := new(emptypb.Empty)
	return c.cc.Invoke(ctx, methodCancel, new(emptypb.Empty), out, opts...)
}

func (c *client) Status(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodStatus, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *client) WatchHostEvents(ctx context.Context, opts ...grpc.CallOption) (ControlPlane_WatchHostEventsClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], methodWatchHostEvents, opts...)
	if err != nil {
		return nil, err
	}

	cs := &watchHostEventsClient{stream}
	if err := cs.SendMsg(new(emptypb.Empty)); err != nil {
		return nil, err
	}

	if err := cs.CloseSend(); err != nil {
		return nil, err
	}

	return cs, nil
}
