// Package chordrpc is the grpc service binding for the overlay's single
// Dispatch RPC. It is written by hand in the shape protoc-gen-go-grpc would
// generate from a .proto file, because the wire payload (wire.Envelope) is
// carried through the gob codec (internal/transport/codec) rather than
// through generated protobuf marshaling.
package chordrpc

import (
	"context"

	"google.golang.org/grpc"

	"chorddht/internal/wire"
)

const dispatchMethod = "/chord.Transport/Dispatch"

// DispatchServer is implemented by anything that can answer one inbound
// Envelope with a reply Envelope. internal/transport.Listener implements it.
type DispatchServer interface {
	Dispatch(context.Context, *wire.Envelope) (*wire.Envelope, error)
}

// ServiceDesc describes the single-method "Transport" service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "chord.Transport",
	HandlerType: (*DispatchServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dispatch", Handler: dispatchHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chordrpc/service.go",
}

func dispatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.Envelope)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatchServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: dispatchMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatchServer).Dispatch(ctx, req.(*wire.Envelope))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterDispatchServer attaches srv to the grpc server under the
// Transport service name.
func RegisterDispatchServer(s *grpc.Server, srv DispatchServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// DispatchClient is the typed client stub for the Transport service.
type DispatchClient interface {
	Dispatch(ctx context.Context, in *wire.Envelope, opts ...grpc.CallOption) (*wire.Envelope, error)
}

type dispatchClient struct {
	cc grpc.ClientConnInterface
}

// NewDispatchClient wraps a ClientConn with the typed Transport stub.
func NewDispatchClient(cc grpc.ClientConnInterface) DispatchClient {
	return &dispatchClient{cc: cc}
}

func (c *dispatchClient) Dispatch(ctx context.Context, in *wire.Envelope, opts ...grpc.CallOption) (*wire.Envelope, error) {
	out := new(wire.Envelope)
	if err := c.cc.Invoke(ctx, dispatchMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
