// Package lookuptrace creates OpenTelemetry spans for the hops of a
// find_key_successor chain, so a lookup initiated at one node shows up as a
// single trace spanning however many peers it takes to resolve.
package lookuptrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"chorddht/internal/wire"
)

const (
	lookupMetaKey = "x-chord-lookup"
	tracerName    = "chorddht/lookuptrace"
)

var tracer = otel.Tracer(tracerName)

// WithLookup marks ctx as belonging to a find-key-successor chain, so the
// client interceptor propagates the trace to the next hop.
func WithLookup(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(lookupMetaKey, "true")
	return metadata.NewOutgoingContext(ctx, md)
}

// IsLookup reports whether the incoming call carries the lookup marker.
func IsLookup(ctx context.Context) bool {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	vals := md.Get(lookupMetaKey)
	return len(vals) > 0 && vals[0] == "true"
}

// ServerInterceptor starts a span for every find_key_successor hop, linking
// it to whatever trace context the caller propagated.
func ServerInterceptor() grpc.UnaryServerInterceptor {
	propagator := otel.GetTextMapPropagator()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = propagator.Extract(ctx, metadataCarrier(md))
		}

		env, ok := req.(*wire.Envelope)
		if ok && (env.Type == wire.FindKeySuccessor || IsLookup(ctx)) {
			ctx = WithLookup(ctx)
			ctx, span := tracer.Start(ctx, "find_key_successor", trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			return handler(ctx, req)
		}
		return handler(ctx, req)
	}
}

// ClientInterceptor propagates the lookup marker and trace context to the
// next hop when the outgoing call is itself part of a lookup chain.
func ClientInterceptor() grpc.UnaryClientInterceptor {
	propagator := otel.GetTextMapPropagator()

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		out, _ := metadata.FromOutgoingContext(ctx)
		if !IsLookup(ctx) && len(out.Get(lookupMetaKey)) == 0 {
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		ctx = WithLookup(ctx)
		ctx, span := tracer.Start(ctx, method, trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		md, _ := metadata.FromOutgoingContext(ctx)
		md = md.Copy()
		propagator.Inject(ctx, metadataCarrier(md))
		ctx = metadata.NewOutgoingContext(ctx, md)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

type metadataCarrier metadata.MD

func (mc metadataCarrier) Get(key string) string {
	vals := metadata.MD(mc).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (mc metadataCarrier) Set(key, value string) {
	metadata.MD(mc).Set(key, value)
}

func (mc metadataCarrier) Keys() []string {
	out := make([]string, 0, len(mc))
	for k := range mc {
		out = append(out, k)
	}
	return out
}
