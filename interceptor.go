package h2rpc

import "context"

// UnaryHandler is the innermost unary call, after all interceptors.
type UnaryHandler func(ctx context.Context, req interface{}) (interface{}, error)

// UnaryServerInterceptor wraps a unary handler, e.g. for logging,
// auth, or recovery.
type UnaryServerInterceptor func(ctx context.Context, req interface{}, info *UnaryServerInfo, handler UnaryHandler) (interface{}, error)

// UnaryServerInfo carries static information about a unary call.
type UnaryServerInfo struct {
	FullMethod string
}

// StreamServerInterceptor wraps a streaming handler.
type StreamServerInterceptor func(srv interface{}, ss ServerStream, info *StreamServerInfo, handler StreamHandler) error

// StreamServerInfo carries static information about a streaming call.
type StreamServerInfo struct {
	FullMethod    string
	ServerStreams bool
	ClientStreams bool
}

// chainUnaryInterceptors composes interceptors into the single
// UnaryServerInterceptor the dispatcher invokes, outermost first.
func chainUnaryInterceptors(ints []UnaryServerInterceptor) UnaryServerInterceptor {
	if len(ints) == 0 {
		return nil
	}
	if len(ints) == 1 {
		return ints[0]
	}
	return func(ctx context.Context, req interface{}, info *UnaryServerInfo, handler UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(ints) - 1; i >= 0; i-- {
			cur := ints[i]
			next := chain
			chain = func(ctx context.Context, req interface{}) (interface{}, error) {
				return cur(ctx, req, info, next)
			}
		}
		return chain(ctx, req)
	}
}

func chainStreamInterceptors(ints []StreamServerInterceptor) StreamServerInterceptor {
	if len(ints) == 0 {
		return nil
	}
	if len(ints) == 1 {
		return ints[0]
	}
	return func(srv interface{}, ss ServerStream, info *StreamServerInfo, handler StreamHandler) error {
		chain := handler
		for i := len(ints) - 1; i >= 0; i-- {
			cur := ints[i]
			next := chain
			chain = func(srv interface{}, ss ServerStream) error {
				return cur(srv, ss, info, next)
			}
		}
		return chain(srv, ss)
	}
}

// UnaryClientInterceptor wraps a unary client call.
type UnaryClientInterceptor func(ctx context.Context, method string, req, reply interface{}, cc *ClientConn, invoker UnaryInvoker, opts ...CallOption) error

// UnaryInvoker performs the actual unary RPC; the last link in a
// UnaryClientInterceptor chain.
type UnaryInvoker func(ctx context.Context, method string, req, reply interface{}, cc *ClientConn, opts ...CallOption) error

// chainUnaryClientInterceptors composes client interceptors into the
// single UnaryClientInterceptor ClientConn.Invoke calls, outermost first.
func chainUnaryClientInterceptors(ints []UnaryClientInterceptor) UnaryClientInterceptor {
	if len(ints) == 0 {
		return nil
	}
	if len(ints) == 1 {
		return ints[0]
	}
	return func(ctx context.Context, method string, req, reply interface{}, cc *ClientConn, invoker UnaryInvoker, opts ...CallOption) error {
		chain := invoker
		for i := len(ints) - 1; i >= 0; i-- {
			cur := ints[i]
			next := chain
			chain = func(ctx context.Context, method string, req, reply interface{}, cc *ClientConn, opts ...CallOption) error {
				return cur(ctx, method, req, reply, cc, next, opts...)
			}
		}
		return chain(ctx, method, req, reply, cc, opts...)
	}
}
