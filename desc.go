package h2rpc

import "context"

// MethodHandler is invoked for a unary method. dec unmarshals the
// request into a concrete type; interceptor, if non-nil, wraps the
// actual call.
type MethodHandler func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor UnaryServerInterceptor) (interface{}, error)

// MethodDesc describes a single unary method of a service, as a
// service-descriptor generator would emit it.
type MethodDesc struct {
	MethodName string
	Handler    MethodHandler
}

// StreamHandler is invoked for a streaming method, given the opened
// ServerStream.
type StreamHandler func(srv interface{}, stream ServerStream) error

// StreamDesc describes a single streaming method of a service.
type StreamDesc struct {
	StreamName    string
	Handler       StreamHandler
	ServerStreams bool
	ClientStreams bool
}

// ServiceDesc is a service's descriptor: its name, the interface type
// handlers must implement, and its method/stream lists. This is the
// static shape a descriptor generator produces from a schema; for
// this module's demo service it is written by hand.
type ServiceDesc struct {
	ServiceName string
	HandlerType interface{}
	Methods     []MethodDesc
	Streams     []StreamDesc
	Metadata    interface{}
}
