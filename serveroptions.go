package h2rpc

import (
	"github.com/h2rpc/h2rpc/credentials"
	"github.com/h2rpc/h2rpc/keepalive"
)

type serverOptions struct {
	creds       credentials.TransportCredentials // nil means plaintext h2c
	keepaliveSP keepalive.ServerParameters
	codecName   string
	unaryInts   []UnaryServerInterceptor
	streamInts  []StreamServerInterceptor
}

func defaultServerOptions() serverOptions {
	return serverOptions{codecName: "proto"}
}

// ServerOption configures a Server at construction time.
type ServerOption func(*serverOptions)

// Creds sets the transport credentials used for the server handshake.
// Omit for a plaintext h2c server.
func Creds(creds credentials.TransportCredentials) ServerOption {
	return func(o *serverOptions) { o.creds = creds }
}

// KeepaliveParams sets server keepalive ping behavior.
func KeepaliveParams(p keepalive.ServerParameters) ServerOption {
	return func(o *serverOptions) { o.keepaliveSP = p }
}

// ServerCodec sets the default content-subtype codec name.
func ServerCodec(name string) ServerOption {
	return func(o *serverOptions) { o.codecName = name }
}

// ChainUnaryInterceptor appends unary interceptors, invoked in order
// around every unary handler.
func ChainUnaryInterceptor(i ...UnaryServerInterceptor) ServerOption {
	return func(o *serverOptions) { o.unaryInts = append(o.unaryInts, i...) }
}

// ChainStreamInterceptor appends stream interceptors, invoked in order
// around every streaming handler.
func ChainStreamInterceptor(i ...StreamServerInterceptor) ServerOption {
	return func(o *serverOptions) { o.streamInts = append(o.streamInts, i...) }
}
