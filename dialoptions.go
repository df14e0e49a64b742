package h2rpc

import (
	"github.com/h2rpc/h2rpc/credentials"
	"github.com/h2rpc/h2rpc/keepalive"
)

type dialOptions struct {
	insecure    bool
	creds       credentials.TransportCredentials
	codecName   string
	keepalive   keepalive.ClientParameters
	serviceConf ServiceConfig
	perRPC      credentials.PerRPCCredentials
	userAgent   string
	unaryInts   []UnaryClientInterceptor
}

func defaultDialOptions() dialOptions {
	return dialOptions{
		codecName:   "proto",
		serviceConf: ServiceConfig{Methods: map[string]MethodConfig{}},
		userAgent:   "h2rpc",
	}
}

// DialOption configures a ClientConn at creation time.
type DialOption func(*dialOptions)

// WithInsecure disables transport security: the pool dials a
// plaintext h2c connection rather than negotiating TLS.
func WithInsecure() DialOption {
	return func(o *dialOptions) { o.insecure = true }
}

// WithTransportCredentials sets the credentials used for the TLS
// handshake. Required unless WithInsecure is used.
func WithTransportCredentials(creds credentials.TransportCredentials) DialOption {
	return func(o *dialOptions) { o.creds = creds }
}

// WithPerRPCCredentials attaches creds to every outgoing call's
// updateHeaders step.
func WithPerRPCCredentials(creds credentials.PerRPCCredentials) DialOption {
	return func(o *dialOptions) { o.perRPC = creds }
}

// WithCodec sets the default content-subtype codec name, e.g. "proto" or "json".
func WithCodec(name string) DialOption {
	return func(o *dialOptions) { o.codecName = name }
}

// WithKeepaliveParams sets client keepalive ping behavior.
func WithKeepaliveParams(p keepalive.ClientParameters) DialOption {
	return func(o *dialOptions) { o.keepalive = p }
}

// WithDefaultServiceConfig sets dial-time per-method defaults, parsed
// from a JSON string in the same shape as a real service config.
func WithDefaultServiceConfig(js string) DialOption {
	return func(o *dialOptions) {
		sc, err := parseServiceConfig(js)
		if err == nil {
			o.serviceConf = sc
		}
	}
}

// WithUserAgent overrides the user-agent header sent with every call.
func WithUserAgent(ua string) DialOption {
	return func(o *dialOptions) { o.userAgent = ua }
}

// WithChainUnaryInterceptor appends unary client interceptors, invoked
// in order around every unary Invoke call.
func WithChainUnaryInterceptor(i ...UnaryClientInterceptor) DialOption {
	return func(o *dialOptions) { o.unaryInts = append(o.unaryInts, i...) }
}
