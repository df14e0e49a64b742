// Package h2rpc implements an RPC runtime that carries unary and
// streaming calls over HTTP/2, framed as length-prefixed messages,
// with call status conveyed via grpc-status/grpc-message trailers.
package h2rpc

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/h2rpc/h2rpc/encoding"
	"github.com/h2rpc/h2rpc/pool"
)

// splitHostPort parses a "host:port" target string, defaulting to
// port 443 when no port is present.
func splitHostPort(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		host, portStr = target, "443"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("h2rpc: invalid port in target %q: %w", target, err)
	}
	if host == "" {
		host = "localhost"
	}
	return host, port, nil
}

// ClientConn represents a (possibly not-yet-dialed) target: a host and
// port the connection pool will lazily connect to on first use.
type ClientConn struct {
	host string
	port int
	opts dialOptions
	pool *pool.Pool
}

// Dial creates a ClientConn for target, either a bare "host:port" or a
// "scheme://authority/host:port"-shaped target (the scheme and
// authority are accepted for compatibility but otherwise ignored: this
// pool has no pluggable resolver, only static host:port endpoints).
// Dial does not itself open a connection; the pool dials lazily on the
// first call, matching "acquire a stream from the pool" at call time
// rather than at Dial time.
func Dial(target string, opts ...DialOption) (*ClientConn, error) {
	host, port, err := splitHostPort(pool.ParseTarget(target).Endpoint)
	if err != nil {
		return nil, err
	}
	do := defaultDialOptions()
	for _, o := range opts {
		o(&do)
	}
	if !do.insecure && do.creds == nil {
		return nil, fmt.Errorf("h2rpc: Dial requires WithTransportCredentials or WithInsecure")
	}
	return &ClientConn{host: host, port: port, opts: do, pool: pool.New()}, nil
}

func (cc *ClientConn) poolOptions() pool.Options {
	return pool.Options{
		Plain:     cc.opts.insecure,
		Host:      cc.host,
		Port:      cc.port,
		Creds:     cc.opts.creds,
		Keepalive: cc.opts.keepalive,
	}
}

func (cc *ClientConn) codec(name string) (encoding.Codec, error) {
	if name == "" {
		name = cc.opts.codecName
	}
	c := encoding.GetCodec(name)
	if c == nil {
		return nil, fmt.Errorf("h2rpc: no codec registered for %q", name)
	}
	return c, nil
}

func (cc *ClientConn) methodConfig(method string) (MethodConfig, bool) {
	mc, ok := cc.opts.serviceConf.Methods[method]
	return mc, ok
}

// Invoke performs a unary call on method, sending req and decoding the
// single response into reply, run through any chained
// UnaryClientInterceptors.
func (cc *ClientConn) Invoke(ctx context.Context, method string, req, reply interface{}, opts ...CallOption) error {
	if chain := chainUnaryClientInterceptors(cc.opts.unaryInts); chain != nil {
		return chain(ctx, method, req, reply, cc, invoke, opts...)
	}
	return invoke(ctx, method, req, reply, cc, opts...)
}

// invoke is the innermost unary call, after all interceptors — the
// UnaryInvoker a chain of UnaryClientInterceptors ultimately calls.
func invoke(ctx context.Context, method string, req, reply interface{}, cc *ClientConn, opts ...CallOption) error {
	cs, err := newClientStream(ctx, cc, method, nil, opts...)
	if err != nil {
		return err
	}
	if err := cs.SendMsg(req); err != nil {
		return err
	}
	if err := cs.CloseSend(); err != nil {
		return err
	}
	if err := cs.RecvMsg(reply); err != nil {
		return err
	}
	// A second RecvMsg must observe the terminal status, matching
	// "exactly one status, after all data"; io.EOF means the code was OK.
	err = cs.RecvMsg(new(struct{}))
	if err == io.EOF {
		return nil
	}
	return err
}

// NewStream opens a new call described by desc on method.
func (cc *ClientConn) NewStream(ctx context.Context, desc *StreamDesc, method string, opts ...CallOption) (ClientStream, error) {
	return newClientStream(ctx, cc, method, desc, opts...)
}
