package h2rpc

import (
	"time"

	"github.com/h2rpc/h2rpc/metadata"
)

// callOptions is the concrete configuration record backing a call, per
// the enumerated per-call option keys: headers, updateHeaders,
// deadline, grpc-timeout, marshal/unmarshal (via codec name), and
// waitForReady. Unknown option keys are not accepted — CallOption is a
// closed set of constructors, not an open map.
type callOptions struct {
	headers       metadata.MD
	updateHeaders func(authority string, headers metadata.MD) error
	deadline      time.Time
	hasDeadline   bool
	rawTimeout    string
	parent        ServerStream
	codecName     string
	waitForReady  bool
	maxRecvSize   *int
	maxSendSize   *int
}

// CallOption configures one call. Options compose: later options in a
// call's option list override earlier ones for scalar fields.
type CallOption func(*callOptions)

// Header sets a user metadata header sent with the call. Reserved
// header names are rejected at send time, not here.
func Header(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = metadata.MD{}
		}
		o.headers.Append(key, value)
	}
}

// WithUpdateHeaders installs an async callback invoked with
// (authority, headers) just before transmission; a non-nil error fails
// the call with UNAUTHENTICATED before any bytes are sent.
func WithUpdateHeaders(f func(authority string, headers metadata.MD) error) CallOption {
	return func(o *callOptions) { o.updateHeaders = f }
}

// WithDeadline sets an absolute deadline for the call.
func WithDeadline(d time.Time) CallOption {
	return func(o *callOptions) { o.deadline = d; o.hasDeadline = true }
}

// WithTimeout sets a deadline d from now.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.deadline = time.Now().Add(d)
		o.hasDeadline = true
	}
}

// WithGrpcTimeout sets the grpc-timeout header directly from a
// pre-encoded interval string (e.g. "250u", "5S"), instead of deriving
// it from a deadline. The value is validated as a syntactically valid
// interval at call-construction time, per "invalid values fail the
// call with a local error" rather than being sent malformed.
func WithGrpcTimeout(interval string) CallOption {
	return func(o *callOptions) { o.rawTimeout = interval }
}

// WithParent attaches this call as a child of a server-side call:
// cancellation or an error on the parent cancels this call with the
// corresponding code.
func WithParent(parent ServerStream) CallOption {
	return func(o *callOptions) { o.parent = parent }
}

// WithCallCodec overrides the codec used to marshal/unmarshal this call's messages.
func WithCallCodec(name string) CallOption {
	return func(o *callOptions) { o.codecName = name }
}

// WithWaitForReady controls whether the call waits for the connection
// pool to finish dialing rather than failing fast.
func WithWaitForReady(wait bool) CallOption {
	return func(o *callOptions) { o.waitForReady = wait }
}

// WithMaxRecvSize bounds the size of a single received message.
func WithMaxRecvSize(n int) CallOption {
	return func(o *callOptions) { o.maxRecvSize = &n }
}

// WithMaxSendSize bounds the size of a single sent message.
func WithMaxSendSize(n int) CallOption {
	return func(o *callOptions) { o.maxSendSize = &n }
}

func combineCallOptions(opts ...CallOption) callOptions {
	var co callOptions
	for _, o := range opts {
		o(&co)
	}
	return co
}

// applyMethodConfig fills any unset callOptions fields from mc, the
// dial-time default for this method.
func (co *callOptions) applyMethodConfig(mc MethodConfig) {
	if !co.hasDeadline && mc.Timeout != nil {
		co.deadline = time.Now().Add(*mc.Timeout)
		co.hasDeadline = true
	}
	if mc.WaitForReady != nil && !co.waitForReady {
		co.waitForReady = *mc.WaitForReady
	}
	co.maxRecvSize = getMaxSize(mc.MaxRespSize, co.maxRecvSize, defaultMaxRecvSize)
	co.maxSendSize = getMaxSize(mc.MaxReqSize, co.maxSendSize, defaultMaxSendSize)
}

const (
	defaultMaxRecvSize = 4 * 1024 * 1024
	defaultMaxSendSize = 4 * 1024 * 1024
)
