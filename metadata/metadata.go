// Package metadata carries the non-reserved headers and trailers
// exchanged on a call: the subset of HTTP/2 header fields exposed to
// applications as opposed to consumed by the protocol itself.
package metadata

import (
	"context"
	"strings"
)

// MD is a mapping from a lowercase header name to its values, mirroring
// the repeated-header structure of HTTP/2 headers.
type MD map[string][]string

// New builds an MD from a plain map, lowercasing keys.
func New(m map[string]string) MD {
	md := make(MD, len(m))
	for k, v := range m {
		key := strings.ToLower(k)
		md[key] = append(md[key], v)
	}
	return md
}

// Pairs builds an MD from alternating key, value, key, value ... pairs.
func Pairs(kv ...string) MD {
	if len(kv)%2 == 1 {
		panic("metadata: Pairs got an odd number of input pairs")
	}
	md := make(MD, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key := strings.ToLower(kv[i])
		md[key] = append(md[key], kv[i+1])
	}
	return md
}

// Get returns the values associated with key, case-insensitively.
func (md MD) Get(key string) []string {
	return md[strings.ToLower(key)]
}

// Set replaces the values associated with key.
func (md MD) Set(key string, values ...string) {
	if len(values) == 0 {
		return
	}
	md[strings.ToLower(key)] = values
}

// Append appends values to any already associated with key.
func (md MD) Append(key string, values ...string) {
	if len(values) == 0 {
		return
	}
	key = strings.ToLower(key)
	md[key] = append(md[key], values...)
}

// Clone returns a deep copy of md.
func (md MD) Clone() MD {
	out := make(MD, len(md))
	for k, v := range md {
		vv := make([]string, len(v))
		copy(vv, v)
		out[k] = vv
	}
	return out
}

// Join merges zero or more MDs into one, later values appending to earlier.
func Join(mds ...MD) MD {
	out := MD{}
	for _, md := range mds {
		for k, v := range md {
			out[k] = append(out[k], v...)
		}
	}
	return out
}

type incomingKey struct{}
type outgoingKey struct{}

// NewIncomingContext attaches md to ctx as the metadata a server
// handler reads from the call it is servicing.
func NewIncomingContext(ctx context.Context, md MD) context.Context {
	return context.WithValue(ctx, incomingKey{}, md)
}

// FromIncomingContext returns the metadata attached to ctx by the
// server dispatcher, if any.
func FromIncomingContext(ctx context.Context) (MD, bool) {
	md, ok := ctx.Value(incomingKey{}).(MD)
	return md, ok
}

// NewOutgoingContext attaches md to ctx as metadata a client call made
// with ctx should send.
func NewOutgoingContext(ctx context.Context, md MD) context.Context {
	return context.WithValue(ctx, outgoingKey{}, md)
}

// FromOutgoingContext returns the metadata previously attached with
// NewOutgoingContext, if any.
func FromOutgoingContext(ctx context.Context) (MD, bool) {
	md, ok := ctx.Value(outgoingKey{}).(MD)
	return md, ok
}
