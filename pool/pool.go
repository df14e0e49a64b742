// Package pool implements the client-side connection pool: a cache of
// open HTTP/2 endpoints keyed by (plaintext?, host, port), with
// concurrent dials for the same key deduplicated onto a single
// negotiation.
package pool

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/sync/singleflight"

	"github.com/h2rpc/h2rpc/credentials"
	"github.com/h2rpc/h2rpc/grpclog"
	"github.com/h2rpc/h2rpc/keepalive"
)

// Options configures how a pooled endpoint is dialed.
type Options struct {
	Plain      bool
	Host       string
	Port       int
	Creds      credentials.TransportCredentials // ignored when Plain
	Keepalive  keepalive.ClientParameters
	DialTimeout time.Duration
}

func (o Options) key() string {
	return fmt.Sprintf("%v|%s|%d", o.Plain, o.Host, o.Port)
}

func (o Options) addr() string {
	return net.JoinHostPort(o.Host, fmt.Sprintf("%d", o.Port))
}

// Endpoint is one pooled HTTP/2 connection target. Every call on the
// same key shares the same *http2.Transport, which performs its own
// internal connection reuse keyed by authority.
type Endpoint struct {
	transport *http2.Transport
	authority string
	stats     stats
}

// RoundTrip issues req over this endpoint.
func (e *Endpoint) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := e.transport.RoundTrip(req)
	e.stats.record(DoneInfo{Err: err})
	return resp, err
}

// Authority is the :authority pseudo-header value for this endpoint.
func (e *Endpoint) Authority() string { return e.authority }

// Pool caches Endpoints and deduplicates concurrent dials for the same
// key using golang.org/x/sync/singleflight, matching the "concurrent
// requests to the same key while negotiation is in progress queue on a
// single-shot notifier" requirement.
type Pool struct {
	mu        sync.Mutex
	endpoints map[string]*Endpoint
	group     singleflight.Group
}

// New returns an empty Pool.
func New() *Pool {
	return &Pool{endpoints: make(map[string]*Endpoint)}
}

// Get returns the Endpoint for opts, dialing and ALPN-negotiating (or,
// for Plain, opening a plaintext h2c connection) if no endpoint for
// this key exists yet. Concurrent Get calls for the same key share one
// dial attempt.
func (p *Pool) Get(ctx context.Context, opts Options) (*Endpoint, error) {
	key := opts.key()

	p.mu.Lock()
	if ep, ok := p.endpoints[key]; ok {
		p.mu.Unlock()
		return ep, nil
	}
	p.mu.Unlock()

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		p.mu.Lock()
		if ep, ok := p.endpoints[key]; ok {
			p.mu.Unlock()
			return ep, nil
		}
		p.mu.Unlock()

		ep, err := dial(ctx, opts)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.endpoints[key] = ep
		p.mu.Unlock()
		return ep, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Endpoint), nil
}

// Evict drops the cached endpoint for opts, forcing the next Get to
// redial. Called when the underlying connection is observed closed.
func (p *Pool) Evict(opts Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.endpoints, opts.key())
}

func dial(ctx context.Context, opts Options) (*Endpoint, error) {
	addr := opts.addr()
	dialTimeout := opts.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 20 * time.Second
	}

	if opts.Plain {
		t := &http2.Transport{
			AllowHTTP: true,
			DialTLS: func(network, addr string, _ *tls.Config) (net.Conn, error) {
				d := net.Dialer{Timeout: dialTimeout}
				return d.DialContext(ctx, network, addr)
			},
			ReadIdleTimeout: opts.Keepalive.Time,
			PingTimeout:     opts.Keepalive.Timeout,
		}
		grpclog.Infof("pool: opened plaintext h2c endpoint to %s", addr)
		return &Endpoint{transport: t, authority: addr}, nil
	}

	if opts.Creds == nil {
		return nil, fmt.Errorf("pool: secure connection to %s requires TransportCredentials", addr)
	}
	t := &http2.Transport{
		DialTLS: func(network, dialAddr string, _ *tls.Config) (net.Conn, error) {
			d := net.Dialer{Timeout: dialTimeout}
			rawConn, err := d.DialContext(ctx, network, dialAddr)
			if err != nil {
				return nil, err
			}
			conn, _, err := opts.Creds.ClientHandshake(ctx, opts.Host, rawConn)
			if err != nil {
				rawConn.Close()
				return nil, fmt.Errorf("pool: TLS handshake with %s failed: %w", dialAddr, err)
			}
			if tc, ok := conn.(*tls.Conn); ok {
				if np := tc.ConnectionState().NegotiatedProtocol; np != "h2" {
					conn.Close()
					return nil, fmt.Errorf("pool: %s negotiated ALPN protocol %q, want \"h2\" (no HTTP/1.1 fallback)", dialAddr, np)
				}
			}
			return conn, nil
		},
		ReadIdleTimeout: opts.Keepalive.Time,
		PingTimeout:     opts.Keepalive.Timeout,
	}
	grpclog.Infof("pool: opened TLS endpoint to %s", addr)
	return &Endpoint{transport: t, authority: addr}, nil
}
