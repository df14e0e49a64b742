// Package credentials implements transport security and per-call
// credential hooks for h2rpc: the authentication handshake a client
// performs before a connection is handed to the pool, and the
// mutation a per-call credential applies to outgoing headers.
package credentials

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// alpnProtoStr is the only application-layer protocol this runtime
// negotiates. There is no HTTP/1.1 fallback.
var alpnProtoStr = []string{"h2"}

// PerRPCCredentials attaches security metadata to every call, e.g. an
// OAuth2 bearer token.
type PerRPCCredentials interface {
	// GetRequestMetadata returns headers to attach to the outgoing
	// call whose target is uri.
	GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error)
	// RequireTransportSecurity reports whether these credentials must
	// not be sent over a plaintext connection.
	RequireTransportSecurity() bool
}

// ProtocolInfo describes the security protocol in effect on a connection.
type ProtocolInfo struct {
	SecurityProtocol string
	SecurityVersion  string
	ServerName       string
}

// AuthInfo is implemented by the per-connection authentication result.
type AuthInfo interface {
	AuthType() string
}

// ErrConnDispatched indicates the raw connection has been handed off
// and the caller must not close it.
var ErrConnDispatched = errors.New("credentials: rawConn is dispatched out of h2rpc")

// TransportCredentials performs the authentication handshake for a
// connection, on both the client and server side.
type TransportCredentials interface {
	ClientHandshake(ctx context.Context, authority string, rawConn net.Conn) (net.Conn, AuthInfo, error)
	ServerHandshake(rawConn net.Conn) (net.Conn, AuthInfo, error)
	Info() ProtocolInfo
	Clone() TransportCredentials
	OverrideServerName(string) error
}

// TLSInfo is the AuthInfo for a TLS-authenticated connection.
type TLSInfo struct {
	State tls.ConnectionState
}

// AuthType implements AuthInfo.
func (t TLSInfo) AuthType() string { return "tls" }

type tlsCreds struct {
	config *tls.Config
}

func (c *tlsCreds) Info() ProtocolInfo {
	return ProtocolInfo{
		SecurityProtocol: "tls",
		SecurityVersion:  "1.2",
		ServerName:       c.config.ServerName,
	}
}

func (c *tlsCreds) ClientHandshake(ctx context.Context, authority string, rawConn net.Conn) (net.Conn, AuthInfo, error) {
	cfg := c.config.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = stripPort(authority)
	}
	conn := tls.Client(rawConn, cfg)
	errCh := make(chan error, 1)
	go func() { errCh <- conn.Handshake() }()
	select {
	case err := <-errCh:
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
	case <-ctx.Done():
		conn.Close()
		return nil, nil, ctx.Err()
	}
	return conn, TLSInfo{conn.ConnectionState()}, nil
}

func (c *tlsCreds) ServerHandshake(rawConn net.Conn) (net.Conn, AuthInfo, error) {
	conn := tls.Server(rawConn, c.config)
	if err := conn.Handshake(); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, TLSInfo{conn.ConnectionState()}, nil
}

func (c *tlsCreds) Clone() TransportCredentials {
	return NewTLS(c.config)
}

func (c *tlsCreds) OverrideServerName(serverNameOverride string) error {
	c.config.ServerName = serverNameOverride
	return nil
}

func stripPort(authority string) string {
	if i := strings.LastIndex(authority, ":"); i != -1 {
		return authority[:i]
	}
	return authority
}

// NewTLS constructs TransportCredentials from a *tls.Config, forcing
// ALPN negotiation down to "h2" only — there is no HTTP/1.1 fallback.
func NewTLS(c *tls.Config) TransportCredentials {
	cfg := c.Clone()
	cfg.NextProtos = alpnProtoStr
	return &tlsCreds{config: cfg}
}

// NewClientTLSFromCert constructs client TLS credentials from a cert pool.
func NewClientTLSFromCert(cp *x509.CertPool, serverNameOverride string) TransportCredentials {
	return NewTLS(&tls.Config{ServerName: serverNameOverride, RootCAs: cp})
}

// NewClientTLSFromFile constructs client TLS credentials from a PEM file.
func NewClientTLSFromFile(certFile, serverNameOverride string) (TransportCredentials, error) {
	b, err := os.ReadFile(certFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(b) {
		return nil, fmt.Errorf("credentials: failed to append certificates from %q", certFile)
	}
	return NewTLS(&tls.Config{ServerName: serverNameOverride, RootCAs: cp}), nil
}

// NewServerTLSFromCert constructs server TLS credentials from a certificate.
func NewServerTLSFromCert(cert *tls.Certificate) TransportCredentials {
	return NewTLS(&tls.Config{Certificates: []tls.Certificate{*cert}})
}

// NewServerTLSFromFile constructs server TLS credentials from a cert/key pair.
func NewServerTLSFromFile(certFile, keyFile string) (TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return NewTLS(&tls.Config{Certificates: []tls.Certificate{cert}}), nil
}
