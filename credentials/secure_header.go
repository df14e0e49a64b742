package credentials

import (
	"fmt"
	"sync/atomic"

	"github.com/h2rpc/h2rpc/metadata"
)

// SecureHeaderPolicy governs what happens when a known-secure header
// (e.g. "authorization") is about to be sent on a plaintext connection.
type SecureHeaderPolicy int

const (
	// Fail rejects the call with an error. This is the default.
	Fail SecureHeaderPolicy = iota
	// Drop silently strips the header and lets the call proceed.
	Drop
	// Warn allows the header through, logging a warning.
	Warn
)

func (p SecureHeaderPolicy) String() string {
	switch p {
	case Fail:
		return "FAIL"
	case Drop:
		return "DROP"
	case Warn:
		return "WARN"
	default:
		return "UNKNOWN"
	}
}

// policy is process-wide: set at start-up, read on every outbound header.
var policy atomic.Value

func init() {
	policy.Store(Fail)
}

// SetSecureHeaderPolicy sets the process-wide policy. It is intended to
// be called once during process start-up.
func SetSecureHeaderPolicy(p SecureHeaderPolicy) {
	policy.Store(p)
}

// GetSecureHeaderPolicy returns the current process-wide policy.
func GetSecureHeaderPolicy() SecureHeaderPolicy {
	return policy.Load().(SecureHeaderPolicy)
}

// ErrSecureHeaderOnPlaintext is returned when Fail policy blocks a
// known-secure header on an insecure connection.
type ErrSecureHeaderOnPlaintext struct {
	Header string
}

func (e *ErrSecureHeaderOnPlaintext) Error() string {
	return fmt.Sprintf("credentials: header %q may not be sent on an insecure connection (policy FAIL)", e.Header)
}

// BlockSecureHeader applies the process-wide secure-header policy to a
// single outgoing header destined for a plaintext connection. It
// returns the (possibly unmodified) values to send, whether the header
// should be dropped, and an error if the policy is FAIL.
func BlockSecureHeader(name string, values []string) (out []string, drop bool, err error) {
	if !metadata.IsKnownSecureHeader(name) {
		return values, false, nil
	}
	switch GetSecureHeaderPolicy() {
	case Drop:
		return nil, true, nil
	case Warn:
		return values, false, nil
	default: // Fail
		return nil, true, &ErrSecureHeaderOnPlaintext{Header: name}
	}
}
