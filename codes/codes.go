// Package codes defines the canonical RPC status codes used by h2rpc.
package codes

import "strconv"

// Code is a status code as defined by the h2rpc wire protocol.
type Code uint32

const (
	// OK means the call completed successfully.
	OK Code = iota
	// Canceled means the call was cancelled, typically by the caller.
	Canceled
	// Unknown covers errors raised by handlers that did not set a code,
	// and errors with an unrecognized status on the wire.
	Unknown
	// InvalidArgument means the client specified an invalid argument.
	InvalidArgument
	// DeadlineExceeded means the deadline expired before the call completed.
	DeadlineExceeded
	// NotFound means a requested entity was not found.
	NotFound
	// AlreadyExists means the entity a client tried to create already exists.
	AlreadyExists
	// PermissionDenied means the caller lacks permission.
	PermissionDenied
	// ResourceExhausted means a resource has been exhausted.
	ResourceExhausted
	// FailedPrecondition means the system is not in a state required for the call.
	FailedPrecondition
	// Aborted means the operation was aborted.
	Aborted
	// OutOfRange means the operation was attempted past the valid range.
	OutOfRange
	// Unimplemented means the method is not implemented on this server.
	Unimplemented
	// Internal means an invariant the protocol depends on was violated.
	Internal
	// Unavailable means the service is currently unavailable.
	Unavailable
	// DataLoss means unrecoverable data loss or corruption occurred.
	DataLoss
	// Unauthenticated means the request lacks valid authentication credentials.
	Unauthenticated

	_maxCode
)

var codeNames = [...]string{
	OK:                  "OK",
	Canceled:             "CANCELLED",
	Unknown:              "UNKNOWN",
	InvalidArgument:      "INVALID_ARGUMENT",
	DeadlineExceeded:     "DEADLINE_EXCEEDED",
	NotFound:             "NOT_FOUND",
	AlreadyExists:        "ALREADY_EXISTS",
	PermissionDenied:     "PERMISSION_DENIED",
	ResourceExhausted:    "RESOURCE_EXHAUSTED",
	FailedPrecondition:   "FAILED_PRECONDITION",
	Aborted:              "ABORTED",
	OutOfRange:           "OUT_OF_RANGE",
	Unimplemented:        "UNIMPLEMENTED",
	Internal:             "INTERNAL",
	Unavailable:          "UNAVAILABLE",
	DataLoss:             "DATA_LOSS",
	Unauthenticated:      "UNAUTHENTICATED",
}

// String returns the canonical name of c, e.g. "NOT_FOUND".
func (c Code) String() string {
	if c >= _maxCode {
		return "CODE(" + strconv.FormatUint(uint64(c), 10) + ")"
	}
	return codeNames[c]
}
