// Package status implements errors carrying an h2rpc status code and
// message, the same pair transmitted on the wire as grpc-status/grpc-message.
package status

import (
	"fmt"

	"github.com/h2rpc/h2rpc/codes"
)

// Status is the (code, message) pair that terminates every call.
type Status struct {
	code    codes.Code
	message string
}

// Code returns the status code.
func (s *Status) Code() codes.Code {
	if s == nil {
		return codes.OK
	}
	return s.code
}

// Message returns the status message.
func (s *Status) Message() string {
	if s == nil {
		return ""
	}
	return s.message
}

// Err returns nil if s has code OK, otherwise an error wrapping s.
func (s *Status) Err() error {
	if s == nil || s.code == codes.OK {
		return nil
	}
	return (*statusError)(s)
}

// Error implements error.
func (s *Status) Error() string {
	return fmt.Sprintf("rpc error: code = %s desc = %s", s.code, s.message)
}

// New returns a Status with the given code and message.
func New(c codes.Code, msg string) *Status {
	return &Status{code: c, message: msg}
}

// Newf is New with fmt.Sprintf-formatted message.
func Newf(c codes.Code, format string, a ...interface{}) *Status {
	return New(c, fmt.Sprintf(format, a...))
}

// Error returns an error carrying c and msg, or nil if c is codes.OK.
func Error(c codes.Code, msg string) error {
	return New(c, msg).Err()
}

// Errorf is Error with fmt.Sprintf-formatted message.
func Errorf(c codes.Code, format string, a ...interface{}) error {
	return Error(c, fmt.Sprintf(format, a...))
}

type statusError Status

func (e *statusError) Error() string {
	return (*Status)(e).Error()
}

func (e *statusError) GRPCStatus() *Status {
	return (*Status)(e)
}

// FromError unwraps err into a Status. Errors not produced by this
// package are reported as codes.Unknown, matching the "application
// errors surface as UNKNOWN unless the handler set a specific code"
// rule.
func FromError(err error) (*Status, bool) {
	if err == nil {
		return nil, true
	}
	type grpcStatus interface{ GRPCStatus() *Status }
	if gs, ok := err.(grpcStatus); ok {
		return gs.GRPCStatus(), true
	}
	return New(codes.Unknown, err.Error()), false
}

// Convert is FromError without the ok flag, always returning a non-nil Status.
func Convert(err error) *Status {
	s, _ := FromError(err)
	if s == nil {
		return New(codes.OK, "")
	}
	return s
}

// Code returns the code carried by err, or codes.OK if err is nil, or
// codes.Unknown if err does not carry a Status.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return Convert(err).Code()
}
