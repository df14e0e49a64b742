// Package keepalive defines configurable parameters for point-to-point
// healthcheck pings on an h2rpc connection.
package keepalive

import "time"

// ClientParameters configures how a client actively probes a connection
// to notice when it has gone dead, and sends pings so intermediaries
// stay aware of its liveness.
type ClientParameters struct {
	// Time is the idle duration after which the client pings the
	// server to check the transport is still alive. Default: infinity.
	Time time.Duration
	// Timeout is how long the client waits for a ping ack before
	// considering the connection dead. Default: 20 seconds.
	Timeout time.Duration
	// PermitWithoutStream, if true, keeps keepalive pings running even
	// with no active calls. Default: false.
	PermitWithoutStream bool
}

// ServerParameters configures keepalive and max-age behavior on the
// server side.
type ServerParameters struct {
	// MaxConnectionIdle closes an idle connection with a GoAway after
	// this long. Default: infinity.
	MaxConnectionIdle time.Duration
	// MaxConnectionAge closes any connection (with a GoAway, jittered
	// +/-10%) after this long regardless of activity. Default: infinity.
	MaxConnectionAge time.Duration
	// MaxConnectionAgeGrace is additional time after MaxConnectionAge
	// before the connection is forcibly closed. Default: infinity.
	MaxConnectionAgeGrace time.Duration
	// Time is the idle duration after which the server pings the
	// client. Default: 2 hours.
	Time time.Duration
	// Timeout is how long the server waits for a ping ack. Default: 20s.
	Timeout time.Duration
}
