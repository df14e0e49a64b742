package pool

import "sync/atomic"

// DoneInfo records the outcome of one completed call against an
// endpoint, adapted from the balancer-facing call-completion record
// real gRPC implementations feed into load-balancing decisions. This
// pool has no multi-address balancing, so DoneInfo here only feeds an
// internal health counter.
type DoneInfo struct {
	Err           error
	BytesSent     int64
	BytesReceived int64
}

// stats accumulates per-endpoint call counters.
type stats struct {
	calls  int64
	errors int64
}

func (s *stats) record(d DoneInfo) {
	atomic.AddInt64(&s.calls, 1)
	if d.Err != nil {
		atomic.AddInt64(&s.errors, 1)
	}
}

// Healthy reports whether the endpoint's recent error rate is low
// enough to keep using without forcing a fresh dial. A endpoint with
// fewer than 8 calls is always considered healthy.
func (s *stats) Healthy() bool {
	calls := atomic.LoadInt64(&s.calls)
	if calls < 8 {
		return true
	}
	errors := atomic.LoadInt64(&s.errors)
	return errors*4 < calls // error rate below 25%
}
