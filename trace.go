package h2rpc

import (
	"golang.org/x/net/trace"
)

// EnableTracing controls whether client and server calls register an
// event log visible under /debug/events.
var EnableTracing = true

func newTraceLog(family, title string) trace.EventLog {
	if !EnableTracing {
		return nil
	}
	return trace.NewEventLog(family, title)
}

func traceLogf(tr trace.EventLog, format string, a ...interface{}) {
	if tr != nil {
		tr.Printf(format, a...)
	}
}

func traceLogErr(tr trace.EventLog, err error) {
	if tr != nil && err != nil {
		tr.Errorf("%v", err)
	}
}

func traceFinish(tr trace.EventLog) {
	if tr != nil {
		tr.Finish()
	}
}
