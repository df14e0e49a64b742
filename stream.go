package h2rpc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/trace"

	"github.com/h2rpc/h2rpc/codes"
	"github.com/h2rpc/h2rpc/encoding"
	"github.com/h2rpc/h2rpc/internal/frame"
	"github.com/h2rpc/h2rpc/metadata"
	"github.com/h2rpc/h2rpc/pool"
	"github.com/h2rpc/h2rpc/status"
)

// ClientStream is the client's view of one call: a lazy, finite,
// non-restartable outbound message sequence paired with an inbound
// message sequence and a single terminal status.
type ClientStream interface {
	Context() context.Context
	Header() (metadata.MD, error)
	Trailer() metadata.MD
	CloseSend() error
	SendMsg(m interface{}) error
	RecvMsg(m interface{}) error
}

// clientStream implements the per-call state machine: IDLE ->
// HEADERS_SENT -> OPEN -> HALF_CLOSED/CLOSED/CANCELLED.
type clientStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	method string
	desc   *StreamDesc // nil for a unary call
	opts   callOptions
	cc     *ClientConn
	codec  encoding.Codec

	attempt *csAttempt
}

type roundTripResult struct {
	resp *http.Response
	err  error
}

type csAttempt struct {
	cs       *clientStream
	pw       io.WriteCloser
	endpoint *pool.Endpoint
	respCh   chan roundTripResult

	mu         sync.Mutex
	resp       *http.Response
	fr         *frame.Reader
	headerMD   metadata.MD
	trailerMD  metadata.MD
	headerErr  error
	haveHeader bool
	done       bool
	finalErr   error // nil once done means the call completed OK
	tr         trace.EventLog
}

func newClientStream(ctx context.Context, cc *ClientConn, method string, desc *StreamDesc, opts ...CallOption) (*clientStream, error) {
	co := combineCallOptions(opts...)
	if mc, ok := cc.methodConfig(method); ok {
		co.applyMethodConfig(mc)
	}

	if co.rawTimeout != "" {
		if _, err := frame.DecodeInterval(co.rawTimeout); err != nil {
			return nil, status.Errorf(codes.Internal, "h2rpc: malformed grpc-timeout %q: %v", co.rawTimeout, err)
		}
	}

	if outMD, ok := metadata.FromOutgoingContext(ctx); ok {
		co.headers = metadata.Join(outMD, co.headers)
	}

	if cc.opts.perRPC != nil {
		if cc.opts.perRPC.RequireTransportSecurity() && cc.opts.insecure {
			return nil, status.Error(codes.Unauthenticated, "h2rpc: PerRPCCredentials require transport security on a plaintext connection")
		}
		uri := fmt.Sprintf("%s://%s:%d%s", "https", cc.host, cc.port, method)
		extra, err := cc.opts.perRPC.GetRequestMetadata(ctx, uri)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "h2rpc: PerRPCCredentials failed: %v", err)
		}
		if len(extra) > 0 {
			if co.headers == nil {
				co.headers = metadata.MD{}
			}
			for k, v := range extra {
				co.headers.Append(k, v)
			}
		}
	}

	if co.updateHeaders != nil {
		if co.headers == nil {
			co.headers = metadata.MD{}
		}
		if err := co.updateHeaders(fmt.Sprintf("%s:%d", cc.host, cc.port), co.headers); err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "h2rpc: updateHeaders failed: %v", err)
		}
	}

	cctx := ctx
	var cancel context.CancelFunc
	if co.hasDeadline {
		cctx, cancel = context.WithDeadline(ctx, co.deadline)
	} else {
		cctx, cancel = context.WithCancel(ctx)
	}

	codec, err := cc.codec(co.codecName)
	if err != nil {
		cancel()
		return nil, err
	}

	endpoint, err := cc.pool.Get(cctx, cc.poolOptions())
	if err != nil {
		cancel()
		return nil, status.Errorf(codes.Unavailable, "h2rpc: connect failed: %v", err)
	}

	scheme := "https"
	if cc.opts.insecure {
		scheme = "http"
	}
	pr, pw := io.Pipe()
	url := fmt.Sprintf("%s://%s:%d%s", scheme, cc.host, cc.port, method)
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, url, pr)
	if err != nil {
		cancel()
		pw.Close()
		return nil, err
	}
	req.ContentLength = -1
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", cc.opts.userAgent)
	if co.rawTimeout != "" {
		req.Header.Set(hdrGrpcTimeout, co.rawTimeout)
	} else if co.hasDeadline {
		if d, derr := frame.EncodeInterval(time.Until(co.deadline)); derr == nil {
			req.Header.Set(hdrGrpcTimeout, d)
		}
	}
	if err := applyOutgoingMetadata(req.Header, co.headers, cc.opts.insecure); err != nil {
		cancel()
		pw.Close()
		return nil, status.Errorf(codes.Unauthenticated, "%v", err)
	}

	cs := &clientStream{ctx: cctx, cancel: cancel, method: method, desc: desc, opts: co, cc: cc, codec: codec}
	tr := newTraceLog("h2rpc.Sent", method)
	a := &csAttempt{cs: cs, pw: pw, endpoint: endpoint, respCh: make(chan roundTripResult, 1), tr: tr}
	cs.attempt = a
	traceLogf(tr, "dial to %s:%d", cc.host, cc.port)

	if co.parent != nil {
		co.parent.AddChild(a.abort)
	}

	go func() {
		resp, rerr := endpoint.RoundTrip(req)
		a.respCh <- roundTripResult{resp: resp, err: rerr}
	}()
	go a.watchCancellation(cctx)

	return cs, nil
}

// abort terminates the attempt immediately with code, used when a
// parent server call this attempt was registered with as a child is
// itself cancelled or errors.
func (a *csAttempt) abort(code codes.Code) {
	a.mu.Lock()
	if a.done {
		a.mu.Unlock()
		return
	}
	a.done = true
	a.finalErr = status.Error(code, "h2rpc: parent call cancelled")
	traceLogErr(a.tr, a.finalErr)
	traceFinish(a.tr)
	a.mu.Unlock()
	a.pw.Close()
	a.cs.cancel()
}

func (a *csAttempt) watchCancellation(ctx context.Context) {
	<-ctx.Done()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done {
		return
	}
	a.pw.Close()
	if ctx.Err() == context.DeadlineExceeded {
		a.finalErr = status.Error(codes.DeadlineExceeded, "h2rpc: deadline exceeded")
	} else {
		a.finalErr = status.Error(codes.Canceled, "h2rpc: call cancelled")
	}
	a.done = true
	traceLogErr(a.tr, a.finalErr)
	traceFinish(a.tr)
}

// Context returns the call's context, carrying its deadline.
func (cs *clientStream) Context() context.Context { return cs.ctx }

// Header blocks until the response headers (or a Trailers-Only status)
// have arrived, and returns the non-reserved header fields.
func (cs *clientStream) Header() (metadata.MD, error) {
	a := cs.attempt
	a.mu.Lock()
	if a.haveHeader {
		defer a.mu.Unlock()
		return a.headerMD, a.headerErr
	}
	a.mu.Unlock()

	select {
	case r := <-a.respCh:
		a.mu.Lock()
		defer a.mu.Unlock()
		a.haveHeader = true
		if r.err != nil {
			a.headerErr = status.Errorf(codes.Unavailable, "h2rpc: transport error: %v", r.err)
			a.done = true
			a.finalErr = a.headerErr
			traceLogErr(a.tr, a.finalErr)
			traceFinish(a.tr)
			return nil, a.headerErr
		}
		a.resp = r.resp
		a.fr = frame.NewReader(r.resp.Body)
		md, err := extractMetadata(r.resp.Header)
		if err != nil {
			a.headerErr = status.Errorf(codes.Internal, "h2rpc: bad header encoding: %v", err)
			return nil, a.headerErr
		}
		a.headerMD = md
		if st, ok := parseGrpcStatus(r.resp.Header); ok {
			// Trailers-Only response: status travelled on the header block.
			a.trailerMD = md
			a.done = true
			a.finalErr = st.Err()
			traceLogf(a.tr, "status: %s", st.Code())
			traceLogErr(a.tr, a.finalErr)
			traceFinish(a.tr)
		}
		return a.headerMD, nil
	case <-cs.ctx.Done():
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.finalErr == nil {
			if cs.ctx.Err() == context.DeadlineExceeded {
				a.finalErr = status.Error(codes.DeadlineExceeded, "h2rpc: deadline exceeded")
			} else {
				a.finalErr = status.Error(codes.Canceled, "h2rpc: call cancelled")
			}
			a.done = true
		}
		return nil, a.finalErr
	}
}

// Trailer returns the trailing metadata once the call has completed;
// it is empty until then.
func (cs *clientStream) Trailer() metadata.MD {
	a := cs.attempt
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trailerMD
}

// SendMsg marshals m and frames it onto the outbound stream.
func (cs *clientStream) SendMsg(m interface{}) error {
	b, err := cs.codec.Marshal(m)
	if err != nil {
		return status.Errorf(codes.Internal, "h2rpc: marshal failed: %v", err)
	}
	if cs.opts.maxSendSize != nil && len(b) > *cs.opts.maxSendSize {
		return status.Errorf(codes.ResourceExhausted, "h2rpc: message size %d exceeds maxSendSize %d", len(b), *cs.opts.maxSendSize)
	}
	if err := frame.Write(cs.attempt.pw, b, false); err != nil {
		return status.Errorf(codes.Unavailable, "h2rpc: write failed: %v", err)
	}
	return nil
}

// CloseSend half-closes the outbound stream; no more messages may be sent.
func (cs *clientStream) CloseSend() error {
	return cs.attempt.pw.Close()
}

// RecvMsg blocks for the next inbound message. It returns io.EOF when
// the call completed with status OK, or the terminal status error
// otherwise; never both a message and a terminal condition at once.
func (cs *clientStream) RecvMsg(m interface{}) error {
	if _, err := cs.Header(); err != nil {
		return err
	}
	a := cs.attempt

	a.mu.Lock()
	if a.done {
		err := a.finalErr
		a.mu.Unlock()
		if err == nil {
			return io.EOF
		}
		return err
	}
	a.mu.Unlock()

	msg, err := a.fr.ReadMessage()
	if err != nil {
		return cs.finish(err)
	}
	if cs.opts.maxRecvSize != nil && len(msg) > *cs.opts.maxRecvSize {
		cs.cancel()
		return status.Errorf(codes.ResourceExhausted, "h2rpc: message size %d exceeds maxRecvSize %d", len(msg), *cs.opts.maxRecvSize)
	}
	if uerr := cs.codec.Unmarshal(msg, m); uerr != nil {
		cs.cancel()
		return status.Errorf(codes.Internal, "h2rpc: unmarshal failed: %v", uerr)
	}
	return nil
}

// finish is called once the deframer reports the body ended (io.EOF)
// or errored; it computes and caches the terminal status exactly once.
func (cs *clientStream) finish(readErr error) error {
	a := cs.attempt
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done {
		if a.finalErr == nil {
			return io.EOF
		}
		return a.finalErr
	}
	a.done = true

	if readErr != io.EOF {
		a.finalErr = status.Errorf(codes.Internal, "h2rpc: frame decode error: %v", readErr)
		return a.finalErr
	}

	trailerMD, terr := extractMetadata(a.resp.Trailer)
	if terr == nil {
		a.trailerMD = metadata.Join(a.headerMD, trailerMD)
	} else {
		a.trailerMD = a.headerMD
	}
	st, ok := parseGrpcStatus(a.resp.Trailer)
	if !ok {
		// No grpc-status observed anywhere: always synthesize INTERNAL
		// rather than silently treating a dropped connection as success.
		a.finalErr = status.Error(codes.Internal, "h2rpc: server closed the stream without sending trailers")
		traceLogErr(a.tr, a.finalErr)
		traceFinish(a.tr)
		return a.finalErr
	}
	a.finalErr = st.Err()
	traceLogf(a.tr, "status: %s", st.Code())
	traceLogErr(a.tr, a.finalErr)
	traceFinish(a.tr)
	if a.finalErr == nil {
		return io.EOF
	}
	return a.finalErr
}
