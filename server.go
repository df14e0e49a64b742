package h2rpc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/net/trace"

	"github.com/h2rpc/h2rpc/codes"
	"github.com/h2rpc/h2rpc/credentials"
	"github.com/h2rpc/h2rpc/encoding"
	"github.com/h2rpc/h2rpc/grpclog"
	"github.com/h2rpc/h2rpc/internal/frame"
	"github.com/h2rpc/h2rpc/metadata"
	"github.com/h2rpc/h2rpc/status"
)

// ServerStream is the server's view of one call: reads arrive in
// client-send order, each SendMsg is a unit of outbound metadata-then-
// data, and the trailer status is emitted exactly once when the
// handler returns.
type ServerStream interface {
	Context() context.Context
	SetHeader(md metadata.MD) error
	SendHeader(md metadata.MD) error
	SetTrailer(md metadata.MD)
	SendMsg(m interface{}) error
	RecvMsg(m interface{}) error
	// AddChild registers an outbound client call attached to this
	// request as a child: cancel is invoked with the appropriate code
	// if this request is cancelled or errors before completing
	// normally. If the request has already finished when AddChild is
	// called, cancel is invoked immediately.
	AddChild(cancel func(codes.Code))
}

// Server dispatches incoming calls to the routes registered in its App.
type Server struct {
	opts serverOptions
	app  *App
}

// NewServer returns a Server with no services registered yet.
func NewServer(opts ...ServerOption) *Server {
	so := defaultServerOptions()
	for _, o := range opts {
		o(&so)
	}
	return &Server{opts: so, app: NewApp()}
}

// RegisterService declares desc and wires every one of its methods and
// streams to impl. Panics on a duplicate service name, matching the
// "construction-time invariant, not a runtime condition" treatment of
// a programmer error.
func (s *Server) RegisterService(desc *ServiceDesc, impl interface{}) {
	if err := s.app.Declare(desc); err != nil {
		panic(err)
	}
	for i := range desc.Methods {
		m := &desc.Methods[i]
		route := "/" + desc.ServiceName + "/" + m.MethodName
		if err := s.app.RegisterUnary(route, impl, m); err != nil {
			panic(err)
		}
	}
	for i := range desc.Streams {
		st := &desc.Streams[i]
		route := "/" + desc.ServiceName + "/" + st.StreamName
		if err := s.app.RegisterStream(route, impl, st); err != nil {
			panic(err)
		}
	}
}

// IsComplete reports whether every declared route has a registered handler.
func (s *Server) IsComplete() bool { return s.app.IsComplete() }

// Serve accepts connections on lis, each speaking HTTP/2. With no
// credentials configured, connections are served as plaintext h2c via
// golang.org/x/net/http2/h2c; otherwise every accepted connection
// first goes through the server-side credentials handshake and is
// then served as a native HTTP/2 connection.
func (s *Server) Serve(lis net.Listener) error {
	h2s := &http2.Server{
		IdleTimeout: s.opts.keepaliveSP.MaxConnectionIdle,
	}
	handler := http.HandlerFunc(s.handleHTTP)
	httpSrv := &http.Server{Handler: handler}

	if s.opts.creds == nil {
		httpSrv.Handler = h2c.NewHandler(handler, h2s)
		return httpSrv.Serve(lis)
	}
	if err := http2.ConfigureServer(httpSrv, h2s); err != nil {
		return err
	}
	return httpSrv.Serve(&handshakeListener{Listener: lis, creds: s.opts.creds})
}

// handshakeListener runs every accepted connection through the
// server-side credentials handshake before handing it to net/http; a
// connection that fails the handshake is dropped, not fatal to Serve.
type handshakeListener struct {
	net.Listener
	creds credentials.TransportCredentials
}

func (l *handshakeListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}
		tconn, _, err := l.creds.ServerHandshake(conn)
		if err != nil {
			grpclog.Warningf("h2rpc: server handshake failed: %v", err)
			conn.Close()
			continue
		}
		return tconn, nil
	}
}

func (s *Server) codec(name string) (encoding.Codec, error) {
	if name == "" {
		name = s.opts.codecName
	}
	c := encoding.GetCodec(name)
	if c == nil {
		return nil, fmt.Errorf("h2rpc: no codec registered for %q", name)
	}
	return c, nil
}

// handleHTTP is the C4 dispatcher and C6 server call engine entry
// point: one call per HTTP/2 request.
func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	entry := s.app.lookup(r.URL.Path)
	if entry == nil {
		w.Header().Set(hdrGrpcStatus, "12") // Unimplemented, Trailers-Only
		w.Header().Set(hdrGrpcMessage, encodeGrpcMessage(fmt.Sprintf("unknown route %q", r.URL.Path)))
		return
	}

	ctx := r.Context()
	var cancel context.CancelFunc
	if raw := r.Header.Get(hdrGrpcTimeout); raw != "" {
		d, derr := frame.DecodeInterval(raw)
		if derr != nil {
			w.Header().Set(hdrGrpcStatus, "13") // Internal, Trailers-Only: malformed grpc-timeout
			w.Header().Set(hdrGrpcMessage, encodeGrpcMessage(fmt.Sprintf("malformed grpc-timeout %q: %v", raw, derr)))
			return
		}
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	md, err := extractMetadata(r.Header)
	if err != nil {
		w.Header().Set(hdrGrpcStatus, "13")
		w.Header().Set(hdrGrpcMessage, encodeGrpcMessage("bad header encoding"))
		return
	}
	if len(md) > 0 {
		ctx = metadata.NewIncomingContext(ctx, md)
	}

	codec, err := s.codec("")
	if err != nil {
		w.Header().Set(hdrGrpcStatus, "13")
		w.Header().Set(hdrGrpcMessage, encodeGrpcMessage(err.Error()))
		return
	}

	ss := &serverStream{
		ctx:   ctx,
		w:     w,
		fr:    frame.NewReader(r.Body),
		codec: codec,
		tr:    newTraceLog("h2rpc.Recv", r.URL.Path),
	}

	var handlerErr error
	if entry.method != nil {
		handlerErr = s.runUnary(ss, entry, r.URL.Path)
	} else {
		handlerErr = s.runStream(ss, entry, r.URL.Path)
	}

	st := status.Convert(handlerErr)
	traceLogf(ss.tr, "status: %s", st.Code())
	traceLogErr(ss.tr, handlerErr)
	traceFinish(ss.tr)
	ss.finish(st)
}

func (s *Server) runUnary(ss *serverStream, entry *routeEntry, fullMethod string) error {
	dec := func(v interface{}) error { return ss.RecvMsg(v) }
	var interceptor UnaryServerInterceptor
	if chain := chainUnaryInterceptors(s.opts.unaryInts); chain != nil {
		interceptor = chain
	}
	reply, err := entry.method.Handler(entry.serviceImpl, ss.ctx, dec, interceptor)
	if err != nil {
		return err
	}
	return ss.SendMsg(reply)
}

func (s *Server) runStream(ss *serverStream, entry *routeEntry, fullMethod string) error {
	info := &StreamServerInfo{
		FullMethod:    fullMethod,
		ServerStreams: entry.stream.ServerStreams,
		ClientStreams: entry.stream.ClientStreams,
	}
	handler := entry.stream.Handler
	if chain := chainStreamInterceptors(s.opts.streamInts); chain != nil {
		return chain(entry.serviceImpl, ss, info, handler)
	}
	return handler(entry.serviceImpl, ss)
}

// serverStream is the concrete ServerStream implementation backing
// every call dispatched by Server.
type serverStream struct {
	ctx   context.Context
	w     http.ResponseWriter
	fr    *frame.Reader
	codec encoding.Codec

	mu                sync.Mutex
	headerMD          metadata.MD
	trailerMD         metadata.MD
	headerSent        bool
	done              bool
	tr                trace.EventLog
	children          []func(codes.Code)
	childrenWatching  bool
	childrenCancelled bool
}

func (ss *serverStream) Context() context.Context { return ss.ctx }

// AddChild registers cancel as a child of this call. If the call's
// context is already done, or a non-OK status has already been
// finalized, cancel fires immediately with the corresponding code;
// otherwise a watcher goroutine is started (once) to fire it when the
// request is cancelled.
func (ss *serverStream) AddChild(cancel func(codes.Code)) {
	ss.mu.Lock()
	if ss.childrenCancelled {
		ss.mu.Unlock()
		cancel(codes.Canceled)
		return
	}
	if ss.ctx.Err() != nil {
		ss.mu.Unlock()
		cancel(childCancelCode(ss.ctx.Err()))
		return
	}
	ss.children = append(ss.children, cancel)
	if !ss.childrenWatching {
		ss.childrenWatching = true
		go ss.watchChildren()
	}
	ss.mu.Unlock()
}

func (ss *serverStream) watchChildren() {
	<-ss.ctx.Done()
	ss.cancelChildren(childCancelCode(ss.ctx.Err()))
}

// cancelChildren fires every registered child exactly once, with code
// propagated for a context cancellation/deadline and codes.Canceled
// for any other non-OK completion ("CANCELLED for error").
func (ss *serverStream) cancelChildren(code codes.Code) {
	ss.mu.Lock()
	if ss.childrenCancelled {
		ss.mu.Unlock()
		return
	}
	ss.childrenCancelled = true
	children := ss.children
	ss.mu.Unlock()
	for _, c := range children {
		c(code)
	}
}

func childCancelCode(err error) codes.Code {
	if err == context.DeadlineExceeded {
		return codes.DeadlineExceeded
	}
	return codes.Canceled
}

// SetHeader accumulates md to be sent with the first response header
// block; it is an error to call after SendHeader or the first SendMsg.
func (ss *serverStream) SetHeader(md metadata.MD) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.headerSent {
		return fmt.Errorf("h2rpc: SetHeader called after headers were already sent")
	}
	ss.headerMD = metadata.Join(ss.headerMD, md)
	return nil
}

// SendHeader flushes md (merged with any SetHeader metadata) as the
// response header block immediately.
func (ss *serverStream) SendHeader(md metadata.MD) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.headerMD = metadata.Join(ss.headerMD, md)
	return ss.sendHeaderLocked()
}

func (ss *serverStream) sendHeaderLocked() error {
	if ss.headerSent {
		return nil
	}
	ss.w.Header().Set("Content-Type", contentType)
	if err := applyOutgoingMetadata(ss.w.Header(), ss.headerMD, false); err != nil {
		return err
	}
	ss.w.WriteHeader(http.StatusOK)
	if f, ok := ss.w.(http.Flusher); ok {
		f.Flush()
	}
	ss.headerSent = true
	return nil
}

// SetTrailer accumulates md to be sent with the terminal status trailer.
func (ss *serverStream) SetTrailer(md metadata.MD) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.trailerMD = metadata.Join(ss.trailerMD, md)
}

// SendMsg marshals m, sending the header block first if it has not
// gone out yet, then frames and writes m onto the response body.
func (ss *serverStream) SendMsg(m interface{}) error {
	ss.mu.Lock()
	if err := ss.sendHeaderLocked(); err != nil {
		ss.mu.Unlock()
		return err
	}
	ss.mu.Unlock()

	b, err := ss.codec.Marshal(m)
	if err != nil {
		return status.Errorf(codes.Internal, "h2rpc: marshal failed: %v", err)
	}
	if err := frame.Write(ss.w, b, false); err != nil {
		return status.Errorf(codes.Unavailable, "h2rpc: write failed: %v", err)
	}
	if f, ok := ss.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// RecvMsg blocks for the next inbound message from the client.
func (ss *serverStream) RecvMsg(m interface{}) error {
	msg, err := ss.fr.ReadMessage()
	if err != nil {
		return err
	}
	return ss.codec.Unmarshal(msg, m)
}

// finish sends the header block (if not already sent, covering a
// handler that returned without ever calling SendMsg) and the
// terminal status trailer, exactly once.
func (ss *serverStream) finish(st *status.Status) {
	ss.mu.Lock()
	if ss.done {
		ss.mu.Unlock()
		return
	}
	ss.done = true
	if !ss.headerSent {
		_ = ss.sendHeaderLocked()
	}
	if len(ss.trailerMD) > 0 {
		for k, values := range ss.trailerMD {
			if metadata.IsReservedHeader(k) {
				continue
			}
			for _, v := range values {
				name, value := metadata.RemoveBinValuesString(k, v)
				ss.w.Header().Add(http.TrailerPrefix+name, value)
			}
		}
	}
	setGrpcStatusTrailer(ss.w.Header(), st)
	ss.mu.Unlock()

	// A non-OK terminal status is this request's "error": cancel any
	// attached children with CANCELLED, unless the context watcher
	// already cancelled them with a more specific code.
	if st.Code() != codes.OK {
		ss.cancelChildren(codes.Canceled)
	}
}
