package h2rpc

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/h2rpc/h2rpc/codes"
	"github.com/h2rpc/h2rpc/internal/frame"
	"github.com/h2rpc/h2rpc/status"
)

func TestAddChildFiresImmediatelyWhenAlreadyDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ss := &serverStream{ctx: ctx}

	got := make(chan codes.Code, 1)
	ss.AddChild(func(c codes.Code) { got <- c })

	select {
	case c := <-got:
		require.Equal(t, codes.Canceled, c)
	case <-time.After(time.Second):
		t.Fatal("AddChild did not fire for an already-cancelled context")
	}
}

func TestAddChildFiresOnDeadlineExceeded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	ss := &serverStream{ctx: ctx}

	got := make(chan codes.Code, 1)
	ss.AddChild(func(c codes.Code) { got <- c })

	select {
	case c := <-got:
		require.Equal(t, codes.DeadlineExceeded, c)
	case <-time.After(time.Second):
		t.Fatal("AddChild did not fire once the context deadline passed")
	}
}

func TestCancelChildrenFiresEachChildOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ss := &serverStream{ctx: ctx}

	var got []codes.Code
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		ss.AddChild(func(c codes.Code) {
			got = append(got, c)
			done <- struct{}{}
		})
	}

	ss.cancelChildren(codes.Canceled)
	ss.cancelChildren(codes.Internal) // second call must be a no-op

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("not all children fired")
		}
	}
	require.Len(t, got, 2)
	require.Equal(t, codes.Canceled, got[0])
	require.Equal(t, codes.Canceled, got[1])
}

func TestFinishCancelsChildrenOnNonOKStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ss := &serverStream{ctx: ctx}
	ss.w = httptest.NewRecorder()

	got := make(chan codes.Code, 1)
	ss.AddChild(func(c codes.Code) { got <- c })

	ss.finish(status.New(codes.Internal, "boom"))

	select {
	case c := <-got:
		require.Equal(t, codes.Canceled, c)
	case <-time.After(time.Second):
		t.Fatal("finish with a non-OK status did not cancel children")
	}
}

func TestWithGrpcTimeoutRejectsMalformedInterval(t *testing.T) {
	co := combineCallOptions(WithGrpcTimeout("not-an-interval"))
	require.Equal(t, "not-an-interval", co.rawTimeout)
	// newClientStream validates rawTimeout via this same decode call
	// before any network I/O; exercised directly here since reaching
	// newClientStream's check requires a dialed ClientConn.
	_, err := frame.DecodeInterval(co.rawTimeout)
	require.Error(t, err)
}

func TestWithGrpcTimeoutAcceptsValidInterval(t *testing.T) {
	co := combineCallOptions(WithGrpcTimeout("250000u"))
	d, err := frame.DecodeInterval(co.rawTimeout)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, d)
}

func TestMalformedGrpcTimeoutRejectsCallWithoutInvokingHandler(t *testing.T) {
	called := false
	handler := func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor UnaryServerInterceptor) (interface{}, error) {
		called = true
		return &struct{}{}, nil
	}
	desc := &ServiceDesc{
		ServiceName: "Test",
		Methods:     []MethodDesc{{MethodName: "Echo", Handler: handler}},
	}
	srv := NewServer()
	srv.RegisterService(desc, struct{}{})

	req := httptest.NewRequest("POST", "/Test/Echo", nil)
	req.Header.Set(hdrGrpcTimeout, "garbage")
	rec := httptest.NewRecorder()

	srv.handleHTTP(rec, req)

	require.False(t, called, "handler must not run when grpc-timeout is malformed")
	require.Equal(t, "13", rec.Header().Get(hdrGrpcStatus))
	require.NotEmpty(t, rec.Header().Get(hdrGrpcMessage))
}
