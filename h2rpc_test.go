package h2rpc_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/h2rpc/h2rpc"
	"github.com/h2rpc/h2rpc/codes"
	_ "github.com/h2rpc/h2rpc/encoding/jsoncodec"
	"github.com/h2rpc/h2rpc/examples/math"
	"github.com/h2rpc/h2rpc/metadata"
	"github.com/h2rpc/h2rpc/status"
)

func startMathServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := h2rpc.NewServer(h2rpc.ServerCodec("json"))
	srv.RegisterService(math.ServiceDesc, math.NewServer())
	require.True(t, srv.IsComplete())

	go srv.Serve(lis)
	return lis.Addr().String(), func() { lis.Close() }
}

func dialMath(t *testing.T, addr string) *math.Client {
	t.Helper()
	cc, err := h2rpc.Dial(addr, h2rpc.WithInsecure(), h2rpc.WithCodec("json"))
	require.NoError(t, err)
	return math.NewClient(cc)
}

func TestUnaryDiv(t *testing.T) {
	addr, stop := startMathServer(t)
	defer stop()
	client := dialMath(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := client.Div(ctx, &math.DivRequest{Dividend: 17, Divisor: 5})
	require.NoError(t, err)
	require.EqualValues(t, 3, reply.Quotient)
	require.EqualValues(t, 2, reply.Remainder)
}

func TestUnaryDivByZeroIsInvalidArgument(t *testing.T) {
	addr, stop := startMathServer(t)
	defer stop()
	client := dialMath(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Div(ctx, &math.DivRequest{Dividend: 1, Divisor: 0})
	require.Error(t, err)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServerStreamingFib(t *testing.T) {
	addr, stop := startMathServer(t)
	defer stop()
	client := dialMath(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Fib(ctx, &math.FibRequest{Count: 6})
	require.NoError(t, err)

	var got []int64
	for {
		r, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, r.Value)
	}
	require.Equal(t, []int64{0, 1, 1, 2, 3, 5}, got)
}

func TestClientStreamingSum(t *testing.T) {
	addr, stop := startMathServer(t)
	defer stop()
	client := dialMath(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Sum(ctx)
	require.NoError(t, err)
	for _, n := range []int64{1, 2, 3, 4, 5} {
		require.NoError(t, stream.Send(&math.SumRequest{Addend: n}))
	}
	reply, err := stream.CloseAndRecv()
	require.NoError(t, err)
	require.EqualValues(t, 15, reply.Total)
}

func TestBinaryMetadataRoundTrip(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	echoTrailers := func(srv interface{}, ss h2rpc.ServerStream, info *h2rpc.StreamServerInfo, handler h2rpc.StreamHandler) error {
		if md, ok := metadata.FromIncomingContext(ss.Context()); ok {
			if vals := md.Get("x-trace-bin"); len(vals) > 0 {
				require.NoError(t, ss.SendHeader(metadata.Pairs("x-trace-bin", vals[0])))
			}
		}
		return handler(srv, ss)
	}
	srv := h2rpc.NewServer(h2rpc.ServerCodec("json"), h2rpc.ChainStreamInterceptor(echoTrailers))
	srv.RegisterService(math.ServiceDesc, math.NewServer())
	go srv.Serve(lis)

	cc, err := h2rpc.Dial(lis.Addr().String(), h2rpc.WithInsecure(), h2rpc.WithCodec("json"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = metadata.NewOutgoingContext(ctx, metadata.Pairs("x-trace-bin", string([]byte{0xDE, 0xAD, 0xBE, 0xEF})))

	desc := &h2rpc.StreamDesc{StreamName: "Fib", ServerStreams: true}
	cs, err := cc.NewStream(ctx, desc, "/"+math.ServiceName+"/Fib")
	require.NoError(t, err)
	require.NoError(t, cs.SendMsg(&math.FibRequest{Count: 1}))
	require.NoError(t, cs.CloseSend())

	reply := new(math.FibReply)
	require.NoError(t, cs.RecvMsg(reply))

	hdr, err := cs.Header()
	require.NoError(t, err)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, []byte(hdr.Get("x-trace-bin")[0]))
}

func TestDeadlineExceeded(t *testing.T) {
	addr, stop := startMathServer(t)
	defer stop()
	client := dialMath(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := client.Div(ctx, &math.DivRequest{Dividend: 1, Divisor: 1})
	require.Error(t, err)
	require.Equal(t, codes.DeadlineExceeded, status.Code(err))
}
