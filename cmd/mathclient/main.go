// Command mathclient drives the demo Math service: a unary Div call,
// a server-streamed Fib call, and a client-streamed Sum call.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/h2rpc/h2rpc"
	_ "github.com/h2rpc/h2rpc/encoding/jsoncodec"
	"github.com/h2rpc/h2rpc/examples/math"
)

func main() {
	var addr string
	cmd := &cobra.Command{
		Use:   "mathclient",
		Short: "Drive the demo Math service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:50051", "server address")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr string) error {
	cc, err := h2rpc.Dial(addr, h2rpc.WithInsecure(), h2rpc.WithCodec("json"))
	if err != nil {
		return err
	}
	client := math.NewClient(cc)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	div, err := client.Div(ctx, &math.DivRequest{Dividend: 17, Divisor: 5})
	if err != nil {
		return err
	}
	fmt.Printf("Div(17, 5) = %d remainder %d\n", div.Quotient, div.Remainder)

	fib, err := client.Fib(ctx, &math.FibRequest{Count: 8})
	if err != nil {
		return err
	}
	fmt.Print("Fib(8) =")
	for {
		r, err := fib.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf(" %d", r.Value)
	}
	fmt.Println()

	sum, err := client.Sum(ctx)
	if err != nil {
		return err
	}
	for _, n := range []int64{1, 2, 3, 4, 5} {
		if err := sum.Send(&math.SumRequest{Addend: n}); err != nil {
			return err
		}
	}
	total, err := sum.CloseAndRecv()
	if err != nil {
		return err
	}
	fmt.Printf("Sum(1..5) = %d\n", total.Total)
	return nil
}
