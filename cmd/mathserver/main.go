// Command mathserver runs the demo Math service over plaintext h2c.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/h2rpc/h2rpc"
	_ "github.com/h2rpc/h2rpc/encoding/jsoncodec"
	"github.com/h2rpc/h2rpc/examples/math"
	"github.com/h2rpc/h2rpc/grpclog"
)

func main() {
	var addr string
	cmd := &cobra.Command{
		Use:   "mathserver",
		Short: "Run the demo Math service",
		RunE: func(cmd *cobra.Command, args []string) error {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := h2rpc.NewServer(h2rpc.ServerCodec("json"))
			srv.RegisterService(math.ServiceDesc, math.NewServer())
			grpclog.Infof("mathserver: listening on %s", addr)
			return srv.Serve(lis)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":50051", "address to listen on")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
