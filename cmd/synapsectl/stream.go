package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sciencecorp/synapse-cpp/internal/status"
	"github.com/sciencecorp/synapse-cpp/internal/stream"
)

func newStreamCmd() *cobra.Command {
	var (
		bindHost      string
		port          int
		multicast     bool
		statsInterval time.Duration
		nodeID        uint32
		flags         = &deviceFlags{}
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Bind a stream sink and print decoded records and packet statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sink *stream.Sink
			if cmd.Flags().Changed("node-id") {
				devHost, devPort, timeout := flags.resolve()
				dev, err := dialDevice(context.Background(), devHost, devPort, timeout)
				if err != nil {
					return err
				}
				defer dev.Disconnect()
				if _, st := dev.Info(context.Background(), timeout); !st.Ok() {
					return fmt.Errorf("info: %v", st)
				}
				s, st := stream.NewSinkForDevice(dev, nodeID, multicast)
				if !st.Ok() {
					return fmt.Errorf("bind device-assigned sink: %v", st)
				}
				sink = s
			} else {
				sink = stream.NewSink(stream.Destination{Host: bindHost, Port: uint16(port), Multicast: multicast})
			}
			defer sink.Close()

			nextStats := time.Now().Add(statsInterval)
			for {
				bb, sp, _, n, st := sink.Read()
				switch {
				case st.Ok():
					if bb != nil {
						fmt.Printf("broadband seq=%d bytes=%d channels=%d\n", bb.SeqNumber, n, len(bb.Channels))
					} else if sp != nil {
						fmt.Printf("spiketrain seq=%d bytes=%d bins=%d\n", sp.SeqNumber, n, len(sp.SpikeCounts))
					}
				case st.Code == status.Unavailable:
					// no datagram this poll; fall through to the stats check
				default:
					return fmt.Errorf("read: %v", st)
				}

				if time.Now().After(nextStats) {
					fmt.Println(sink.Stats.PrintStats())
					nextStats = time.Now().Add(statsInterval)
				}
			}
		},
	}

	cmd.Flags().StringVar(&bindHost, "bind-host", "0.0.0.0", "local address (or multicast group) to bind")
	cmd.Flags().IntVar(&port, "port", int(stream.DefaultSinkPort), "listen port")
	cmd.Flags().BoolVar(&multicast, "multicast", false, "join bind-host as a multicast group")
	cmd.Flags().DurationVar(&statsInterval, "stats-interval", 5*time.Second, "how often to print packet statistics")
	cmd.Flags().Uint32Var(&nodeID, "node-id", 0, "bind to this node's device-assigned socket instead of --bind-host/--port")
	cmd.Flags().StringVar(&flags.host, "device-host", "", "device RPC host, used with --node-id (default: config file)")
	cmd.Flags().IntVar(&flags.port, "device-port", 0, "device RPC port, used with --node-id (default: config file)")
	cmd.Flags().DurationVar(&flags.timeout, "device-timeout", 0, "device RPC timeout, used with --node-id (default: config file)")
	return cmd
}
