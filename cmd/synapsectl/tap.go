package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sciencecorp/synapse-cpp/internal/status"
	"github.com/sciencecorp/synapse-cpp/internal/tap"
)

// newTapCmd builds the "tap" command group: a producer subcommand that
// prints frames the device publishes, and a consumer subcommand that
// publishes one frame read from stdin, both per §4.10's opaque
// pub/sub channel.
func newTapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tap",
		Short: "Connect to the device's opaque pub/sub tap",
	}
	cmd.AddCommand(newTapProducerCmd())
	cmd.AddCommand(newTapConsumerCmd())
	return cmd
}

func newTapProducerCmd() *cobra.Command {
	var (
		advertisedHost string
		port           int
		deviceHost     string
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "producer",
		Short: "Subscribe to the device's advertised tap endpoint and print frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, devHost := advertisedHost, deviceHost
			if devHost == "" && appConfig != nil {
				devHost = appConfig.Device.Host
			}
			t := tap.NewProducerTap(host, uint16(port), devHost)
			if st := t.Connect(context.Background()); !st.Ok() {
				return fmt.Errorf("tap connect: %v", st)
			}
			defer t.Close()

			for {
				frame, st := t.Receive(timeout)
				switch {
				case st.Ok():
					fmt.Printf("frame: %d bytes\n", len(frame))
				case st.Code == status.DeadlineExceeded:
					continue
				default:
					return fmt.Errorf("tap receive: %v", st)
				}
			}
		},
	}

	cmd.Flags().StringVar(&advertisedHost, "advertised-host", "", "host the device advertised for this tap endpoint")
	cmd.Flags().IntVar(&port, "port", 0, "port the device advertised for this tap endpoint")
	cmd.Flags().StringVar(&deviceHost, "device-host", "", "device's own URI host, substituted for advertised-host at connect time (default: config file)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-receive timeout")
	_ = cmd.MarkFlagRequired("advertised-host")
	_ = cmd.MarkFlagRequired("port")
	return cmd
}

func newTapConsumerCmd() *cobra.Command {
	var (
		advertisedHost string
		port           int
		deviceHost     string
	)

	cmd := &cobra.Command{
		Use:   "consumer",
		Short: "Publish one frame read from stdin to the device's advertised tap endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, devHost := advertisedHost, deviceHost
			if devHost == "" && appConfig != nil {
				devHost = appConfig.Device.Host
			}
			t := tap.NewConsumerTap(host, uint16(port), devHost)
			if st := t.Connect(context.Background()); !st.Ok() {
				return fmt.Errorf("tap connect: %v", st)
			}
			defer t.Close()

			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			if st := t.Send(data); !st.Ok() {
				return fmt.Errorf("tap send: %v", st)
			}
			fmt.Printf("sent %d bytes\n", len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&advertisedHost, "advertised-host", "", "host the device advertised for this tap endpoint")
	cmd.Flags().IntVar(&port, "port", 0, "port the device advertised for this tap endpoint")
	cmd.Flags().StringVar(&deviceHost, "device-host", "", "device's own URI host, substituted for advertised-host at connect time (default: config file)")
	_ = cmd.MarkFlagRequired("advertised-host")
	_ = cmd.MarkFlagRequired("port")
	return cmd
}
