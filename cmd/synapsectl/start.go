package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	flags := &deviceFlags{}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a previously-configured device",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, port, timeout := flags.resolve()
			ctx := context.Background()
			dev, err := dialDevice(ctx, host, port, timeout)
			if err != nil {
				return err
			}
			defer dev.Disconnect()
			if st := dev.Start(ctx, timeout); !st.Ok() {
				return fmt.Errorf("start: %v", st)
			}
			fmt.Println("started")
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "device host (default: config file)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "device RPC port (default: config file)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-call timeout (default: config file)")
	return cmd
}
