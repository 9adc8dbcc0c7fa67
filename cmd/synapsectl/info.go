package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	flags := &deviceFlags{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the device's current configuration and firmware version",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, port, timeout := flags.resolve()
			ctx := context.Background()
			dev, err := dialDevice(ctx, host, port, timeout)
			if err != nil {
				return err
			}
			defer dev.Disconnect()

			info, st := dev.Info(ctx, timeout)
			if !st.Ok() {
				return fmt.Errorf("info: %v", st)
			}
			fmt.Printf("firmware: %s\n", info.FirmwareVersion)
			fmt.Printf("nodes: %d, connections: %d\n", len(info.Config.Nodes), len(info.Config.Connections))
			for _, ns := range info.NodeSockets {
				fmt.Printf("  node %d -> %s:%d\n", ns.NodeID, ns.Host, ns.Port)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "device host (default: config file)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "device RPC port (default: config file)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-call timeout (default: config file)")
	return cmd
}
