package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sciencecorp/synapse-cpp/internal/signalchain"
)

func newConfigureCmd() *cobra.Command {
	flags := &deviceFlags{}
	var chainPath string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Push a signal-chain configuration to the device",
		Example: `  synapsectl configure --host 10.0.0.5 --chain chain.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(flags, chainPath)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "device host (default: config file)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "device RPC port (default: config file)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-call timeout (default: config file)")
	cmd.Flags().StringVar(&chainPath, "chain", "", "path to a serialized signal-chain YAML file")
	_ = cmd.MarkFlagRequired("chain")

	return cmd
}

func runConfigure(flags *deviceFlags, chainPath string) error {
	raw, err := os.ReadFile(chainPath)
	if err != nil {
		return fmt.Errorf("read chain file: %w", err)
	}

	var serialized signalchain.SerializedConfig
	if err := yaml.Unmarshal(raw, &serialized); err != nil {
		return fmt.Errorf("parse chain file: %w", err)
	}

	chain, st := signalchain.FromSerialized(serialized)
	if !st.Ok() {
		return fmt.Errorf("reconstruct signal chain: %v", st)
	}

	host, port, timeout := flags.resolve()
	ctx := context.Background()
	dev, err := dialDevice(ctx, host, port, timeout)
	if err != nil {
		return err
	}
	defer dev.Disconnect()

	if st := dev.Configure(ctx, chain, timeout); !st.Ok() {
		return fmt.Errorf("configure: %v", st)
	}
	fmt.Printf("configured %d node(s), %d connection(s)\n", len(chain.Nodes), len(chain.Connections))
	return nil
}
