package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sciencecorp/synapse-cpp/internal/discovery"
)

func newDiscoverCmd() *cobra.Command {
	var (
		bindAddr string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Listen for device discovery announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ads, st := discovery.Discover(bindAddr, timeout)
			if !st.Ok() {
				return fmt.Errorf("discover: %v", st)
			}
			if len(ads) == 0 {
				fmt.Println("no devices found")
				return nil
			}
			for _, ad := range ads {
				fmt.Printf("%s  %s:%d  %s  %q\n", ad.Serial, ad.Host, ad.Port, ad.Capability, ad.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bindAddr, "bind", ":0", "local address to listen for announcements on")
	cmd.Flags().DurationVar(&timeout, "timeout", discovery.DefaultTimeout, "discovery window")
	return cmd
}
