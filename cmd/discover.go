package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List candidate radios reachable over serial or network",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		backends := []discovery.DiscoveryBackend{
			&discovery.SerialBackend{},
			&discovery.NetworkBackend{},
		}
		var found []discovery.Result
		for _, b := range backends {
			results, err := b.Poll(ctx)
			if err != nil {
				log.WithError(err).Warn("discovery backend failed")
				continue
			}
			found = append(found, results...)
		}

		if len(found) == 0 {
			fmt.Println("no candidate radios found")
			return nil
		}
		for _, r := range found {
			fmt.Printf("%s\t%s\n", r.Endpoint, r.DisplayName)
		}
		return nil
	},
}
