package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/tracker"
)

func newPeersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peers <file.torrent>",
		Short: "Announce to the tracker and print the peer list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := metainfo.Parse(args[0])
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 15 * time.Second}
			info, err := tracker.Announce(context.Background(), t, defaultPeerID, defaultPort, client)
			if err != nil {
				return err
			}

			for _, p := range info.Peers {
				fmt.Println(p.String())
			}
			return nil
		},
	}
}
