package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devraj-singh/gobit/internal/hashutil"
	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/peer"
)

func newHandshakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handshake <file.torrent> <ip:port>",
		Short: "Connect to a peer and perform the wire handshake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := metainfo.Parse(args[0])
			if err != nil {
				return err
			}

			sess := peer.New(args[1], t, defaultPeerID)
			if err := sess.Connect(context.Background()); err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Handshake(); err != nil {
				return err
			}

			fmt.Printf("Peer ID: %s\n", hashutil.HexEncode(sess.RemoteID()))
			return nil
		},
	}
}
