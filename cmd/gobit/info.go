package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devraj-singh/gobit/internal/hashutil"
	"github.com/devraj-singh/gobit/internal/metainfo"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.torrent>",
		Short: "Print the metainfo of a .torrent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := metainfo.Parse(args[0])
			if err != nil {
				return err
			}

			label := color.New(color.Bold).SprintFunc()

			fmt.Printf("%s %s\n", label("Tracker URL:"), t.Announce)
			fmt.Printf("%s %d\n", label("Length:"), t.Length)
			fmt.Printf("%s %s\n", label("Info Hash:"), t.InfoHashHex())
			fmt.Printf("%s %d\n", label("Piece Length:"), t.PieceLength)
			for _, h := range t.PieceHashes() {
				fmt.Println(hashutil.HexEncode(h[:]))
			}
			return nil
		},
	}
}
