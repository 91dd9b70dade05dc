package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/tracker"
)

func newDownloadPieceCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "download_piece <file.torrent> <index>",
		Short: "Download a single piece and write it to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return bterror.New(bterror.OutputIoError, "missing required -o flag")
			}

			t, err := metainfo.Parse(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return bterror.Wrap(bterror.PieceBadIndex, "parsing piece index", err)
			}

			client := &http.Client{Timeout: 15 * time.Second}
			info, err := tracker.Announce(context.Background(), t, defaultPeerID, defaultPort, client)
			if err != nil {
				return err
			}
			if len(info.Peers) == 0 {
				return bterror.New(bterror.NoUsablePeers, "tracker returned no peers")
			}

			sess, err := connectFirstUsable(context.Background(), t, info.Peers)
			if err != nil {
				return err
			}
			defer sess.Close()

			piece, err := sess.DownloadPiece(index)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return bterror.Wrap(bterror.OutputIoError, "creating output file", err)
			}
			defer out.Close()

			if _, err := out.Write(piece); err != nil {
				return bterror.Wrap(bterror.OutputIoError, "writing output file", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file path")
	return cmd
}
