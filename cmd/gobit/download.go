package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/download"
	"github.com/devraj-singh/gobit/internal/metainfo"
)

func newDownloadCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "download <file.torrent>",
		Short: "Download the full file described by a .torrent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return bterror.New(bterror.OutputIoError, "missing required -o flag")
			}

			t, err := metainfo.Parse(args[0])
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return bterror.Wrap(bterror.OutputIoError, "creating output file", err)
			}
			defer out.Close()

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

			cfg := download.Config{
				SelfPeerID: defaultPeerID,
				Port:       defaultPort,
				HTTPClient: &http.Client{Timeout: 15 * time.Second},
				Logger:     logger,
			}

			return download.Run(context.Background(), t, out, cfg)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file path")
	return cmd
}
