// Package download orchestrates a full torrent fetch: announcing to the
// tracker, selecting a usable peer, and sequentially downloading and
// writing every piece in order.
package download

import (
	"context"
	"crypto/rand"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/peer"
	"github.com/devraj-singh/gobit/internal/tracker"
)

// Config carries everything Run needs beyond the torrent itself.
type Config struct {
	SelfPeerID      [20]byte
	Port            uint16
	HTTPClient      *http.Client
	Logger          zerolog.Logger
	MaxPeerAttempts int
}

// NewPeerID generates a random 20-byte client identifier.
func NewPeerID() [20]byte {
	var id [20]byte
	rand.Read(id[:])
	return id
}

// Run downloads every piece of t, writing them to out in ascending piece
// order, and returns once the whole file has been written or an
// unrecoverable error occurs.
func Run(ctx context.Context, t *metainfo.Torrent, out io.Writer, cfg Config) error {
	info, err := tracker.Announce(ctx, t, cfg.SelfPeerID, cfg.Port, cfg.HTTPClient)
	if err != nil {
		return err
	}
	if len(info.Peers) == 0 {
		return bterror.New(bterror.NoUsablePeers, "tracker returned no peers")
	}
	cfg.Logger.Info().Int("peers", len(info.Peers)).Msg("announced to tracker")

	sess, err := selectPeer(ctx, t, info.Peers, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	for i := 0; i < t.NumPieces(); i++ {
		piece, err := sess.DownloadPiece(i)
		if err != nil {
			return err
		}
		if _, err := out.Write(piece); err != nil {
			return bterror.Wrap(bterror.OutputIoError, "writing piece to output", err)
		}
		cfg.Logger.Info().Int("piece", i).Int("total", t.NumPieces()).Msg("downloaded piece")
	}

	return nil
}

// selectPeer attempts to establish a usable session (connect, handshake,
// bitfield, unchoke) against the candidate peers concurrently, one
// goroutine per socket with at most 16 running at once, and returns the
// first one that succeeds. Once a winner is found the shared context is
// canceled, which stops attempts still waiting for a slot or still
// dialing; attempts already past the dial are not interrupted and run
// until they finish or hit their message deadlines, and any that succeed
// late are closed. selectPeer returns only after every attempt has ended.
func selectPeer(ctx context.Context, t *metainfo.Torrent, peers []tracker.Peer, cfg Config) (*peer.Session, error) {
	maxAttempts := cfg.MaxPeerAttempts
	if maxAttempts <= 0 || maxAttempts > len(peers) {
		maxAttempts = len(peers)
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		winner   *peer.Session
		winnerMu sync.Mutex
	)

	g, gctx := errgroup.WithContext(attemptCtx)
	sem := make(chan struct{}, 16)

	for i := 0; i < maxAttempts; i++ {
		addr := peers[i].String()
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return nil
			}

			sess := peer.New(addr, t, cfg.SelfPeerID)
			if err := attemptPeer(gctx, sess); err != nil {
				cfg.Logger.Debug().Str("peer", addr).Err(err).Msg("peer attempt failed")
				return nil
			}

			winnerMu.Lock()
			defer winnerMu.Unlock()
			if winner != nil {
				sess.Close()
				return nil
			}
			winner = sess
			cancel()
			return nil
		})
	}

	_ = g.Wait()

	if winner == nil {
		return nil, bterror.New(bterror.NoUsablePeers, "no peer completed handshake and unchoke")
	}
	return winner, nil
}

func attemptPeer(ctx context.Context, sess *peer.Session) error {
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	if err := sess.Handshake(); err != nil {
		sess.Close()
		return err
	}
	if err := sess.RecvBitfield(); err != nil {
		sess.Close()
		return err
	}
	if err := sess.EnsureUnchoked(); err != nil {
		sess.Close()
		return err
	}
	return nil
}
