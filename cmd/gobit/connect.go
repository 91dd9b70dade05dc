package main

import (
	"context"

	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/peer"
	"github.com/devraj-singh/gobit/internal/tracker"
)

// connectFirstUsable tries each peer in order and returns the first
// session that completes connect/handshake/bitfield/unchoke.
func connectFirstUsable(ctx context.Context, t *metainfo.Torrent, peers []tracker.Peer) (*peer.Session, error) {
	for _, p := range peers {
		sess := peer.New(p.String(), t, defaultPeerID)

		if err := sess.Connect(ctx); err != nil {
			continue
		}
		if err := sess.Handshake(); err != nil {
			sess.Close()
			continue
		}
		if err := sess.RecvBitfield(); err != nil {
			sess.Close()
			continue
		}
		if err := sess.EnsureUnchoked(); err != nil {
			sess.Close()
			continue
		}
		return sess, nil
	}
	return nil, bterror.New(bterror.NoUsablePeers, "no peer completed handshake and unchoke")
}
