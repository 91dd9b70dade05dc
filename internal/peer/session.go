// Package peer drives a single peer connection through the handshake,
// bitfield exchange, and choke/interest negotiation that must happen
// before any piece can be requested.
package peer

import (
	"context"
	"net"
	"time"

	"github.com/devraj-singh/gobit/internal/bitfield"
	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/hashutil"
	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/peerwire"
)

const (
	dialTimeout     = 5 * time.Second
	messageDeadline = 10 * time.Second
)

// Session is a single TCP connection to a peer, tracking the minimal
// state needed to request and receive pieces: whether we are choked and
// which pieces the peer claims to have.
type Session struct {
	conn net.Conn

	addr     string
	torrent  *metainfo.Torrent
	selfID   [20]byte
	remoteID [20]byte

	amChoked bool
	bitfield bitfield.Bitfield
}

// New creates a Session for addr, not yet connected.
func New(addr string, t *metainfo.Torrent, selfID [20]byte) *Session {
	return &Session{
		addr:     addr,
		torrent:  t,
		selfID:   selfID,
		amChoked: true,
	}
}

// Addr returns the peer's network address.
func (s *Session) Addr() string {
	return s.addr
}

// Connect dials the peer over TCP.
func (s *Session) Connect(ctx context.Context) error {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return bterror.Wrap(bterror.PeerConnect, "dialing "+s.addr, err)
	}
	s.conn = conn
	return nil
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Handshake performs the initial handshake exchange and verifies the
// peer's info_hash matches.
func (s *Session) Handshake() error {
	s.conn.SetDeadline(time.Now().Add(messageDeadline))
	defer s.conn.SetDeadline(time.Time{})

	infoHash := s.torrent.InfoHashRaw()
	req := peerwire.NewHandshake(infoHash, s.selfID)
	if _, err := s.conn.Write(req.Serialize()); err != nil {
		return bterror.Wrap(bterror.PeerSend, "sending handshake", err)
	}

	res, err := peerwire.ReadHandshake(s.conn)
	if err != nil {
		return err
	}
	if err := res.Verify(infoHash); err != nil {
		return err
	}

	s.remoteID = res.Identifier
	return nil
}

// RecvBitfield awaits the peer's bitfield message, which by this
// client's contract must be the first message after the handshake.
func (s *Session) RecvBitfield() error {
	s.conn.SetDeadline(time.Now().Add(messageDeadline))
	defer s.conn.SetDeadline(time.Time{})

	msg, err := peerwire.Read(s.conn)
	if err != nil {
		return err
	}
	if msg == nil || msg.ID != peerwire.Bitfield {
		return bterror.New(bterror.PeerExpectedBitfield, "expected bitfield as first message")
	}

	s.bitfield = bitfield.New(msg.Payload)
	return nil
}

// RemoteID returns the peer's identifier as received during the
// handshake.
func (s *Session) RemoteID() []byte {
	return s.remoteID[:]
}

// HasPiece reports whether the peer has advertised the given piece.
func (s *Session) HasPiece(index int) bool {
	return s.bitfield.Has(index)
}

// EnsureUnchoked sends Interested and waits until the peer unchokes us,
// skipping keep-alives and Bitfield messages received meanwhile; Have
// messages are recorded in the peer's bitfield.
func (s *Session) EnsureUnchoked() error {
	interested := &peerwire.Message{ID: peerwire.Interested}
	if _, err := s.conn.Write(interested.Serialize()); err != nil {
		return bterror.Wrap(bterror.PeerSend, "sending interested", err)
	}

	for s.amChoked {
		s.conn.SetDeadline(time.Now().Add(messageDeadline))
		msg, err := peerwire.Read(s.conn)
		s.conn.SetDeadline(time.Time{})
		if err != nil {
			return err
		}
		if msg == nil {
			continue
		}
		switch msg.ID {
		case peerwire.Unchoke:
			s.amChoked = false
		case peerwire.Choke:
			s.amChoked = true
		case peerwire.Have:
			if idx, err := peerwire.ParseHave(msg); err == nil {
				s.bitfield.Set(idx)
			}
		}
	}
	return nil
}

// DownloadPiece requests and assembles the piece at index in BlockSize
// chunks, verifying its SHA-1 against the torrent's recorded hash before
// returning it.
func (s *Session) DownloadPiece(index int) ([]byte, error) {
	pieceLen, err := s.torrent.PieceLengthOf(index)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, pieceLen)
	if err := s.requestAllBlocks(index, pieceLen); err != nil {
		return nil, err
	}
	if err := s.fillFromPeer(index, buf); err != nil {
		return nil, err
	}
	if err := s.verifyPiece(index, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *Session) requestAllBlocks(index int, pieceLen int64) error {
	for begin := int64(0); begin < pieceLen; begin += peerwire.BlockSize {
		length := int64(peerwire.BlockSize)
		if remaining := pieceLen - begin; remaining < length {
			length = remaining
		}
		req := peerwire.NewRequest(index, int(begin), int(length))
		if _, err := s.conn.Write(req.Serialize()); err != nil {
			return bterror.Wrap(bterror.PeerSend, "sending request", err)
		}
	}
	return nil
}

func (s *Session) fillFromPeer(index int, buf []byte) error {
	received := 0
	for received < len(buf) {
		s.conn.SetDeadline(time.Now().Add(messageDeadline))
		msg, err := peerwire.Read(s.conn)
		s.conn.SetDeadline(time.Time{})
		if err != nil {
			return err
		}
		if msg == nil {
			continue
		}

		switch msg.ID {
		case peerwire.Piece:
			n, err := peerwire.ParsePiece(index, buf, msg)
			if err != nil {
				return err
			}
			received += n
		case peerwire.Choke:
			return bterror.New(bterror.PeerChokedMidPiece, "choked while downloading a piece")
		case peerwire.Have:
			if idx, err := peerwire.ParseHave(msg); err == nil {
				s.bitfield.Set(idx)
			}
		}
	}
	return nil
}

func (s *Session) verifyPiece(index int, buf []byte) error {
	expected := s.torrent.PieceHashes()[index]
	got := hashutil.SHA1(buf)
	if got != expected {
		return bterror.New(bterror.PieceHashMismatch, "piece hash mismatch")
	}
	return nil
}
