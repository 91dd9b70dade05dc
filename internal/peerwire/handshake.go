// Package peerwire implements the BitTorrent peer wire protocol's framing:
// the fixed 68-byte handshake and the length-prefixed message stream that
// follows it.
package peerwire

import (
	"bytes"
	"io"

	"github.com/devraj-singh/gobit/internal/bterror"
)

const protocolIdentifier = "BitTorrent protocol"

// Handshake is the fixed-format message exchanged before any other peer
// wire traffic.
type Handshake struct {
	Protocol   string
	Reserved   [8]byte
	InfoHash   [20]byte
	Identifier [20]byte
}

// NewHandshake builds a handshake for infoHash identifying ourselves as
// peerID.
func NewHandshake(infoHash, peerID [20]byte) *Handshake {
	return &Handshake{
		Protocol:   protocolIdentifier,
		InfoHash:   infoHash,
		Identifier: peerID,
	}
}

// Serialize encodes the handshake to its 68-byte wire form.
func (h *Handshake) Serialize() []byte {
	buf := make([]byte, 0, 49+len(h.Protocol))
	buf = append(buf, byte(len(h.Protocol)))
	buf = append(buf, h.Protocol...)
	buf = append(buf, h.Reserved[:]...)
	buf = append(buf, h.InfoHash[:]...)
	buf = append(buf, h.Identifier[:]...)
	return buf
}

// ReadHandshake reads and parses a handshake from r.
func ReadHandshake(r io.Reader) (*Handshake, error) {
	var lenBuf [1]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, bterror.Wrap(bterror.PeerRecv, "reading handshake protocol length", err)
	}
	pstrlen := int(lenBuf[0])
	if pstrlen == 0 {
		return nil, bterror.New(bterror.PeerHandshakeMismatch, "handshake protocol length is zero")
	}

	rest := make([]byte, pstrlen+48)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, bterror.Wrap(bterror.PeerRecv, "reading handshake body", err)
	}

	h := &Handshake{Protocol: string(rest[:pstrlen])}
	copy(h.Reserved[:], rest[pstrlen:pstrlen+8])
	copy(h.InfoHash[:], rest[pstrlen+8:pstrlen+28])
	copy(h.Identifier[:], rest[pstrlen+28:pstrlen+48])
	return h, nil
}

// Verify confirms the handshake is for the expected info_hash and uses the
// expected protocol identifier.
func (h *Handshake) Verify(infoHash [20]byte) error {
	if h.Protocol != protocolIdentifier {
		return bterror.New(bterror.PeerHandshakeMismatch, "unexpected protocol identifier: "+h.Protocol)
	}
	if !bytes.Equal(h.InfoHash[:], infoHash[:]) {
		return bterror.New(bterror.PeerHandshakeMismatch, "info_hash mismatch")
	}
	return nil
}
