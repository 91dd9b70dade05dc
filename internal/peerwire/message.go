package peerwire

import (
	"encoding/binary"
	"io"

	"github.com/devraj-singh/gobit/internal/bterror"
)

// MessageID identifies the kind of a peer wire message.
type MessageID uint8

const (
	Choke         MessageID = 0
	Unchoke       MessageID = 1
	Interested    MessageID = 2
	NotInterested MessageID = 3
	Have          MessageID = 4
	Bitfield      MessageID = 5
	Request       MessageID = 6
	Piece         MessageID = 7
	Cancel        MessageID = 8
)

// BlockSize is the size in bytes of a single requested block, per
// convention every BitTorrent client uses.
const BlockSize = 16384

// Message is a single length-prefixed peer wire message. A nil *Message
// with a nil error represents a keep-alive (zero-length message).
type Message struct {
	ID      MessageID
	Payload []byte
}

// Serialize encodes m to its wire form, including the length prefix.
func (m *Message) Serialize() []byte {
	if m == nil {
		return []byte{0, 0, 0, 0}
	}
	length := uint32(len(m.Payload) + 1)
	buf := make([]byte, 4+length)
	binary.BigEndian.PutUint32(buf[0:4], length)
	buf[4] = byte(m.ID)
	copy(buf[5:], m.Payload)
	return buf
}

// Read reads a single message from r. It returns (nil, nil) for a
// keep-alive.
func Read(r io.Reader) (*Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, bterror.Wrap(bterror.PeerRecv, "reading message length prefix", err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 {
		return nil, nil
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, bterror.Wrap(bterror.PeerRecv, "reading message body", err)
	}

	id := MessageID(body[0])
	if id > Cancel {
		return nil, bterror.New(bterror.PeerUnknownMessage, "unknown message id")
	}
	return &Message{ID: id, Payload: body[1:]}, nil
}

// NewRequest builds a Request message for the block at (index, begin,
// length).
func NewRequest(index, begin, length int) *Message {
	payload := make([]byte, 12)
	binary.BigEndian.PutUint32(payload[0:4], uint32(index))
	binary.BigEndian.PutUint32(payload[4:8], uint32(begin))
	binary.BigEndian.PutUint32(payload[8:12], uint32(length))
	return &Message{ID: Request, Payload: payload}
}

// ParseHave extracts the piece index announced by a Have message.
func ParseHave(m *Message) (int, error) {
	if m.ID != Have {
		return 0, bterror.New(bterror.PeerUnknownMessage, "not a have message")
	}
	if len(m.Payload) != 4 {
		return 0, bterror.New(bterror.PeerUnknownMessage, "malformed have payload")
	}
	return int(binary.BigEndian.Uint32(m.Payload)), nil
}

// ParsePiece copies a Piece message's block into buf at its declared
// offset, validating it belongs to the expected piece index. It returns
// the number of bytes copied.
func ParsePiece(index int, buf []byte, m *Message) (int, error) {
	if m.ID != Piece {
		return 0, bterror.New(bterror.PeerUnknownMessage, "not a piece message")
	}
	if len(m.Payload) < 8 {
		return 0, bterror.New(bterror.PeerUnknownMessage, "malformed piece payload")
	}
	parsedIndex := int(binary.BigEndian.Uint32(m.Payload[0:4]))
	if parsedIndex != index {
		return 0, bterror.New(bterror.PeerUnknownMessage, "piece index mismatch")
	}
	begin := int(binary.BigEndian.Uint32(m.Payload[4:8]))
	block := m.Payload[8:]
	if begin < 0 || begin+len(block) > len(buf) {
		return 0, bterror.New(bterror.PeerUnknownMessage, "piece block out of bounds")
	}
	copy(buf[begin:], block)
	return len(block), nil
}
