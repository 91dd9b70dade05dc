// Package metainfo derives the semantic structure of a .torrent file from
// its bencoded dictionary, including the info_hash that identifies the
// swarm to the tracker and every peer.
package metainfo

import (
	"os"

	"github.com/devraj-singh/gobit/internal/bencode"
	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/hashutil"
)

// HashSize is the length in bytes of a SHA-1 digest.
const HashSize = 20

// Torrent is the parsed, read-only metainfo of a single-file torrent. It is
// safe to share across goroutines once constructed: nothing here is mutated
// after Parse or ParseBytes returns.
type Torrent struct {
	Announce    string
	Length      int64
	Name        string
	PieceLength int64
	Pieces      []byte // raw concatenation of 20-byte SHA-1 hashes

	infoHash [HashSize]byte
}

// Parse reads path and parses it as a .torrent metainfo file.
func Parse(path string) (*Torrent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bterror.Wrap(bterror.MetainfoIoError, "reading torrent file", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses the raw bytes of a .torrent metainfo file.
func ParseBytes(data []byte) (*Torrent, error) {
	top, err := bencode.Decode(data)
	if err != nil {
		return nil, bterror.Wrap(bterror.MetainfoMalformed, "invalid bencode", err)
	}
	if top.Kind != bencode.Dict {
		return nil, bterror.New(bterror.MetainfoMalformed, "top-level value is not a dictionary")
	}

	announce, ok := top.DictGet("announce")
	if !ok || announce.Kind != bencode.String {
		return nil, bterror.New(bterror.MetainfoMalformed, "missing or malformed 'announce'")
	}

	info, ok := top.DictGet("info")
	if !ok || info.Kind != bencode.Dict {
		return nil, bterror.New(bterror.MetainfoMalformed, "missing or malformed 'info' dictionary")
	}

	length, ok := info.DictGet("length")
	if !ok || length.Kind != bencode.Int {
		return nil, bterror.New(bterror.MetainfoMalformed, "missing or malformed 'info.length' (multi-file torrents are unsupported)")
	}

	name, ok := info.DictGet("name")
	if !ok || name.Kind != bencode.String {
		return nil, bterror.New(bterror.MetainfoMalformed, "missing or malformed 'info.name'")
	}

	pieceLength, ok := info.DictGet("piece length")
	if !ok || pieceLength.Kind != bencode.Int || pieceLength.Num <= 0 {
		return nil, bterror.New(bterror.MetainfoMalformed, "missing or malformed 'info.piece length'")
	}

	pieces, ok := info.DictGet("pieces")
	if !ok || pieces.Kind != bencode.String {
		return nil, bterror.New(bterror.MetainfoMalformed, "missing or malformed 'info.pieces'")
	}
	if len(pieces.Str)%HashSize != 0 {
		return nil, bterror.New(bterror.MetainfoMalformed, "'info.pieces' length is not a multiple of 20")
	}

	// The info_hash MUST be computed over the original encoded bytes of the
	// info dictionary, not a re-encoding: a source .torrent is not
	// guaranteed to have written its keys in the sorted order a conformant
	// encoder would produce, and any byte difference changes the hash.
	rawInfo := info.Raw(data)
	hash := hashutil.SHA1(rawInfo)

	numPieces := len(pieces.Str) / HashSize
	expectedPieces := int((length.Num + pieceLength.Num - 1) / pieceLength.Num)
	if numPieces != expectedPieces {
		return nil, bterror.New(bterror.MetainfoMalformed, "piece count does not match length/piece length")
	}

	return &Torrent{
		Announce:    string(announce.Str),
		Length:      length.Num,
		Name:        string(name.Str),
		PieceLength: pieceLength.Num,
		Pieces:      pieces.Str,
		infoHash:    hash,
	}, nil
}

// InfoHashRaw returns the raw 20-byte info_hash, used in peer handshakes.
func (t *Torrent) InfoHashRaw() [HashSize]byte {
	return t.infoHash
}

// InfoHashHex returns the 40-character lowercase hex info_hash, used in
// human-readable output.
func (t *Torrent) InfoHashHex() string {
	return hashutil.HexEncode(t.infoHash[:])
}

// NumPieces returns the number of pieces in the torrent.
func (t *Torrent) NumPieces() int {
	return len(t.Pieces) / HashSize
}

// PieceHashes returns the ordered SHA-1 hash of each piece.
func (t *Torrent) PieceHashes() [][HashSize]byte {
	n := t.NumPieces()
	hashes := make([][HashSize]byte, n)
	for i := 0; i < n; i++ {
		copy(hashes[i][:], t.Pieces[i*HashSize:(i+1)*HashSize])
	}
	return hashes
}

// PieceLengthOf returns the byte length of the piece at index: PieceLength
// for every piece but the last, and whatever remains of Length for the
// last one.
func (t *Torrent) PieceLengthOf(index int) (int64, error) {
	n := t.NumPieces()
	if index < 0 || index >= n {
		return 0, bterror.New(bterror.PieceBadIndex, "piece index out of range")
	}
	if index == n-1 {
		return t.Length - int64(index)*t.PieceLength, nil
	}
	return t.PieceLength, nil
}
