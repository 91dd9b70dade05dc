// Package hashutil implements the small set of pure byte-level helpers the
// rest of the client needs: SHA-1 digests, hex encoding, and the percent
// encoding scheme used to embed raw 20-byte hashes in a tracker URL.
package hashutil

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// SHA1 returns the 20-byte SHA-1 digest of data.
func SHA1(data []byte) [20]byte {
	return sha1.Sum(data)
}

// HexEncode returns the lowercase hex encoding of b.
func HexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

// HexDecode decodes a lowercase, even-length hex string.
func HexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	default:
		return false
	}
}

// URLEncode percent-encodes every byte of b except the unreserved set
// [A-Za-z0-9\-_.~], using uppercase hex digits. This is distinct from
// net/url's query escaping, which encodes space as '+' and is unsafe for
// the raw, non-textual bytes of an info_hash or peer_id.
func URLEncode(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for _, c := range b {
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigit(c >> 4))
		sb.WriteByte(hexDigit(c & 0xf))
	}
	return sb.String()
}

func hexDigit(n byte) byte {
	const digits = "0123456789ABCDEF"
	return digits[n]
}
