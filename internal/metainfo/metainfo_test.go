package metainfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/metainfo"
)

// buildTorrentBytes constructs a minimal, valid single-file .torrent's
// bencoded bytes with numPieces piece hashes, each hash being 20 copies of
// a distinct filler byte so individual pieces are trivially distinguishable
// in assertions.
func buildTorrentBytes(length, pieceLength int64, numPieces int) []byte {
	pieces := make([]byte, 0, numPieces*20)
	for i := 0; i < numPieces; i++ {
		for j := 0; j < 20; j++ {
			pieces = append(pieces, byte(i+1))
		}
	}

	info := "d6:lengthi" + itoa(length) + "e4:name4:test12:piece lengthi" + itoa(pieceLength) + "e6:pieces" + itoa(int64(len(pieces))) + ":" + string(pieces) + "e"
	top := "d8:announce20:http://tracker.test/4:info" + info + "e"
	return []byte(top)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

func TestParseBytesValid(t *testing.T) {
	data := buildTorrentBytes(25, 10, 3)
	tr, err := metainfo.ParseBytes(data)
	require.NoError(t, err)

	assert.Equal(t, "http://tracker.test/", tr.Announce)
	assert.Equal(t, "test", tr.Name)
	assert.Equal(t, int64(25), tr.Length)
	assert.Equal(t, int64(10), tr.PieceLength)
	assert.Equal(t, 3, tr.NumPieces())
	assert.Len(t, tr.InfoHashHex(), 40)

	hashes := tr.PieceHashes()
	require.Len(t, hashes, 3)
	assert.Equal(t, byte(1), hashes[0][0])
	assert.Equal(t, byte(3), hashes[2][0])
}

func TestPieceLengthOfLastPieceIsShort(t *testing.T) {
	data := buildTorrentBytes(25, 10, 3)
	tr, err := metainfo.ParseBytes(data)
	require.NoError(t, err)

	l0, err := tr.PieceLengthOf(0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), l0)

	l2, err := tr.PieceLengthOf(2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), l2)

	_, err = tr.PieceLengthOf(3)
	require.Error(t, err)
	assert.True(t, bterror.Is(err, bterror.PieceBadIndex))
}

func TestParseBytesRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"not a dict", []byte("i1e")},
		{"missing announce", []byte("d4:infod6:lengthi1e4:name1:a12:piece lengthi1e6:pieces20:" + string(make([]byte, 20)) + "ee")},
		{"pieces not multiple of 20", []byte("d8:announce3:abc4:infod6:lengthi1e4:name1:a12:piece lengthi1e6:pieces3:xyzee")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := metainfo.ParseBytes(tt.in)
			require.Error(t, err)
			assert.True(t, bterror.Is(err, bterror.MetainfoMalformed))
		})
	}
}

func TestInfoHashIsStableAcrossTopLevelKeyOrder(t *testing.T) {
	data := buildTorrentBytes(25, 10, 3)
	tr, err := metainfo.ParseBytes(data)
	require.NoError(t, err)

	reordered := []byte("d4:infod6:lengthi25e4:name4:test12:piece lengthi10e6:pieces" + itoa(60) + ":" + string(tr.Pieces) + "e8:announce20:http://tracker.test/e")
	tr2, err := metainfo.ParseBytes(reordered)
	require.NoError(t, err)

	assert.Equal(t, tr.InfoHashHex(), tr2.InfoHashHex())
}
