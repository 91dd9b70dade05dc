package tracker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/tracker"
)

func testTorrent(t *testing.T, announce string) *metainfo.Torrent {
	t.Helper()
	hash := make([]byte, 20)
	copy(hash, []byte("piecehashpiecehash!!"))
	top := "d8:announce" + itoa(len(announce)) + ":" + announce +
		"4:infod6:lengthi4e4:name4:test12:piece lengthi4e6:pieces20:" + string(hash) + "ee"
	tr, err := metainfo.ParseBytes([]byte(top))
	require.NoError(t, err)
	return tr
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	return string(buf)
}

func TestAnnounceParsesCompactPeers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "info_hash=")
		assert.Contains(t, r.URL.RawQuery, "peer_id=")
		peers := []byte{127, 0, 0, 1, 0x1A, 0xE1}
		body := "d8:intervali900e5:peers6:" + string(peers) + "e"
		w.Write([]byte(body))
	}))
	defer srv.Close()

	tr := testTorrent(t, srv.URL)
	var selfID [20]byte
	info, err := tracker.Announce(context.Background(), tr, selfID, 6881, srv.Client())
	require.NoError(t, err)

	assert.Equal(t, 900, info.Interval)
	require.Len(t, info.Peers, 1)
	assert.Equal(t, "127.0.0.1", info.Peers[0].IP.String())
	assert.Equal(t, uint16(0x1AE1), info.Peers[0].Port)
}

func TestAnnounceSurfacesFailureReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("d14:failure reason12:torrent gonee"))
	}))
	defer srv.Close()

	tr := testTorrent(t, srv.URL)
	var selfID [20]byte
	_, err := tracker.Announce(context.Background(), tr, selfID, 6881, srv.Client())
	require.Error(t, err)
	assert.True(t, bterror.Is(err, bterror.TrackerRejected))
}

func TestAnnounceRejectsBadScheme(t *testing.T) {
	tr := testTorrent(t, "ftp://example.com/announce")
	var selfID [20]byte
	_, err := tracker.Announce(context.Background(), tr, selfID, 6881, http.DefaultClient)
	require.Error(t, err)
	assert.True(t, bterror.Is(err, bterror.TrackerBadUrl))
}
