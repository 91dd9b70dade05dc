package download_test

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraj-singh/gobit/internal/download"
	"github.com/devraj-singh/gobit/internal/hashutil"
	"github.com/devraj-singh/gobit/internal/metainfo"
	"github.com/devraj-singh/gobit/internal/peerwire"
)

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

// fakePeer serves a minimal, correct peer wire protocol for exactly one
// piece of pieceData, then closes.
func fakePeer(t *testing.T, infoHash [20]byte, pieceData []byte) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		hs, err := peerwire.ReadHandshake(conn)
		if err != nil {
			return
		}
		resp := peerwire.NewHandshake(infoHash, [20]byte{})
		conn.Write(resp.Serialize())
		_ = hs

		bf := &peerwire.Message{ID: peerwire.Bitfield, Payload: []byte{0xFF}}
		conn.Write(bf.Serialize())

		msg, err := peerwire.Read(conn)
		if err != nil || msg.ID != peerwire.Interested {
			return
		}
		unchoke := &peerwire.Message{ID: peerwire.Unchoke}
		conn.Write(unchoke.Serialize())

		received := 0
		for received < len(pieceData) {
			req, err := peerwire.Read(conn)
			if err != nil || req == nil {
				continue
			}
			if req.ID != peerwire.Request {
				continue
			}
			begin := int(req.Payload[4])<<24 | int(req.Payload[5])<<16 | int(req.Payload[6])<<8 | int(req.Payload[7])
			length := int(req.Payload[8])<<24 | int(req.Payload[9])<<16 | int(req.Payload[10])<<8 | int(req.Payload[11])

			payload := append([]byte{0, 0, 0, 0}, req.Payload[4:8]...)
			payload = append(payload, pieceData[begin:begin+length]...)
			piece := &peerwire.Message{ID: peerwire.Piece, Payload: payload}
			conn.Write(piece.Serialize())
			received += length
		}
	}()

	return ln.Addr().String()
}

func TestRunDownloadsSinglePieceTorrent(t *testing.T) {
	pieceData := bytes.Repeat([]byte{0x42}, 10)
	pieceHash := hashutil.SHA1(pieceData)

	info := "d6:lengthi10e4:name4:test12:piece lengthi10e6:pieces20:" + string(pieceHash[:]) + "e"
	top := []byte("d8:announce3:abc4:info" + info + "e")

	tr, err := metainfo.ParseBytes(top)
	require.NoError(t, err)

	addr := fakePeer(t, tr.InfoHashRaw(), pieceData)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	var port int
	for _, c := range portStr {
		port = port*10 + int(c-'0')
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := net.ParseIP(host).To4()
		peers := append([]byte{}, ip...)
		peers = append(peers, byte(port>>8), byte(port&0xff))
		body := "d8:intervali900e5:peers" + itoa(len(peers)) + ":" + string(peers) + "e"
		w.Write([]byte(body))
	}))
	defer srv.Close()

	trWithTracker, err := metainfo.ParseBytes([]byte("d8:announce" + itoa(len(srv.URL)) + ":" + srv.URL + "4:info" + info + "e"))
	require.NoError(t, err)

	var out bytes.Buffer
	cfg := download.Config{
		SelfPeerID: download.NewPeerID(),
		Port:       6881,
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = download.Run(ctx, trWithTracker, &out, cfg)
	require.NoError(t, err)
	assert.Equal(t, pieceData, out.Bytes())
}
