// Package tracker implements the HTTP tracker announce request, used to
// discover a swarm's peer list.
package tracker

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/devraj-singh/gobit/internal/bencode"
	"github.com/devraj-singh/gobit/internal/bterror"
	"github.com/devraj-singh/gobit/internal/hashutil"
	"github.com/devraj-singh/gobit/internal/metainfo"
)

const peerEntrySize = 6

// Peer is a single compact peer list entry returned by the tracker.
type Peer struct {
	IP   net.IP
	Port uint16
}

// String renders the peer as an ip:port address suitable for net.Dial.
func (p Peer) String() string {
	return fmt.Sprintf("%s:%d", p.IP, p.Port)
}

// Info is the parsed response of a tracker announce.
type Info struct {
	Interval int
	Peers    []Peer
}

// Announce performs a GET announce request against the torrent's
// tracker, identifying ourselves as selfPeerID listening on port.
func Announce(ctx context.Context, t *metainfo.Torrent, selfPeerID [20]byte, port uint16, client *http.Client) (*Info, error) {
	reqURL, err := buildURL(t, selfPeerID, port)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, bterror.Wrap(bterror.TrackerBadUrl, "building tracker request", err)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, bterror.Wrap(bterror.TrackerHttpFailed, "performing tracker announce", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, bterror.New(bterror.TrackerHttpFailed, fmt.Sprintf("tracker responded with status %d", res.StatusCode))
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, bterror.Wrap(bterror.TrackerHttpFailed, "reading tracker response body", err)
	}

	return parseResponse(buf)
}

func buildURL(t *metainfo.Torrent, selfPeerID [20]byte, port uint16) (string, error) {
	base, err := url.Parse(t.Announce)
	if err != nil {
		return "", bterror.Wrap(bterror.TrackerBadUrl, "parsing announce url", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", bterror.New(bterror.TrackerBadUrl, "unsupported announce scheme: "+base.Scheme)
	}

	hash := t.InfoHashRaw()
	query := url.Values{
		"port":       []string{strconv.Itoa(int(port))},
		"uploaded":   []string{"0"},
		"downloaded": []string{"0"},
		"left":       []string{strconv.FormatInt(t.Length, 10)},
		"compact":    []string{"1"},
		"numwant":    []string{"50"},
	}.Encode()

	// info_hash and peer_id are raw 20-byte strings, not text, so they are
	// percent-encoded by hand rather than through url.Values.Encode, which
	// would mangle non-UTF8 bytes.
	raw := base.String()
	sep := "?"
	if base.RawQuery != "" {
		sep = "&"
	}
	full := raw + sep + "info_hash=" + hashutil.URLEncode(hash[:]) +
		"&peer_id=" + hashutil.URLEncode(selfPeerID[:]) +
		"&" + query

	return full, nil
}

func parseResponse(data []byte) (*Info, error) {
	v, err := bencode.Decode(data)
	if err != nil {
		return nil, bterror.Wrap(bterror.TrackerMalformedResponse, "invalid bencode in tracker response", err)
	}
	if v.Kind != bencode.Dict {
		return nil, bterror.New(bterror.TrackerMalformedResponse, "tracker response is not a dictionary")
	}

	if failure, ok := v.DictGet("failure reason"); ok {
		return nil, bterror.New(bterror.TrackerRejected, string(failure.Str))
	}

	interval, ok := v.DictGet("interval")
	if !ok || interval.Kind != bencode.Int {
		return nil, bterror.New(bterror.TrackerMalformedResponse, "missing or malformed 'interval'")
	}

	peersVal, ok := v.DictGet("peers")
	if !ok || peersVal.Kind != bencode.String {
		return nil, bterror.New(bterror.TrackerMalformedResponse, "missing or malformed 'peers' (compact format required)")
	}

	peers, err := parseCompactPeers(peersVal.Str)
	if err != nil {
		return nil, err
	}

	return &Info{Interval: int(interval.Num), Peers: peers}, nil
}

func parseCompactPeers(buf []byte) ([]Peer, error) {
	if len(buf)%peerEntrySize != 0 {
		return nil, bterror.New(bterror.TrackerMalformedResponse, "compact peer list length is not a multiple of 6")
	}

	n := len(buf) / peerEntrySize
	peers := make([]Peer, n)
	for i := 0; i < n; i++ {
		off := i * peerEntrySize
		ip := make(net.IP, 4)
		copy(ip, buf[off:off+4])
		port := uint16(buf[off+4])<<8 | uint16(buf[off+5])
		peers[i] = Peer{IP: ip, Port: port}
	}
	return peers, nil
}
