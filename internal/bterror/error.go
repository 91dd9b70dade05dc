// Package bterror implements the structured error taxonomy shared by every
// layer of the client. Each fallible operation returns a *Error carrying a
// Kind instead of a bare string, so callers can branch on failure class
// without parsing messages.
package bterror

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure. The set mirrors the error_code_enum
// used by the reference implementation this client was ported from.
type Kind int

const (
	Unknown Kind = iota

	BencodeInvalid
	BencodeTruncated
	BencodeBadInteger
	BencodeBadString
	BencodeBadList
	BencodeBadDict

	MetainfoMalformed
	MetainfoIoError

	TrackerBadUrl
	TrackerHttpFailed
	TrackerMalformedResponse
	TrackerRejected

	PeerSocket
	PeerConnect
	PeerSend
	PeerRecv
	PeerHandshakeMismatch
	PeerExpectedBitfield
	PeerUnknownMessage
	PeerChokedMidPiece

	PieceBadIndex
	PieceHashMismatch

	NoUsablePeers
	OutputIoError
)

var kindNames = [...]string{
	Unknown:                  "unknown",
	BencodeInvalid:           "bencode_invalid",
	BencodeTruncated:         "bencode_truncated",
	BencodeBadInteger:        "bencode_bad_integer",
	BencodeBadString:         "bencode_bad_string",
	BencodeBadList:           "bencode_bad_list",
	BencodeBadDict:           "bencode_bad_dict",
	MetainfoMalformed:        "metainfo_malformed",
	MetainfoIoError:          "metainfo_io_error",
	TrackerBadUrl:            "tracker_bad_url",
	TrackerHttpFailed:        "tracker_http_failed",
	TrackerMalformedResponse: "tracker_malformed_response",
	TrackerRejected:          "tracker_rejected",
	PeerSocket:               "peer_socket",
	PeerConnect:              "peer_connect",
	PeerSend:                 "peer_send",
	PeerRecv:                 "peer_recv",
	PeerHandshakeMismatch:    "peer_handshake_mismatch",
	PeerExpectedBitfield:     "peer_expected_bitfield",
	PeerUnknownMessage:       "peer_unknown_message",
	PeerChokedMidPiece:       "peer_choked_mid_piece",
	PieceBadIndex:            "piece_bad_index",
	PieceHashMismatch:        "piece_hash_mismatch",
	NoUsablePeers:            "no_usable_peers",
	OutputIoError:            "output_io_error",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Error is the single tagged error type used across the client. Detail is a
// human-readable message; Cause, when present, is the underlying error that
// triggered this one.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

// New creates an Error with no underlying cause.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap creates an Error that carries an underlying cause.
func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil && e.Detail != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the first *Error in err's chain (err itself, or the
// first *Error it wraps) has the given kind. The Cause of that *Error is
// not examined.
func Is(err error, kind Kind) bool {
	var be *Error
	if !errors.As(err, &be) {
		return false
	}
	return be.Kind == kind
}
