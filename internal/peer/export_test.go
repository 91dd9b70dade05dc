package peer

import "net"

// SetConnForTest injects an already-established connection into s,
// bypassing Connect. It exists only so tests can exercise the
// handshake/bitfield/piece logic over an in-memory net.Pipe.
func SetConnForTest(s *Session, conn net.Conn) {
	s.conn = conn
}
