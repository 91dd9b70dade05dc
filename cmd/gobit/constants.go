package main

// defaultPeerID is the reference 20-byte ASCII peer_id used by this
// client when none is configured.
var defaultPeerID = [20]byte{
	'0', '0', '1', '1', '2', '2', '3', '3', '4', '4',
	'5', '5', '6', '6', '7', '7', '8', '8', '9', '9',
}

const defaultPort uint16 = 6881
