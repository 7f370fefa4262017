package netio

import "net"

// TcpSessionKey canonicalizes a TCP 4-tuple so that packets flowing in
// either direction of the same conversation hash to the same key: ordered
// first by IP, then by port.
type TcpSessionKey struct {
	ipLo, ipHi     string
	portLo, portHi uint16
}

// NewTcpSessionKey builds the canonical key for a segment observed from
// src to dst.
func NewTcpSessionKey(srcIP, dstIP net.IP, srcPort, dstPort uint16) TcpSessionKey {
	srcStr, dstStr := srcIP.String(), dstIP.String()
	if srcStr < dstStr || (srcStr == dstStr && srcPort < dstPort) {
		return TcpSessionKey{ipLo: srcStr, portLo: srcPort, ipHi: dstStr, portHi: dstPort}
	}
	return TcpSessionKey{ipLo: dstStr, portLo: dstPort, ipHi: srcStr, portHi: srcPort}
}
