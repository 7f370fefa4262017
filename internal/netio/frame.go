package netio

import (
	"encoding/binary"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const ethernetHeaderLen = 14

// wireIPv4EtherType is the value the on-wire EtherType bytes (0x08, 0x00)
// produce when read as a little-endian uint16 instead of being converted
// from network byte order. This is a known byte-order bug in the source
// tool, preserved intentionally: real Ethernet/IPv4 traffic always carries
// these same two wire bytes, so the comparison never misclassifies a
// genuine IPv4 frame, and preserving it keeps bit-for-bit compatibility
// with traces captured by the original tool.
const wireIPv4EtherType = 0x0008

// Frame holds the fields of a decoded Ethernet/IPv4/TCP frame needed by the
// session classifier: the endpoints, the control flags, and the TCP
// payload slice.
type Frame struct {
	SrcIP   net.IP
	DstIP   net.IP
	SrcPort uint16
	DstPort uint16
	FIN     bool
	RST     bool
	Payload []byte
}

// ParseFrame decodes captured as an Ethernet II frame carrying IPv4/TCP.
// It returns ok=false (never an error) for anything else — non-IPv4
// EtherType, non-TCP protocol, or a frame too short to hold its own
// declared headers — since §4.6 requires such frames to be ignored
// silently rather than treated as a parse failure.
func ParseFrame(captured []byte) (frame *Frame, ok bool) {
	if len(captured) < ethernetHeaderLen {
		return nil, false
	}
	if binary.LittleEndian.Uint16(captured[12:14]) != wireIPv4EtherType {
		return nil, false
	}

	pkt := gopacket.NewPacket(captured, layers.LayerTypeEthernet, gopacket.NoCopy)

	ipLayer, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok || ipLayer == nil {
		return nil, false
	}
	if ipLayer.Protocol != layers.IPProtocolTCP {
		return nil, false
	}

	tcpLayer, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
	if !ok || tcpLayer == nil {
		return nil, false
	}

	headerBytes := ethernetHeaderLen + int(ipLayer.IHL)*4 + int(tcpLayer.DataOffset)*4
	if headerBytes > len(captured) {
		return nil, false
	}

	return &Frame{
		SrcIP:   ipLayer.SrcIP,
		DstIP:   ipLayer.DstIP,
		SrcPort: uint16(tcpLayer.SrcPort),
		DstPort: uint16(tcpLayer.DstPort),
		FIN:     tcpLayer.FIN,
		RST:     tcpLayer.RST,
		Payload: captured[headerBytes:],
	}, true
}
