package netio

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoSuitableInterface is returned by SelectInterface when no interface
// on the host qualifies.
var ErrNoSuitableInterface = errors.New("netio: no up, non-loopback, Ethernet interface found")

// SelectInterface auto-selects the first up, non-loopback interface that
// reports an Ethernet (IEEE 802) link-layer, matching the external
// interface's "requires Ethernet link-layer" contract in §6.
//
// §9(iv) names a linked-list traversal bug in the original capture helper
// that skips the last interface in the list; this implementation considers
// every interface the OS reports, fixing that bug rather than preserving
// it, per the redesign note attached to it.
func SelectInterface() (net.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.Interface{}, fmt.Errorf("netio: list interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) != 6 {
			// Not an Ethernet-style MAC (e.g. a tunnel or PPP device).
			continue
		}
		return iface, nil
	}
	return net.Interface{}, ErrNoSuitableInterface
}
