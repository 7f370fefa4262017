//go:build linux

package netio

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// readTimeout bounds each individual read so the duration-based capture
// loop in Run can still notice that its deadline has passed even when no
// traffic arrives.
const readTimeout = 200 * time.Millisecond

// LinuxPacketSource captures raw Ethernet frames from a single interface
// via an AF_PACKET/SOCK_RAW socket bound to every EtherType.
type LinuxPacketSource struct {
	conn net.PacketConn

	mu     sync.Mutex
	closed bool
}

// NewLinuxPacketSource opens and binds a raw capture socket on ifName.
// §6 requires the tool to "require Ethernet link-layer"; binding an
// AF_PACKET socket to a non-Ethernet interface (e.g. a tunnel device with
// no link-layer header) still succeeds at the socket layer, so callers
// should pair this with an interface-type check from SelectInterface.
func NewLinuxPacketSource(ifName string) (*LinuxPacketSource, error) {
	iface, err := net.InterfaceByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("netio: resolve interface %q: %w", ifName, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("netio: open AF_PACKET socket: %w", err)
	}

	addr := unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, &addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("netio: bind AF_PACKET socket to %q: %w", ifName, err)
	}

	file := os.NewFile(uintptr(fd), "ptrid-capture-"+ifName)
	conn, err := net.FilePacketConn(file)
	_ = file.Close() // FilePacketConn dup's the fd; release this copy.
	if err != nil {
		return nil, fmt.Errorf("netio: wrap AF_PACKET socket for %q: %w", ifName, err)
	}

	return &LinuxPacketSource{conn: conn}, nil
}

func htons(v uint16) uint16 {
	return (v << 8 & 0xff00) | (v >> 8)
}

// ReadPacket blocks for at most readTimeout waiting for the next frame. On
// a timeout it returns ErrNoPacket unless ctx has already been canceled.
func (s *LinuxPacketSource) ReadPacket(ctx context.Context) (CapturedPacket, error) {
	if err := ctx.Err(); err != nil {
		return CapturedPacket{}, err
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return CapturedPacket{}, fmt.Errorf("netio: set read deadline: %w", err)
	}

	buf := make([]byte, 65536)
	n, _, err := s.conn.ReadFrom(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			if cerr := ctx.Err(); cerr != nil {
				return CapturedPacket{}, cerr
			}
			return CapturedPacket{}, ErrNoPacket
		}
		return CapturedPacket{}, fmt.Errorf("netio: read capture frame: %w", err)
	}

	return CapturedPacket{Timestamp: time.Now(), Data: buf[:n]}, nil
}

// Close releases the underlying socket.
func (s *LinuxPacketSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
