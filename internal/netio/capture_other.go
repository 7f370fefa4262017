//go:build !linux

package netio

import (
	"context"
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupportedPlatform is returned by NewLinuxPacketSource's stand-in on
// any platform without AF_PACKET support.
var ErrUnsupportedPlatform = errors.New("netio: raw AF_PACKET capture is only implemented on linux")

// LinuxPacketSource is a non-functional stand-in on non-Linux platforms so
// the package still builds; constructing one always fails.
type LinuxPacketSource struct{}

// NewLinuxPacketSource always fails outside Linux.
func NewLinuxPacketSource(ifName string) (*LinuxPacketSource, error) {
	return nil, fmt.Errorf("%w (GOOS=%s)", ErrUnsupportedPlatform, runtime.GOOS)
}

func (s *LinuxPacketSource) ReadPacket(ctx context.Context) (CapturedPacket, error) {
	return CapturedPacket{}, ErrUnsupportedPlatform
}

func (s *LinuxPacketSource) Close() error { return nil }
