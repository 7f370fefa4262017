package netio

import (
	"context"
	"errors"
	"time"
)

// CapturedPacket pairs one captured frame's raw bytes with the wall-clock
// time it was captured, mirroring the library-level (pcap_packet_header,
// bytes) tuple the classifier consumes.
type CapturedPacket struct {
	Timestamp time.Time
	Data      []byte
}

// PacketSource yields captured packets one at a time. Implementations
// (capture_linux.go's AF_PACKET socket, or a pcap file reader in tests)
// block for at most their own internal timeout per call.
type PacketSource interface {
	ReadPacket(ctx context.Context) (CapturedPacket, error)
	Close() error
}

// ErrSourceClosed is returned by a PacketSource once Close has been called
// or the underlying capture handle has been torn down.
var ErrSourceClosed = errors.New("netio: packet source closed")

// ErrNoPacket is returned by a PacketSource's ReadPacket when its internal
// read timeout elapsed without a frame arriving. Run treats it as "try
// again", not as an error or an empty packet.
var ErrNoPacket = errors.New("netio: no packet available before internal read timeout")

// Run drives source for duration, invoking handle synchronously once per
// packet in arrival order. The classification engine is single-threaded
// cooperative throughout (§5): there are no background goroutines here,
// and the only suspension points are between packets. Run returns nil when
// the wall-clock duration elapses or ctx is canceled, and otherwise
// propagates the source's error.
func Run(ctx context.Context, source PacketSource, duration time.Duration, handle func(CapturedPacket)) error {
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		pkt, err := source.ReadPacket(ctx)
		if err != nil {
			if errors.Is(err, ErrNoPacket) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrSourceClosed) {
				return nil
			}
			return err
		}
		handle(pkt)
	}
	return nil
}
