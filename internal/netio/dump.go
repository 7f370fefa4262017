package netio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// snapshotLength caps the per-packet bytes written to the dump; 65536 is
// large enough to hold any frame this classifier parses whole.
const snapshotLength = 65536

// Dump writes every captured packet to a single pcap file, named by
// timestamp under a save directory, per §6's "Packet dump" interface.
type Dump struct {
	file   *os.File
	writer *pcapgo.Writer
}

// OpenDump creates a new timestamped pcap file under saveDir.
func OpenDump(saveDir string, startedAt time.Time) (*Dump, error) {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return nil, fmt.Errorf("netio: create save directory %q: %w", saveDir, err)
	}

	name := filepath.Join(saveDir, fmt.Sprintf("ptrid-%s.pcap", startedAt.UTC().Format("20060102-150405")))
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("netio: create pcap dump %q: %w", name, err)
	}

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(snapshotLength, layers.LinkTypeEthernet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("netio: write pcap header to %q: %w", name, err)
	}

	return &Dump{file: f, writer: w}, nil
}

// Write appends one captured packet to the dump.
func (d *Dump) Write(pkt CapturedPacket) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     pkt.Timestamp,
		CaptureLength: len(pkt.Data),
		Length:        len(pkt.Data),
	}
	if err := d.writer.WritePacket(ci, pkt.Data); err != nil {
		return fmt.Errorf("netio: write packet to pcap dump: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying dump file.
func (d *Dump) Close() error {
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("netio: close pcap dump: %w", err)
	}
	return nil
}
