package pcap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"Go2NetWindow/internal/engine/protocol"
	"Go2NetWindow/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"
	log "github.com/sirupsen/logrus"
)

// dataSource is the subset of a capture handle the reader needs.
type dataSource interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Reader reads packets from a pcap file or a live interface and turns them
// into PacketObservations.
type Reader struct {
	source  dataSource
	closeFn func()
	name    string
}

// LiveOptions configures a live capture handle.
type LiveOptions struct {
	Iface       string
	SnapLen     int32
	Promiscuous bool
	BPFFilter   string
	// ReadTimeout bounds each blocking read so the reader can notice
	// cancellation; it has no effect on what is captured.
	ReadTimeout time.Duration
}

// OpenOffline opens a pcap or pcapng file for reading.
func OpenOffline(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	var source dataSource
	if r, err := pcapgo.NewReader(f); err == nil {
		source = r
	} else {
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			f.Close()
			return nil, fmt.Errorf("failed to rewind capture file: %w", serr)
		}
		ng, ngErr := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
		if ngErr != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read capture header of %s: %w", filePath, err)
		}
		source = ng
	}

	return &Reader{
		source:  source,
		closeFn: func() { f.Close() },
		name:    filePath,
	}, nil
}

// OpenLive opens a network interface for live capture.
func OpenLive(opts LiveOptions) (*Reader, error) {
	if opts.Iface == "" {
		return nil, errors.New("no capture interface given")
	}
	timeout := opts.ReadTimeout
	if timeout <= 0 {
		timeout = pcap.BlockForever
	}

	handle, err := pcap.OpenLive(opts.Iface, opts.SnapLen, opts.Promiscuous, timeout)
	if err != nil {
		return nil, fmt.Errorf("error opening device %s: %w", opts.Iface, err)
	}
	if opts.BPFFilter != "" {
		if err := handle.SetBPFFilter(opts.BPFFilter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("invalid bpf filter %q: %w", opts.BPFFilter, err)
		}
	}

	return &Reader{
		source:  handle,
		closeFn: handle.Close,
		name:    opts.Iface,
	}, nil
}

// Close closes the underlying capture handle.
func (r *Reader) Close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}

// ReadPackets reads packets until the source is exhausted or ctx is
// cancelled, passing every IP packet to handler. Packets that cannot be
// parsed are skipped. It returns the number of packets handed to handler.
func (r *Reader) ReadPackets(ctx context.Context, handler func(*model.PacketObservation)) (int, error) {
	linkType := r.source.LinkType()
	delivered, skipped := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			return delivered, nil
		}

		data, ci, err := r.source.ReadPacketData()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			log.Debugf("Capture %s exhausted: %d delivered, %d skipped", r.name, delivered, skipped)
			return delivered, nil
		case errors.Is(err, pcap.NextErrorTimeoutExpired):
			continue
		default:
			return delivered, fmt.Errorf("failed to read packet from %s: %w", r.name, err)
		}

		packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		md := packet.Metadata()
		md.CaptureInfo = ci

		obs, err := protocol.ParsePacket(packet)
		if err != nil {
			skipped++
			continue
		}
		handler(obs)
		delivered++
	}
}
