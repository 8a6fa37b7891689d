package pcap

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Go2NetWindow/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/require"
)

// writeCapture writes a small capture: two TCP packets, one UDP packet and
// one ARP frame that the reader must skip.
func writeCapture(t *testing.T) (string, time.Time) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: layers.EthernetTypeIPv4,
	}
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	start := time.Unix(1700000000, 0)

	write := func(ts time.Time, ls ...gopacket.SerializableLayer) {
		buf := gopacket.NewSerializeBuffer()
		require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
		ci := gopacket.CaptureInfo{Timestamp: ts, CaptureLength: len(buf.Bytes()), Length: len(buf.Bytes())}
		require.NoError(t, w.WritePacket(ci, buf.Bytes()))
	}

	for i, flags := range []*layers.TCP{{SrcPort: 40000, DstPort: 80, SYN: true}, {SrcPort: 40000, DstPort: 80, ACK: true}} {
		ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolTCP, SrcIP: net.IP{10, 0, 0, 2}, DstIP: net.IP{10, 0, 0, 1}}
		require.NoError(t, flags.SetNetworkLayerForChecksum(ip))
		write(start.Add(time.Duration(i)*time.Millisecond), eth, ip, flags, gopacket.Payload(make([]byte, 10)))
	}

	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: net.IP{10, 0, 0, 2}, DstIP: net.IP{10, 0, 0, 1}}
	udp := &layers.UDP{SrcPort: 5353, DstPort: 53}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	write(start.Add(3*time.Millisecond), eth, ip, udp, gopacket.Payload(make([]byte, 20)))

	arpEth := *eth
	arpEth.EthernetType = layers.EthernetTypeARP
	write(start.Add(4*time.Millisecond), &arpEth, &layers.ARP{
		AddrType: layers.LinkTypeEthernet, Protocol: layers.EthernetTypeIPv4,
		HwAddressSize: 6, ProtAddressSize: 4, Operation: layers.ARPRequest,
		SourceHwAddress: []byte{0, 0x11, 0x22, 0x33, 0x44, 0x55}, SourceProtAddress: []byte{10, 0, 0, 2},
		DstHwAddress: []byte{0, 0, 0, 0, 0, 0}, DstProtAddress: []byte{10, 0, 0, 1},
	})

	return path, start
}

func TestReader_ReadPackets(t *testing.T) {
	path, start := writeCapture(t)

	reader, err := OpenOffline(path)
	require.NoError(t, err)
	defer reader.Close()

	var got []*model.PacketObservation
	n, err := reader.ReadPackets(context.Background(), func(obs *model.PacketObservation) {
		got = append(got, obs)
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, got, 3)

	require.Equal(t, model.ProtoTCP, got[0].Protocol)
	require.Equal(t, model.FlagSYN, got[0].Flags)
	require.True(t, start.Equal(got[0].Timestamp))
	require.Equal(t, model.FlagACK, got[1].Flags)
	require.Equal(t, model.ProtoUDP, got[2].Protocol)
	require.Equal(t, 20, got[2].PayloadLen)
}

func TestReader_CancelledContext(t *testing.T) {
	path, _ := writeCapture(t)

	reader, err := OpenOffline(path)
	require.NoError(t, err)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := reader.ReadPackets(ctx, func(*model.PacketObservation) {})
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestOpenOfflineErrors(t *testing.T) {
	_, err := OpenOffline(filepath.Join(t.TempDir(), "missing.pcap"))
	require.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.pcap")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a capture file"), 0o644))
	_, err = OpenOffline(garbage)
	require.Error(t, err)
}

func TestOpenLiveRequiresIface(t *testing.T) {
	_, err := OpenLive(LiveOptions{})
	require.Error(t, err)
}
