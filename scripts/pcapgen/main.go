package main

import (
	"flag"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	log "github.com/sirupsen/logrus"
)

var (
	servicePorts = []layers.TCPPort{80, 443, 21, 22, 25, 110, 143, 3389, 8080, 9000}
	tcpFlagSets  = []func(*layers.TCP){
		func(t *layers.TCP) { t.SYN = true },
		func(t *layers.TCP) { t.SYN, t.ACK = true, true },
		func(t *layers.TCP) { t.ACK = true },
		func(t *layers.TCP) { t.PSH, t.ACK = true, true },
		func(t *layers.TCP) { t.FIN = true },
		func(t *layers.TCP) { t.RST = true },
		func(t *layers.TCP) { t.RST, t.ACK = true, true },
		func(t *layers.TCP) { t.ACK, t.URG = true, true },
	}
	ethLayer = &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: layers.EthernetTypeIPv4,
	}
)

func randomIP(r *rand.Rand) net.IP {
	return net.IP{10, byte(r.Intn(4)), byte(r.Intn(256)), byte(r.Intn(254) + 1)}
}

// buildPacket returns the layers of one random packet: mostly TCP with a mix
// of flag patterns, some UDP, some ICMP, and the occasional land packet or
// fragment.
func buildPacket(r *rand.Rand) []gopacket.SerializableLayer {
	ip := &layers.IPv4{Version: 4, TTL: 64, SrcIP: randomIP(r), DstIP: randomIP(r)}
	payload := gopacket.Payload(make([]byte, r.Intn(1400)))
	r.Read(payload)

	switch p := r.Intn(100); {
	case p < 70:
		ip.Protocol = layers.IPProtocolTCP
		tcp := &layers.TCP{
			SrcPort: layers.TCPPort(r.Intn(65535-1024) + 1024),
			DstPort: servicePorts[r.Intn(len(servicePorts))],
			Seq:     r.Uint32(),
			Window:  14600,
		}
		tcpFlagSets[r.Intn(len(tcpFlagSets))](tcp)
		if r.Intn(50) == 0 {
			ip.DstIP, tcp.DstPort = ip.SrcIP, tcp.SrcPort
		}
		tcp.SetNetworkLayerForChecksum(ip)
		return []gopacket.SerializableLayer{ethLayer, ip, tcp, payload}
	case p < 90:
		ip.Protocol = layers.IPProtocolUDP
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(r.Intn(65535-1024) + 1024),
			DstPort: layers.UDPPort([]uint16{53, 123, 5353}[r.Intn(3)]),
		}
		udp.SetNetworkLayerForChecksum(ip)
		return []gopacket.SerializableLayer{ethLayer, ip, udp, payload[:min(len(payload), 512)]}
	case p < 98:
		ip.Protocol = layers.IPProtocolICMPv4
		icmp := &layers.ICMPv4{
			TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
			Id:       uint16(r.Intn(65536)),
			Seq:      uint16(r.Intn(65536)),
		}
		return []gopacket.SerializableLayer{ethLayer, ip, icmp, payload[:min(len(payload), 56)]}
	default:
		ip.Protocol = layers.IPProtocolTCP
		ip.FragOffset = uint16(r.Intn(100) + 1)
		return []gopacket.SerializableLayer{ethLayer, ip, payload}
	}
}

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	packetCount := flag.Int("c", 1000, "Number of packets to generate")
	span := flag.Duration("span", 10*time.Second, "Capture time the packets are spread over")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	r := rand.New(rand.NewSource(*seed))
	start := time.Now()
	step := time.Duration(0)
	if *packetCount > 0 {
		step = *span / time.Duration(*packetCount)
	}

	log.Printf("Generating %d packets over %s into %s...", *packetCount, *span, *outputFile)

	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	for i := 0; i < *packetCount; i++ {
		if (i+1)%100000 == 0 {
			log.Printf("Generated %d packets...", i+1)
		}

		buf := gopacket.NewSerializeBuffer()
		if err := gopacket.SerializeLayers(buf, opts, buildPacket(r)...); err != nil {
			log.Fatalf("Failed to serialize layers: %v", err)
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     start.Add(time.Duration(i) * step),
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := pcapWriter.WritePacket(ci, buf.Bytes()); err != nil {
			log.Fatalf("Failed to write packet: %v", err)
		}
	}

	log.Printf("Successfully generated %d packets into %s.", *packetCount, *outputFile)
}
