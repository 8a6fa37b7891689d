package protocol

import (
	"errors"
	"net"
	"net/netip"
	"time"

	"Go2NetWindow/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ErrNotIP is returned for packets without a decodable IPv4 or IPv6 header.
var ErrNotIP = errors.New("not an IP packet")

// ParsePacket uses gopacket's decoded layers to extract a PacketObservation.
//
// The protocol is taken from the IP header, so non-first fragments still count
// as TCP/UDP even though their transport header is not present; ports and
// control bits are then left zero.
func ParsePacket(packet gopacket.Packet) (*model.PacketObservation, error) {
	obs := &model.PacketObservation{
		Timestamp: time.Now(),
	}
	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		obs.Timestamp = meta.Timestamp
	}

	var ipProto layers.IPProtocol
	var ipPayload []byte

	if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		obs.SrcAddr = toAddr(ip.SrcIP)
		obs.DstAddr = toAddr(ip.DstIP)
		obs.FragmentOffset = ip.FragOffset
		ipProto = ip.Protocol
		ipPayload = ip.Payload
	} else if l := packet.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		obs.SrcAddr = toAddr(ip.SrcIP)
		obs.DstAddr = toAddr(ip.DstIP)
		ipProto = ip.NextHeader
		ipPayload = ip.Payload
		if fl := packet.Layer(layers.LayerTypeIPv6Fragment); fl != nil {
			frag := fl.(*layers.IPv6Fragment)
			obs.FragmentOffset = frag.FragmentOffset
			ipProto = frag.NextHeader
			ipPayload = frag.Payload
		}
	} else {
		return nil, ErrNotIP
	}

	if !obs.SrcAddr.IsValid() || !obs.DstAddr.IsValid() {
		return nil, ErrNotIP
	}

	// Extension headers can hide the transport protocol from the IP header,
	// so a decoded transport layer takes precedence.
	switch {
	case packet.Layer(layers.LayerTypeTCP) != nil:
		ipProto = layers.IPProtocolTCP
	case packet.Layer(layers.LayerTypeUDP) != nil:
		ipProto = layers.IPProtocolUDP
	case packet.Layer(layers.LayerTypeICMPv4) != nil:
		ipProto = layers.IPProtocolICMPv4
	case packet.Layer(layers.LayerTypeICMPv6) != nil:
		ipProto = layers.IPProtocolICMPv6
	}

	switch ipProto {
	case layers.IPProtocolTCP:
		obs.Protocol = model.ProtoTCP
		obs.PayloadLen = len(ipPayload)
		if tcp := tcpLayer(packet, obs.FragmentOffset, ipPayload); tcp != nil {
			obs.SrcPort = uint16(tcp.SrcPort)
			obs.DstPort = uint16(tcp.DstPort)
			obs.Flags = controlBits(tcp)
			obs.PayloadLen = len(tcp.Payload)
		}
	case layers.IPProtocolUDP:
		obs.Protocol = model.ProtoUDP
		obs.PayloadLen = len(ipPayload)
		if udp := udpLayer(packet, obs.FragmentOffset, ipPayload); udp != nil {
			obs.SrcPort = uint16(udp.SrcPort)
			obs.DstPort = uint16(udp.DstPort)
			obs.PayloadLen = len(udp.Payload)
		}
	case layers.IPProtocolICMPv4, layers.IPProtocolICMPv6:
		obs.Protocol = model.ProtoICMP
		obs.PayloadLen = len(ipPayload)
	default:
		obs.Protocol = model.ProtoOther
		obs.PayloadLen = len(ipPayload)
	}

	return obs, nil
}

// tcpLayer returns the decoded TCP header. gopacket stops at the fragment
// layer for every fragment, so the header of a first fragment (offset 0)
// is decoded from the IP payload here.
func tcpLayer(packet gopacket.Packet, fragOffset uint16, ipPayload []byte) *layers.TCP {
	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		return l.(*layers.TCP)
	}
	if fragOffset != 0 {
		return nil
	}
	tcp := &layers.TCP{}
	if err := tcp.DecodeFromBytes(ipPayload, gopacket.NilDecodeFeedback); err != nil {
		return nil
	}
	return tcp
}

func udpLayer(packet gopacket.Packet, fragOffset uint16, ipPayload []byte) *layers.UDP {
	if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		return l.(*layers.UDP)
	}
	if fragOffset != 0 {
		return nil
	}
	udp := &layers.UDP{}
	if err := udp.DecodeFromBytes(ipPayload, gopacket.NilDecodeFeedback); err != nil {
		return nil
	}
	return udp
}

func toAddr(ip net.IP) netip.Addr {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func controlBits(tcp *layers.TCP) model.ControlBits {
	var b model.ControlBits
	if tcp.FIN {
		b |= model.FlagFIN
	}
	if tcp.SYN {
		b |= model.FlagSYN
	}
	if tcp.RST {
		b |= model.FlagRST
	}
	if tcp.PSH {
		b |= model.FlagPSH
	}
	if tcp.ACK {
		b |= model.FlagACK
	}
	if tcp.URG {
		b |= model.FlagURG
	}
	if tcp.ECE {
		b |= model.FlagECE
	}
	if tcp.CWR {
		b |= model.FlagCWR
	}
	return b
}
