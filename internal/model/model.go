package model

import (
	"net/netip"
	"strings"
	"time"
)

// Protocol is the transport protocol family of an observed packet.
type Protocol uint8

const (
	ProtoOther Protocol = iota
	ProtoTCP
	ProtoUDP
	ProtoICMP
)

func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	case ProtoICMP:
		return "icmp"
	default:
		return "other"
	}
}

// ControlBits mirrors the TCP flags octet.
type ControlBits uint8

const (
	FlagFIN ControlBits = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG
	FlagECE
	FlagCWR
)

// Has reports whether every bit in mask is set.
func (b ControlBits) Has(mask ControlBits) bool {
	return b&mask == mask
}

var flagNames = [8]string{"FIN", "SYN", "RST", "PSH", "ACK", "URG", "ECE", "CWR"}

// String lists the set flags joined by "|", or "-" when none is set.
func (b ControlBits) String() string {
	if b == 0 {
		return "-"
	}
	var sb strings.Builder
	for i, name := range flagNames {
		if b&(1<<i) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(name)
	}
	return sb.String()
}

// PacketObservation holds the metadata extracted from a single packet.
// It is consumed once by the aggregator and never retained.
type PacketObservation struct {
	Timestamp      time.Time
	Protocol       Protocol
	SrcAddr        netip.Addr
	DstAddr        netip.Addr
	SrcPort        uint16
	DstPort        uint16
	Flags          ControlBits
	PayloadLen     int
	FragmentOffset uint16
}

// IsIP reports whether the observation carries a usable IP header.
func (o *PacketObservation) IsIP() bool {
	return o != nil && o.SrcAddr.IsValid() && o.DstAddr.IsValid() && o.PayloadLen >= 0
}

// Service is the coarse category of a destination port.
type Service uint8

const (
	ServiceUnknown Service = iota
	ServiceHTTP
	ServiceOther
)

func (s Service) String() string {
	switch s {
	case ServiceHTTP:
		return "http"
	case ServiceOther:
		return "other"
	default:
		return "unknown"
	}
}

// ConnState is the connection phase inferred from a TCP flag pattern.
// The declaration order is also the tie-break order for the dominant state.
type ConnState uint8

const (
	StateReset ConnState = iota
	StateAttempt
	StateAccepted
	StateEstablished

	NumConnStates = 4
)

// String returns the label used by the downstream feature names.
func (s ConnState) String() string {
	switch s {
	case StateReset:
		return "RSTR"
	case StateAttempt:
		return "S0"
	case StateAccepted:
		return "S1"
	case StateEstablished:
		return "SF"
	default:
		return "unknown"
	}
}

// WindowStats are the counters accumulated over one window. A WindowStats
// value is self-contained: copying it produces an independent snapshot.
type WindowStats struct {
	Opened time.Time
	Closed time.Time

	Packets uint64
	TCP     uint64
	UDP     uint64
	ICMP    uint64

	SrcBytes uint64
	DstBytes uint64

	SynSeen      uint64
	ResetRelated uint64

	ServiceHTTP  uint64
	ServiceOther uint64

	States [NumConnStates]uint64

	WrongFragment bool
	Urgent        bool
	Land          bool
}

// Window is a closed window as handed to writers.
type Window struct {
	Seq      uint64
	Stats    WindowStats
	Features FeatureVector
}

// Result is one classification line received from the downstream consumer.
type Result struct {
	Line       string
	ReceivedAt time.Time
}
