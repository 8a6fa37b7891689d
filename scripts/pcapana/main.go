package main

import (
	"flag"
	"fmt"
	"os"

	"Go2NetWindow/internal/engine/connstate"
	"Go2NetWindow/internal/engine/protocol"
	"Go2NetWindow/internal/engine/service"
	"Go2NetWindow/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	log "github.com/sirupsen/logrus"
)

// Prints how the first packets of a capture are seen by window ingest:
// protocol, endpoints, flags, connection state and service.
func main() {
	limit := flag.Int("n", 20, "number of packets to print, 0 for all")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pcapana [-n 20] <path_to_pcap_file>")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	pcapFilePath := flag.Arg(0)

	handle, err := pcap.OpenOffline(pcapFilePath)
	if err != nil {
		log.Fatal(err)
	}
	defer handle.Close()

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())

	i, skipped := 0, 0
	for packet := range packetSource.Packets() {
		obs, err := protocol.ParsePacket(packet)
		if err != nil {
			skipped++
			continue
		}
		i++

		state := "-"
		if obs.Protocol == model.ProtoTCP {
			if s, ok := connstate.Map(obs.Flags); ok {
				state = s.String()
			}
		}
		fmt.Printf("[%s] %-4s %s:%d -> %s:%d flags=%s state=%s service=%s len=%d frag=%d\n",
			obs.Timestamp.Format("15:04:05.000"), obs.Protocol,
			obs.SrcAddr, obs.SrcPort, obs.DstAddr, obs.DstPort,
			obs.Flags, state, service.Classify(obs.DstPort), obs.PayloadLen, obs.FragmentOffset,
		)
		if *limit > 0 && i >= *limit {
			break
		}
	}
	log.Printf("Printed %d packets, skipped %d non-IP frames.", i, skipped)
}
