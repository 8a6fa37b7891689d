// Package window holds the live per-window counters and the operations that
// mutate and retire them.
package window

import (
	"sync"
	"time"

	"Go2NetWindow/internal/engine/connstate"
	"Go2NetWindow/internal/engine/service"
	"Go2NetWindow/internal/model"
)

// Aggregator owns the single live WindowStats. Ingest and Roll share one
// mutex, so an observation lands in exactly one window.
type Aggregator struct {
	mu    sync.Mutex
	stats model.WindowStats
}

// New creates an aggregator whose first window opens at now.
func New(now time.Time) *Aggregator {
	return &Aggregator{stats: model.WindowStats{Opened: now}}
}

// Ingest applies one observation to the live window. It returns false when
// the observation was discarded as not IP-level.
func (a *Aggregator) Ingest(obs *model.PacketObservation) bool {
	if !obs.IsIP() {
		return false
	}

	a.mu.Lock()
	apply(&a.stats, obs)
	a.mu.Unlock()
	return true
}

// Roll retires the live window at now and installs a zeroed one in the same
// critical section. The returned stats are no longer shared.
func (a *Aggregator) Roll(now time.Time) model.WindowStats {
	a.mu.Lock()
	retired := a.stats
	a.stats = model.WindowStats{Opened: now}
	a.mu.Unlock()

	retired.Closed = now
	return retired
}

// Current returns a copy of the live window without resetting it.
func (a *Aggregator) Current() model.WindowStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func apply(s *model.WindowStats, obs *model.PacketObservation) {
	s.Packets++

	switch obs.Protocol {
	case model.ProtoTCP:
		s.TCP++
		countService(s, obs.DstPort)
		countBytes(s, obs.PayloadLen)

		if state, ok := connstate.Map(obs.Flags); ok {
			s.States[state]++
		}
		if obs.Flags.Has(model.FlagURG) {
			s.Urgent = true
		}
		if obs.Flags.Has(model.FlagSYN) {
			s.SynSeen++
		}
		if obs.Flags.Has(model.FlagRST) {
			s.ResetRelated++
		}
		if obs.SrcAddr == obs.DstAddr && obs.SrcPort == obs.DstPort {
			s.Land = true
		}
		if obs.FragmentOffset > 0 {
			s.WrongFragment = true
		}
	case model.ProtoUDP:
		s.UDP++
		countService(s, obs.DstPort)
		countBytes(s, obs.PayloadLen)
	case model.ProtoICMP:
		s.ICMP++
	}
}

func countService(s *model.WindowStats, dstPort uint16) {
	switch service.Classify(dstPort) {
	case model.ServiceHTTP:
		s.ServiceHTTP++
	case model.ServiceOther:
		s.ServiceOther++
	}
}

// Source and destination byte totals are not split by direction; both
// receive the full payload length.
func countBytes(s *model.WindowStats, n int) {
	s.SrcBytes += uint64(n)
	s.DstBytes += uint64(n)
}
