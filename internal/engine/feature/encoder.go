// Package feature turns retired window counters into the fixed-order
// feature vector consumed by the downstream classifier.
package feature

import (
	"time"

	"Go2NetWindow/internal/model"
)

// IP protocol numbers reported in protocol_type.
const (
	protoCodeNone = 0
	protoCodeICMP = 1
	protoCodeTCP  = 6
	protoCodeUDP  = 17
)

// sameSrvRate and diffSrvRate are not modelled per window and are always
// emitted as zero to keep the 19-field shape.
const (
	sameSrvRate = 0.0
	diffSrvRate = 0.0
)

// Encode builds the feature vector for one retired window. duration is the
// configured window length, not the measured one. Encode is pure: the same
// stats always yield the same vector.
func Encode(s model.WindowStats, duration time.Duration) model.FeatureVector {
	var v model.FeatureVector

	v[model.FeatDuration] = duration.Seconds()
	v[model.FeatProtocolType] = protocolType(s)
	v[model.FeatServiceHTTP] = indicator(s.ServiceHTTP > 0)
	v[model.FeatServiceOther] = indicator(s.ServiceOther > 0)

	if s.TCP > 0 {
		switch Dominant(s.States) {
		case model.StateReset:
			v[model.FeatFlagRSTR] = 1
		case model.StateAttempt:
			v[model.FeatFlagS0] = 1
		case model.StateAccepted:
			v[model.FeatFlagS1] = 1
		case model.StateEstablished:
			v[model.FeatFlagSF] = 1
		}
	}

	v[model.FeatSrcBytes] = float64(s.SrcBytes)
	v[model.FeatDstBytes] = float64(s.DstBytes)
	v[model.FeatLand] = indicator(s.Land)
	v[model.FeatWrongFragment] = indicator(s.WrongFragment)
	v[model.FeatUrgent] = indicator(s.Urgent)
	v[model.FeatCount] = float64(s.Packets)
	v[model.FeatSrvCount] = float64(s.ServiceHTTP + s.ServiceOther)
	v[model.FeatSerrorRate] = rate(s.SynSeen, s.Packets)
	v[model.FeatRerrorRate] = rate(s.ResetRelated, s.Packets)
	v[model.FeatSameSrvRate] = sameSrvRate
	v[model.FeatDiffSrvRate] = diffSrvRate

	return v
}

// Dominant returns the most frequent connection state. Ties go to the state
// declared first (Reset, Attempt, Accepted, Established), so an empty
// histogram reports Reset.
func Dominant(states [model.NumConnStates]uint64) model.ConnState {
	best := model.StateReset
	for s := model.StateReset; s < model.NumConnStates; s++ {
		if states[s] > states[best] {
			best = s
		}
	}
	return best
}

// protocolType reports presence by priority TCP > UDP > ICMP, not majority.
func protocolType(s model.WindowStats) float64 {
	switch {
	case s.TCP > 0:
		return protoCodeTCP
	case s.UDP > 0:
		return protoCodeUDP
	case s.ICMP > 0:
		return protoCodeICMP
	default:
		return protoCodeNone
	}
}

func rate(n, total uint64) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(n) / float64(total)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FormatLine renders v as one outbound record, newline included.
func FormatLine(v model.FeatureVector) string {
	return v.String() + "\n"
}
