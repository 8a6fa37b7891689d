package model

import (
	"math"
	"strconv"
	"strings"
)

// NumFeatures is the length of every FeatureVector.
const NumFeatures = 19

// Feature indexes. The order is part of the wire contract with the classifier.
const (
	FeatDuration = iota
	FeatProtocolType
	FeatServiceHTTP
	FeatServiceOther
	FeatFlagRSTR
	FeatFlagS0
	FeatFlagS1
	FeatFlagSF
	FeatSrcBytes
	FeatDstBytes
	FeatLand
	FeatWrongFragment
	FeatUrgent
	FeatCount
	FeatSrvCount
	FeatSerrorRate
	FeatRerrorRate
	FeatSameSrvRate
	FeatDiffSrvRate
)

// FeatureNames lists the external name of every feature, in vector order.
var FeatureNames = [NumFeatures]string{
	"duration", "protocol_type", "service_http", "service_other",
	"flag_RSTR", "flag_S0", "flag_S1", "flag_SF",
	"src_bytes", "dst_bytes", "land", "wrong_fragment", "urgent",
	"count", "srv_count", "serror_rate", "rerror_rate",
	"same_srv_rate", "diff_srv_rate",
}

// FeatureVector is the fixed-order numeric summary of one window.
type FeatureVector [NumFeatures]float64

// String renders the vector as one comma-separated line without a terminator.
func (v FeatureVector) String() string {
	var sb strings.Builder
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(FormatFloat(f))
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v FeatureVector) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Map returns the vector keyed by feature name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, name := range FeatureNames {
		m[name] = v[i]
	}
	return m
}

// FormatFloat writes f in its shortest decimal form, always keeping a
// fractional part so integral values read as "1.0" rather than "1".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
