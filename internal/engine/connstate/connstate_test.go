package connstate

import (
	"testing"

	"Go2NetWindow/internal/model"

	"github.com/stretchr/testify/require"
)

func TestMapKnownPatterns(t *testing.T) {
	cases := []struct {
		bits model.ControlBits
		want model.ConnState
	}{
		{model.FlagSYN, model.StateAttempt},
		{model.FlagSYN | model.FlagACK, model.StateAccepted},
		{model.FlagACK, model.StateEstablished},
		{model.FlagPSH | model.FlagACK, model.StateEstablished},
		{model.FlagFIN, model.StateEstablished},
		{model.FlagRST, model.StateReset},
		{model.FlagRST | model.FlagACK, model.StateReset},
	}
	for _, c := range cases {
		got, ok := Map(c.bits)
		require.True(t, ok, "bits %#x", c.bits)
		require.Equal(t, c.want, got, "bits %#x", c.bits)
	}
}

func TestMapIgnoresOtherPatterns(t *testing.T) {
	for _, bits := range []model.ControlBits{
		0,
		model.FlagFIN | model.FlagACK,
		model.FlagSYN | model.FlagECE | model.FlagCWR,
		model.FlagURG,
		model.FlagPSH | model.FlagACK | model.FlagURG,
		model.FlagSYN | model.FlagRST,
	} {
		_, ok := Map(bits)
		require.False(t, ok, "bits %#x", bits)
	}
}
