package manager

import (
	"testing"
	"time"

	"Go2NetWindow/internal/model"

	"github.com/stretchr/testify/require"
)

func TestReplayerCutsByCaptureTime(t *testing.T) {
	w := &recordingWriter{}
	r, err := NewReplayer(time.Second, w)
	require.NoError(t, err)
	require.Nil(t, r.Flush())

	t0 := time.Unix(1700000000, 0)
	require.True(t, r.Ingest(tcpObs(t0, model.FlagSYN)))
	require.True(t, r.Ingest(tcpObs(t0.Add(500*time.Millisecond), model.FlagSYN)))
	require.False(t, r.Ingest(&model.PacketObservation{Timestamp: t0.Add(600 * time.Millisecond)}))
	require.True(t, r.Ingest(tcpObs(t0.Add(2200*time.Millisecond), model.FlagRST)))
	require.Equal(t, uint64(2), r.Windows())

	last := r.Flush()
	require.NotNil(t, last)

	windows := w.snapshot()
	require.Len(t, windows, 3)

	require.Equal(t, uint64(2), windows[0].Stats.Packets)
	require.True(t, t0.Equal(windows[0].Stats.Opened))
	require.True(t, t0.Add(time.Second).Equal(windows[0].Stats.Closed))
	require.Equal(t, 1.0, windows[0].Features[model.FeatFlagS0])

	require.Equal(t, uint64(0), windows[1].Stats.Packets)
	require.Equal(t, model.FeatureVector{1.0}, windows[1].Features)

	require.Equal(t, uint64(1), windows[2].Stats.Packets)
	require.Equal(t, 1.0, windows[2].Features[model.FeatFlagRSTR])
	require.True(t, t0.Add(3*time.Second).Equal(windows[2].Stats.Closed))
	require.Equal(t, uint64(3), last.Seq)
}

func TestReplayerBoundaryBelongsToNextWindow(t *testing.T) {
	w := &recordingWriter{}
	r, err := NewReplayer(time.Second, w)
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 0)
	r.Ingest(tcpObs(t0, model.FlagACK))
	r.Ingest(tcpObs(t0.Add(time.Second), model.FlagACK))
	r.Flush()

	windows := w.snapshot()
	require.Len(t, windows, 2)
	require.Equal(t, uint64(1), windows[0].Stats.Packets)
	require.Equal(t, uint64(1), windows[1].Stats.Packets)
}

func TestNewReplayerRejectsNonPositiveDuration(t *testing.T) {
	_, err := NewReplayer(0)
	require.Error(t, err)
	_, err = NewReplayer(-time.Second)
	require.Error(t, err)
}

func TestReplayerSkipsClockJumps(t *testing.T) {
	w := &recordingWriter{}
	r, err := NewReplayer(time.Second, w)
	require.NoError(t, err)

	bogus := time.Unix(0, 0)
	actual := time.Date(2024, 3, 1, 10, 0, 0, 500_000_000, time.UTC)
	require.True(t, r.Ingest(tcpObs(bogus, model.FlagSYN)))
	require.True(t, r.Ingest(tcpObs(actual, model.FlagACK)))
	require.Equal(t, uint64(1), r.Windows())

	r.Flush()
	windows := w.snapshot()
	require.Len(t, windows, 2)
	require.Equal(t, uint64(1), windows[0].Stats.Packets)

	last := windows[1].Stats
	require.Equal(t, uint64(1), last.Packets)
	require.False(t, actual.Before(last.Opened))
	require.True(t, actual.Before(last.Closed))
	require.Equal(t, time.Second, last.Closed.Sub(last.Opened))
}

func TestReplayerEmitsBoundedGaps(t *testing.T) {
	w := &recordingWriter{}
	r, err := NewReplayer(time.Second, w)
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 0)
	r.Ingest(tcpObs(t0, model.FlagACK))
	r.Ingest(tcpObs(t0.Add((maxGapWindows+1)*time.Second), model.FlagACK))
	require.Equal(t, uint64(maxGapWindows+1), r.Windows())
}
