package manager

import (
	"errors"
	"time"

	"Go2NetWindow/internal/engine/window"
	"Go2NetWindow/internal/metrics"
	"Go2NetWindow/internal/model"

	log "github.com/sirupsen/logrus"
)

// maxGapWindows bounds the empty windows emitted for one gap in a capture.
// A longer gap (usually a clock jump) skips ahead instead.
const maxGapWindows = 3600

// Replayer cuts windows by capture timestamp instead of wall clock, so a
// recorded capture yields the windows it would have produced live. It is
// not safe for concurrent use.
type Replayer struct {
	agg        *window.Aggregator
	dispatcher *dispatcher
	opened     time.Time
	started    bool
}

// NewReplayer creates a Replayer emitting windows of length duration.
func NewReplayer(duration time.Duration, writers ...model.Writer) (*Replayer, error) {
	if duration <= 0 {
		return nil, errors.New("window duration must be a positive duration")
	}
	return &Replayer{dispatcher: newDispatcher(duration, writers)}, nil
}

// Ingest applies obs to the window covering its timestamp, first closing
// every window that ends at or before it. Windows spanning a gap in the
// capture are emitted empty, up to maxGapWindows of them; past that the
// window grid is moved to the packet without emitting the gap. Observations
// older than the open window are counted in it.
func (r *Replayer) Ingest(obs *model.PacketObservation) bool {
	if !obs.IsIP() {
		metrics.PacketsDiscarded.Inc()
		return false
	}
	if !r.started {
		r.agg = window.New(obs.Timestamp)
		r.opened = obs.Timestamp
		r.started = true
	}

	d := r.dispatcher.duration
	if end := r.opened.Add(d); !obs.Timestamp.Before(end) {
		r.dispatcher.dispatch(r.agg.Roll(end))
		r.opened = end

		if gap := obs.Timestamp.Sub(r.opened) / d; gap > maxGapWindows {
			log.Warnf("Capture time jumps %s at %s, skipping %d empty windows",
				obs.Timestamp.Sub(r.opened), r.opened.Format(time.RFC3339Nano), gap)
			r.opened = r.opened.Add(gap * d)
			r.agg.Roll(r.opened)
		}
	}
	for end := r.opened.Add(d); !obs.Timestamp.Before(end); end = r.opened.Add(d) {
		r.dispatcher.dispatch(r.agg.Roll(end))
		r.opened = end
	}
	return ingest(r.agg, obs)
}

// Flush emits the trailing window, if any packet opened one.
func (r *Replayer) Flush() *model.Window {
	if !r.started {
		return nil
	}
	end := r.opened.Add(r.dispatcher.duration)
	w := r.dispatcher.dispatch(r.agg.Roll(end))
	r.started = false
	return w
}

// Windows returns the number of windows emitted so far.
func (r *Replayer) Windows() uint64 {
	return r.dispatcher.seq
}
