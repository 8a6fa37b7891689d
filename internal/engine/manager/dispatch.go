package manager

import (
	"time"

	"Go2NetWindow/internal/engine/feature"
	"Go2NetWindow/internal/metrics"
	"Go2NetWindow/internal/model"

	log "github.com/sirupsen/logrus"
)

// dispatcher numbers retired windows, encodes them and fans them out to
// the writers. Callers serialize dispatch.
type dispatcher struct {
	duration time.Duration
	writers  []model.Writer
	seq      uint64
}

func newDispatcher(duration time.Duration, writers []model.Writer) *dispatcher {
	return &dispatcher{duration: duration, writers: writers}
}

func (d *dispatcher) dispatch(stats model.WindowStats) *model.Window {
	d.seq++
	w := &model.Window{
		Seq:      d.seq,
		Stats:    stats,
		Features: feature.Encode(stats, d.duration),
	}

	metrics.WindowsEmitted.Inc()
	metrics.WindowPackets.Set(float64(stats.Packets))

	for _, writer := range d.writers {
		if err := writer.Write(w); err != nil {
			metrics.WriterErrors.WithLabelValues(writer.Name()).Inc()
			log.Printf("Error writing window %d to %s: %v", w.Seq, writer.Name(), err)
		}
	}
	return w
}

// LogWriter logs every window's feature vector at debug level.
type LogWriter struct{}

func (LogWriter) Name() string { return "log" }

func (LogWriter) Write(w *model.Window) error {
	log.WithFields(log.Fields{
		"seq":     w.Seq,
		"packets": w.Stats.Packets,
	}).Debugf("Sending feature vector: %s", w.Features)
	return nil
}
