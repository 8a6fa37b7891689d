// Package listener reads classification results back from the link and
// hands them to observers.
package listener

import (
	"context"
	"errors"
	"strings"
	"time"

	"Go2NetWindow/internal/metrics"
	"Go2NetWindow/internal/model"
	"Go2NetWindow/internal/transport"

	log "github.com/sirupsen/logrus"
)

const errorBackoff = 200 * time.Millisecond

// LineReader is the inbound half of a transport.Link.
type LineReader interface {
	ReadLine() (string, error)
}

// Listener forwards every non-blank inbound line to its observers.
type Listener struct {
	src       LineReader
	observers []model.ResultObserver
	backoff   time.Duration
	now       func() time.Time
}

// New creates a Listener reading from src.
func New(src LineReader, observers ...model.ResultObserver) *Listener {
	return &Listener{
		src:       src,
		observers: observers,
		backoff:   errorBackoff,
		now:       time.Now,
	}
}

// Run reads until ctx is cancelled or the source reports transport.ErrClosed.
// ReadLine is not interruptible, so a cancelled Run returns once the pending
// read completes; closing the link ends it at once.
func (l *Listener) Run(ctx context.Context) {
	log.Println("Result listener started.")
	defer log.Println("Result listener stopped.")

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := l.src.ReadLine()
		if err != nil {
			switch {
			case errors.Is(err, transport.ErrClosed):
				return
			case transport.IsTimeout(err):
				continue
			}
			metrics.TransportReadErrors.Inc()
			log.Warnf("Error reading from link: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.backoff):
			}
			continue
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		metrics.ResultsReceived.Inc()
		r := model.Result{Line: line, ReceivedAt: l.now()}
		for _, o := range l.observers {
			o.OnResult(r)
		}
	}
}

// LogObserver logs every result at info level.
type LogObserver struct{}

func (LogObserver) OnResult(r model.Result) {
	log.WithField("received_at", r.ReceivedAt.Format(time.RFC3339Nano)).Infof("Classifier result: %s", r.Line)
}
