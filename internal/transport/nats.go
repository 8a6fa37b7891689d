package transport

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"Go2NetWindow/internal/config"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// NATSLink publishes every outbound record on one subject and reads inbound
// lines from another. Each message carries one record.
type NATSLink struct {
	nc          *nats.Conn
	sub         *nats.Subscription
	msgs        chan *nats.Msg
	subject     string
	readTimeout time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// DialNATS connects to the NATS server and subscribes to the results subject.
func DialNATS(cfg config.NATSConfig) (*NATSLink, error) {
	if cfg.FeaturesSubject == "" || cfg.ResultsSubject == "" {
		return nil, errors.New("nats features_subject and results_subject are required")
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("gonw"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}

	l := &NATSLink{
		nc:          nc,
		msgs:        make(chan *nats.Msg, 256),
		subject:     cfg.FeaturesSubject,
		readTimeout: readTimeout(cfg.ReadTimeout),
		done:        make(chan struct{}),
	}
	l.sub, err = nc.ChanSubscribe(cfg.ResultsSubject, l.msgs)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", cfg.ResultsSubject, err)
	}
	log.Printf("Connected to NATS server at %s, publishing to '%s', reading '%s'", cfg.URL, cfg.FeaturesSubject, cfg.ResultsSubject)
	return l, nil
}

func (l *NATSLink) Name() string {
	return "nats:" + l.subject
}

// WriteLine publishes one record.
func (l *NATSLink) WriteLine(line string) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return l.nc.Publish(l.subject, []byte(line))
}

// ReadLine returns the next result message, or a timeout error when none
// arrives within the read timeout.
func (l *NATSLink) ReadLine() (string, error) {
	timer := time.NewTimer(l.readTimeout)
	defer timer.Stop()

	select {
	case msg := <-l.msgs:
		return strings.TrimRight(string(msg.Data), "\r\n"), nil
	case <-timer.C:
		return "", errReadTimeout
	case <-l.done:
		return "", ErrClosed
	}
}

// Close unsubscribes and drains the NATS connection.
func (l *NATSLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		if l.sub != nil {
			l.sub.Unsubscribe()
		}
		err = l.nc.Drain()
		log.Println("NATS connection drained and closed.")
	})
	return err
}
