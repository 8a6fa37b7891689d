// Package transport provides the duplex line-oriented link to the downstream
// classifier. Any byte stream (serial device, TCP socket) or message bus can
// back a Link.
package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"Go2NetWindow/internal/config"

	log "github.com/sirupsen/logrus"
)

// ErrClosed is returned by ReadLine once the link has been closed.
var ErrClosed = errors.New("transport: link closed")

// errReadTimeout reports a read that returned no data within the read
// timeout. It carries no meaning beyond "try again".
var errReadTimeout = &timeoutError{}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "transport: read timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }

// Link is a newline-delimited duplex text channel.
type Link interface {
	// WriteLine writes one record, appending the newline terminator if missing.
	WriteLine(line string) error
	// ReadLine blocks for the next inbound line, returned without its terminator.
	ReadLine() (string, error)
	Close() error
	// Name describes the link endpoint for logs.
	Name() string
}

// Open creates the link selected by cfg.Type.
func Open(cfg config.TransportConfig) (Link, error) {
	switch cfg.Type {
	case "serial":
		return OpenSerial(cfg.Serial)
	case "tcp":
		return DialTCP(cfg.TCP)
	case "nats":
		return DialNATS(cfg.NATS)
	case "none", "":
		return NewNopLink(), nil
	default:
		return nil, fmt.Errorf("unknown transport type %q", cfg.Type)
	}
}

// OpenOrNop opens the configured link and falls back to a NopLink when the
// link cannot be established, so aggregation keeps running without a sink.
func OpenOrNop(cfg config.TransportConfig) Link {
	link, err := Open(cfg)
	if err != nil {
		log.Warnf("Transport %q unavailable, feature vectors will be discarded: %v", cfg.Type, err)
		return NewNopLink()
	}
	log.Printf("Opened %s transport: %s", cfg.Type, link.Name())
	return link
}

// IsTimeout reports whether err is a read timeout that should simply be retried.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func readTimeout(s string) time.Duration {
	d, err := config.ParseDuration(s)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
