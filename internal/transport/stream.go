package transport

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// readDeadliner and writeDeadliner are implemented by connections that
// support deadlines.
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// StreamLink carries newline-delimited records over any byte stream.
// Writes are serialized; a partial line interrupted by a read timeout is
// kept and completed by the next ReadLine.
type StreamLink struct {
	rwc          io.ReadWriteCloser
	reader       *bufio.Reader
	name         string
	readTimeout  time.Duration
	writeTimeout time.Duration

	writeMu sync.Mutex
	readMu  sync.Mutex
	pending strings.Builder
	closed  atomic.Bool
}

// NewStreamLink wraps rwc. If rwc supports deadlines and readTimeout is
// positive, every read and every write is bounded by readTimeout.
func NewStreamLink(rwc io.ReadWriteCloser, name string, readTimeout time.Duration) *StreamLink {
	return &StreamLink{
		rwc:          rwc,
		reader:       bufio.NewReader(rwc),
		name:         name,
		readTimeout:  readTimeout,
		writeTimeout: readTimeout,
	}
}

func (l *StreamLink) Name() string {
	return l.name
}

// WriteLine writes one record. A write that times out may leave a partial
// line on the wire.
func (l *StreamLink) WriteLine(line string) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if d, ok := l.rwc.(writeDeadliner); ok && l.writeTimeout > 0 {
		if err := d.SetWriteDeadline(time.Now().Add(l.writeTimeout)); err != nil {
			return l.mapErr(err)
		}
	}
	if _, err := io.WriteString(l.rwc, line); err != nil {
		return l.mapErr(err)
	}
	return nil
}

// ReadLine returns the next line without its "\n" or "\r\n" terminator.
func (l *StreamLink) ReadLine() (string, error) {
	l.readMu.Lock()
	defer l.readMu.Unlock()

	if l.closed.Load() {
		return "", ErrClosed
	}
	if d, ok := l.rwc.(readDeadliner); ok && l.readTimeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
			return "", l.mapErr(err)
		}
	}

	chunk, err := l.reader.ReadString('\n')
	l.pending.WriteString(chunk)
	if err != nil {
		return "", l.mapErr(err)
	}

	line := l.pending.String()
	l.pending.Reset()
	return strings.TrimRight(line, "\r\n"), nil
}

func (l *StreamLink) mapErr(err error) error {
	if l.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}

// Close closes the underlying stream and unblocks pending reads.
func (l *StreamLink) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.rwc.Close()
}
