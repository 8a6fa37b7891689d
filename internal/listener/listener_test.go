package listener

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"Go2NetWindow/internal/model"
	"Go2NetWindow/internal/transport"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type step struct {
	line string
	err  error
}

// scriptedReader replays steps and then reports the link as closed.
type scriptedReader struct {
	mu    sync.Mutex
	steps []step
}

func (r *scriptedReader) ReadLine() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.steps) == 0 {
		return "", transport.ErrClosed
	}
	s := r.steps[0]
	r.steps = r.steps[1:]
	return s.line, s.err
}

type collector struct {
	mu    sync.Mutex
	lines []string
}

func (c *collector) OnResult(r model.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, r.Line)
}

func TestRunForwardsLines(t *testing.T) {
	src := &scriptedReader{steps: []step{
		{line: "normal"},
		{line: ""},
		{line: "   "},
		{err: os.ErrDeadlineExceeded},
		{line: "attack\r\n"},
		{err: errors.New("framing error")},
		{line: "normal"},
	}}
	a, b := &collector{}, &collector{}

	l := New(src, a, b)
	l.backoff = time.Millisecond

	done := make(chan struct{})
	go func() {
		l.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop on ErrClosed")
	}

	require.Equal(t, []string{"normal", "attack", "normal"}, a.lines)
	require.Equal(t, a.lines, b.lines)
}

func TestRunStampsResults(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var got []model.Result

	l := New(&scriptedReader{steps: []step{{line: "normal"}}},
		model.ResultObserverFunc(func(r model.Result) { got = append(got, r) }))
	l.now = func() time.Time { return at }
	l.Run(context.Background())

	require.Equal(t, []model.Result{{Line: "normal", ReceivedAt: at}}, got)
}

type blockingReader struct{}

func (blockingReader) ReadLine() (string, error) {
	time.Sleep(5 * time.Millisecond)
	return "", os.ErrDeadlineExceeded
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(blockingReader{}).Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener ignored cancellation")
	}
}

func TestRunOverNopLinkEndsOnClose(t *testing.T) {
	link := transport.NewNopLink()
	done := make(chan struct{})
	go func() {
		New(link).Run(context.Background())
		close(done)
	}()

	require.NoError(t, link.Close())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop when the link closed")
	}
}

func TestLogObserver(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	LogObserver{}.OnResult(model.Result{Line: "attack", ReceivedAt: time.Now()})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.InfoLevel, entry.Level)
	require.Contains(t, entry.Message, "attack")
	require.Contains(t, entry.Data, "received_at")
}
