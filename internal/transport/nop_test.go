package transport

import (
	"testing"
	"time"

	"Go2NetWindow/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestNopLinkLogsFirstDiscardOnly(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	link := NewNopLink()
	require.NoError(t, link.WriteLine("a"))
	require.NoError(t, link.WriteLine("b"))

	require.Equal(t, 1, len(hook.Entries))
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestNopLinkReadBlocksUntilClose(t *testing.T) {
	link := NewNopLink()

	errs := make(chan error, 1)
	go func() {
		_, err := link.ReadLine()
		errs <- err
	}()

	select {
	case <-errs:
		t.Fatal("ReadLine returned before Close")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, link.Close())
	require.ErrorIs(t, <-errs, ErrClosed)
	require.NoError(t, link.Close())
}

func TestOpenOrNopFallsBack(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	link := OpenOrNop(config.TransportConfig{Type: "serial", Serial: config.SerialConfig{}})
	require.IsType(t, &NopLink{}, link)
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
