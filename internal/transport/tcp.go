package transport

import (
	"errors"
	"fmt"
	"net"

	"Go2NetWindow/internal/config"
)

// DialTCP connects to a classifier listening on a TCP socket.
func DialTCP(cfg config.TCPConfig) (*StreamLink, error) {
	if cfg.Addr == "" {
		return nil, errors.New("no tcp address configured")
	}
	dialTimeout, err := config.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid tcp dial_timeout: %w", err)
	}

	conn, err := net.DialTimeout("tcp", cfg.Addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.Addr, err)
	}
	return NewStreamLink(conn, "tcp://"+cfg.Addr, readTimeout(cfg.ReadTimeout)), nil
}
