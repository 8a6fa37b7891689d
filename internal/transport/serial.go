package transport

import (
	"errors"
	"fmt"
	"io"

	"Go2NetWindow/internal/config"

	"go.bug.st/serial"
)

// OpenSerial opens a serial device at the configured baud rate, 8N1.
func OpenSerial(cfg config.SerialConfig) (*StreamLink, error) {
	if cfg.Port == "" {
		return nil, errors.New("no serial port configured")
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(readTimeout(cfg.ReadTimeout)); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Port, err)
	}

	name := fmt.Sprintf("%s@%d", cfg.Port, cfg.BaudRate)
	return NewStreamLink(timeoutPort{port}, name, 0), nil
}

// timeoutPort turns the empty read a serial port returns on timeout into a
// timeout error, so buffered readers return instead of spinning.
type timeoutPort struct {
	io.ReadWriteCloser
}

func (p timeoutPort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if n == 0 && err == nil && len(b) > 0 {
		return 0, errReadTimeout
	}
	return n, err
}
