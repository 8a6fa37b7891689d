// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"

	"Go2NetWindow/internal/config"

	log "github.com/sirupsen/logrus"
)

// Setup applies level and format from cfg to the standard logger.
func Setup(cfg config.LogConfig, out io.Writer) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = log.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}

	var formatter log.Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &log.TextFormatter{FullTimestamp: true}
	case "json":
		formatter = &log.JSONFormatter{}
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	log.SetLevel(level)
	log.SetFormatter(formatter)
	if out != nil {
		log.SetOutput(out)
	}
	return nil
}
