package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"Go2NetWindow/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})
	defer log.SetOutput(os.Stderr)

	var buf bytes.Buffer
	require.NoError(t, Setup(config.LogConfig{Level: "debug", Format: "json"}, &buf))
	require.Equal(t, log.DebugLevel, log.GetLevel())

	log.WithField("window", 3).Debug("rolled")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "rolled", entry["msg"])
	require.Equal(t, float64(3), entry["window"])
}

func TestSetupRejectsUnknownValues(t *testing.T) {
	require.Error(t, Setup(config.LogConfig{Level: "loud"}, nil))
	require.Error(t, Setup(config.LogConfig{Level: "info", Format: "xml"}, nil))
}
