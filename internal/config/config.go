package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WindowConfig holds the settings of the window scheduler and ingest workers.
type WindowConfig struct {
	Duration            string `yaml:"duration"`
	NumWorkers          int    `yaml:"num_workers"`
	SizeOfPacketChannel int    `yaml:"size_of_packet_channel"`
}

// CaptureConfig selects and configures the packet source.
type CaptureConfig struct {
	Source      string `yaml:"source"` // "iface" or "pcap"
	Iface       string `yaml:"iface"`
	PcapPath    string `yaml:"pcap_path"`
	SnapLength  int32  `yaml:"snap_length"`
	Promiscuous bool   `yaml:"promiscuous"`
	BPFFilter   string `yaml:"bpf_filter"`
	ReadTimeout string `yaml:"read_timeout"`
}

// SerialConfig configures a serial device link.
type SerialConfig struct {
	Port        string `yaml:"port"`
	BaudRate    int    `yaml:"baud_rate"`
	ReadTimeout string `yaml:"read_timeout"`
}

// TCPConfig configures a plain TCP link.
type TCPConfig struct {
	Addr        string `yaml:"addr"`
	DialTimeout string `yaml:"dial_timeout"`
	ReadTimeout string `yaml:"read_timeout"`
}

// NATSConfig configures a NATS link: feature lines are published on one
// subject and classification lines are consumed from another.
type NATSConfig struct {
	URL             string `yaml:"url"`
	FeaturesSubject string `yaml:"features_subject"`
	ResultsSubject  string `yaml:"results_subject"`
	ReadTimeout     string `yaml:"read_timeout"`
}

// TransportConfig selects the duplex link to the classifier.
type TransportConfig struct {
	Type   string       `yaml:"type"` // "serial", "tcp", "nats" or "none"
	Serial SerialConfig `yaml:"serial"`
	TCP    TCPConfig    `yaml:"tcp"`
	NATS   NATSConfig   `yaml:"nats"`
}

// APIConfig holds the configuration for the status API server.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Capture   CaptureConfig   `yaml:"capture"`
	Transport TransportConfig `yaml:"transport"`
	API       APIConfig       `yaml:"api"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Duration:            "1s",
			NumWorkers:          1,
			SizeOfPacketChannel: 65536,
		},
		Capture: CaptureConfig{
			Source:      "iface",
			SnapLength:  1600,
			Promiscuous: true,
			ReadTimeout: "500ms",
		},
		Transport: TransportConfig{
			Type: "none",
			Serial: SerialConfig{
				BaudRate:    19200,
				ReadTimeout: "1s",
			},
			TCP: TCPConfig{
				DialTimeout: "5s",
				ReadTimeout: "1s",
			},
			NATS: NATSConfig{
				URL:             "nats://127.0.0.1:4222",
				FeaturesSubject: "gonw.features",
				ResultsSubject:  "gonw.results",
				ReadTimeout:     "1s",
			},
		},
		API: APIConfig{
			ListenAddr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads the configuration from a YAML file on top of the defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be corrected at runtime.
func (c *Config) Validate() error {
	d, err := c.WindowDuration()
	if err != nil {
		return err
	}
	if d <= 0 {
		return errors.New("window duration must be a positive duration")
	}
	if c.Window.NumWorkers <= 0 {
		return errors.New("window num_workers must be positive")
	}
	if c.Window.SizeOfPacketChannel < 0 {
		return errors.New("window size_of_packet_channel must not be negative")
	}

	switch c.Capture.Source {
	case "iface", "pcap":
	default:
		return fmt.Errorf("unknown capture source %q", c.Capture.Source)
	}
	if _, err := ParseDuration(c.Capture.ReadTimeout); err != nil {
		return fmt.Errorf("invalid capture read_timeout: %w", err)
	}

	switch c.Transport.Type {
	case "serial", "tcp", "nats", "none", "":
	default:
		return fmt.Errorf("unknown transport type %q", c.Transport.Type)
	}
	for name, v := range map[string]string{
		"serial read_timeout": c.Transport.Serial.ReadTimeout,
		"tcp dial_timeout":    c.Transport.TCP.DialTimeout,
		"tcp read_timeout":    c.Transport.TCP.ReadTimeout,
		"nats read_timeout":   c.Transport.NATS.ReadTimeout,
	} {
		if _, err := ParseDuration(v); err != nil {
			return fmt.Errorf("invalid transport %s: %w", name, err)
		}
	}
	return nil
}

// WindowDuration returns the parsed window length.
func (c *Config) WindowDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Window.Duration)
	if err != nil {
		return 0, fmt.Errorf("invalid window duration: %w", err)
	}
	return d, nil
}

// ParseDuration parses s, treating an empty string as zero.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
