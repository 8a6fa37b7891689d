package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"Go2NetWindow/internal/config"
	"Go2NetWindow/internal/engine/feature"
	"Go2NetWindow/internal/engine/manager"
	"Go2NetWindow/internal/logging"
	"Go2NetWindow/internal/model"
	"Go2NetWindow/pkg/pcap"

	log "github.com/sirupsen/logrus"
)

// stdoutWriter prints every window's feature line.
type stdoutWriter struct {
	w *bufio.Writer
}

func (s *stdoutWriter) Name() string { return "stdout" }

func (s *stdoutWriter) Write(win *model.Window) error {
	_, err := s.w.WriteString(feature.FormatLine(win.Features))
	return err
}

func main() {
	configPath := flag.String("config", "", "optional YAML configuration for window and log settings")
	duration := flag.Duration("window", 0, "window length (overrides config)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pcap-analyzer [-config file] [-window 1s] <path_to_pcap_file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	// 1. Get pcap file path from command-line arguments
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	pcapFilePath := flag.Arg(0)

	// 2. Load configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := logging.Setup(cfg.Log, os.Stderr); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	window, err := cfg.WindowDuration()
	if err != nil {
		log.Fatalf("Invalid window: %v", err)
	}
	if *duration > 0 {
		window = *duration
	}

	// 3. Initialize modules
	out := &stdoutWriter{w: bufio.NewWriter(os.Stdout)}
	replayer, err := manager.NewReplayer(window, out, manager.LogWriter{})
	if err != nil {
		log.Fatalf("Failed to create replayer: %v", err)
	}

	pcapReader, err := pcap.OpenOffline(pcapFilePath)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer pcapReader.Close()
	log.Printf("Reading packets from '%s'...", pcapFilePath)

	// 4. Replay the capture in capture time
	start := time.Now()
	n, err := pcapReader.ReadPackets(context.Background(), func(obs *model.PacketObservation) {
		replayer.Ingest(obs)
	})
	if err != nil {
		log.Errorf("Stopped reading %s: %v", pcapFilePath, err)
	}
	replayer.Flush()

	if err := out.w.Flush(); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("Replayed %d packets into %d windows of %s in %s.", n, replayer.Windows(), window, time.Since(start))
}
