package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"Go2NetWindow/internal/api"
	"Go2NetWindow/internal/config"
	"Go2NetWindow/internal/engine/manager"
	"Go2NetWindow/internal/listener"
	"Go2NetWindow/internal/logging"
	"Go2NetWindow/internal/model"
	"Go2NetWindow/internal/transport"
	"Go2NetWindow/pkg/pcap"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration")
	iface := flag.String("iface", "", "capture from this interface (overrides config)")
	pcapPath := flag.String("pcap", "", "read packets from this capture file (overrides config)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	switch {
	case *pcapPath != "":
		cfg.Capture.Source, cfg.Capture.PcapPath = "pcap", *pcapPath
	case *iface != "":
		cfg.Capture.Source, cfg.Capture.Iface = "iface", *iface
	}
	if err := logging.Setup(cfg.Log, os.Stderr); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	log.Println("Starting ns-window...")

	// 2. Open the packet source; failing here is fatal.
	reader, err := openCapture(cfg.Capture)
	if err != nil {
		log.Fatalf("Failed to open capture: %v", err)
	}
	defer reader.Close()

	// 3. Link to the classifier, falling back to discarding vectors.
	link := transport.OpenOrNop(cfg.Transport)

	// 4. Window pipeline
	store := api.NewStore(api.DefaultMaxResults)
	writers := []model.Writer{transport.NewLinkWriter(link), manager.LogWriter{}}
	if cfg.API.Enabled {
		writers = append(writers, store)
	}
	mgr, err := manager.NewManager(cfg, writers...)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg.API.ListenAddr, api.NewRouter(store, mgr.Current))
		server.Start()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observers := []model.ResultObserver{listener.LogObserver{}}
	if cfg.API.Enabled {
		observers = append(observers, store)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		listener.New(link, observers...).Run(ctx)
	}()

	mgr.Start()

	// 5. Capture until the source is exhausted or a signal arrives.
	captureDone := make(chan struct{})
	go func() {
		defer close(captureDone)
		n, err := reader.ReadPackets(ctx, captureHandler(cfg.Capture.Source, mgr))
		if err != nil {
			log.Errorf("Capture stopped: %v", err)
			return
		}
		log.Printf("Capture finished after %d packets.", n)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, stopping...")

	cancel()
	<-captureDone
	mgr.Stop()
	if err := link.Close(); err != nil {
		log.Warnf("Error closing link: %v", err)
	}
	wg.Wait()

	if server != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("API server forced to shutdown: %v", err)
		}
	}
	log.Println("Shutdown complete.")
}

func openCapture(cfg config.CaptureConfig) (*pcap.Reader, error) {
	if cfg.Source == "pcap" {
		log.Printf("Reading packets from '%s'...", cfg.PcapPath)
		return pcap.OpenOffline(cfg.PcapPath)
	}

	timeout, err := config.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, err
	}
	log.Printf("Capturing on interface %s", cfg.Iface)
	return pcap.OpenLive(pcap.LiveOptions{
		Iface:       cfg.Iface,
		SnapLen:     cfg.SnapLength,
		Promiscuous: cfg.Promiscuous,
		BPFFilter:   cfg.BPFFilter,
		ReadTimeout: timeout,
	})
}

// captureHandler feeds the manager. Live traffic is never allowed to block
// capture, so a saturated queue drops; a file is read at the pace ingest
// can sustain.
func captureHandler(source string, mgr *manager.Manager) func(*model.PacketObservation) {
	if source == "pcap" {
		input := mgr.Input()
		return func(obs *model.PacketObservation) { input <- obs }
	}
	return func(obs *model.PacketObservation) { mgr.Submit(obs) }
}
