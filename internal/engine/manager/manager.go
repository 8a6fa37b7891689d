package manager

import (
	"fmt"
	"sync"
	"time"

	"Go2NetWindow/internal/config"
	"Go2NetWindow/internal/engine/window"
	"Go2NetWindow/internal/metrics"
	"Go2NetWindow/internal/model"

	log "github.com/sirupsen/logrus"
)

// Manager orchestrates the live window: ingest workers feed the aggregator
// and a scheduler retires it once per window duration.
type Manager struct {
	agg        *window.Aggregator
	dispatcher *dispatcher
	rollMu     sync.Mutex

	// Worker pool for concurrent packet ingest
	packetChannel chan *model.PacketObservation
	numWorkers    int
	workerWg      sync.WaitGroup
	inputMu       sync.RWMutex
	stopped       bool

	done        chan struct{}
	schedulerWg sync.WaitGroup
	now         func() time.Time
}

// NewManager creates a Manager that hands every closed window to writers, in order.
func NewManager(cfg *config.Config, writers ...model.Writer) (*Manager, error) {
	duration, err := cfg.WindowDuration()
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("window duration must be a positive duration")
	}
	if cfg.Window.NumWorkers <= 0 {
		return nil, fmt.Errorf("window num_workers must be positive")
	}

	return &Manager{
		agg:           window.New(time.Now()),
		dispatcher:    newDispatcher(duration, writers),
		packetChannel: make(chan *model.PacketObservation, cfg.Window.SizeOfPacketChannel),
		numWorkers:    cfg.Window.NumWorkers,
		done:          make(chan struct{}),
		now:           time.Now,
	}, nil
}

// Start begins the ingest workers and the window scheduler.
func (m *Manager) Start() {
	m.rollMu.Lock()
	m.agg.Roll(m.now())
	m.rollMu.Unlock()

	m.workerWg.Add(m.numWorkers)
	for i := 0; i < m.numWorkers; i++ {
		go m.worker()
	}

	m.schedulerWg.Add(1)
	go m.runScheduler()
	log.Printf("Manager started with %d workers, window %s.", m.numWorkers, m.dispatcher.duration)
}

func (m *Manager) runScheduler() {
	defer m.schedulerWg.Done()
	ticker := time.NewTicker(m.dispatcher.duration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Roll()
		case <-m.done:
			return
		}
	}
}

// Roll closes the live window now, encodes it and dispatches it to the
// writers. The scheduler calls it on every tick; callers may force an
// extra boundary.
func (m *Manager) Roll() *model.Window {
	m.rollMu.Lock()
	defer m.rollMu.Unlock()
	return m.dispatcher.dispatch(m.agg.Roll(m.now()))
}

// Current returns a copy of the window being accumulated.
func (m *Manager) Current() model.WindowStats {
	return m.agg.Current()
}

// Duration returns the configured window length.
func (m *Manager) Duration() time.Duration {
	return m.dispatcher.duration
}

// Submit queues obs for ingest without blocking. It returns false when the
// queue is full or the manager has stopped; the observation is dropped.
func (m *Manager) Submit(obs *model.PacketObservation) bool {
	m.inputMu.RLock()
	defer m.inputMu.RUnlock()
	if m.stopped {
		return false
	}

	select {
	case m.packetChannel <- obs:
		return true
	default:
		metrics.PacketsDropped.Inc()
		return false
	}
}

// Input exposes the ingest queue. Senders must stop before Stop is called.
func (m *Manager) Input() chan<- *model.PacketObservation {
	return m.packetChannel
}

// Stop gracefully shuts down the manager. Queued packets are ingested, but
// the window still open is discarded rather than emitted short.
func (m *Manager) Stop() {
	log.Println("Manager stopping...")
	// 1. Stop accepting new packets.
	m.inputMu.Lock()
	if m.stopped {
		m.inputMu.Unlock()
		return
	}
	m.stopped = true
	close(m.packetChannel)
	m.inputMu.Unlock()

	// 2. Wait for all workers to finish processing buffered packets.
	m.workerWg.Wait()

	// 3. Stop the scheduler.
	close(m.done)
	m.schedulerWg.Wait()

	m.rollMu.Lock()
	partial := m.agg.Roll(m.now())
	m.rollMu.Unlock()
	if partial.Packets > 0 {
		log.Printf("Discarding partial window with %d packets opened at %s.", partial.Packets, partial.Opened.Format(time.RFC3339))
	}
	log.Println("Manager stopped.")
}

func (m *Manager) worker() {
	defer m.workerWg.Done()
	for obs := range m.packetChannel {
		ingest(m.agg, obs)
	}
}

func ingest(agg *window.Aggregator, obs *model.PacketObservation) bool {
	if !agg.Ingest(obs) {
		metrics.PacketsDiscarded.Inc()
		return false
	}
	metrics.PacketsIngested.WithLabelValues(obs.Protocol.String()).Inc()
	return true
}
