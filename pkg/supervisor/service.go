package supervisor

import (
	"log"
	"sync"
	"time"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/framing"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/metrics"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/port_discovery"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/sensor_link"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/sensor_state"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/types"
)

// NewSupervisor builds a stopped supervisor. onReading, if set, is invoked
// after each validated reading reaches the store (used for the live feed).
func NewSupervisor(cfg PortConfig, onReading func(types.SensorReading)) *Supervisor {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = time.Second
	}
	return &Supervisor{
		store:     sensor_state.NewStore(),
		onReading: onReading,
		cfg:       cfg,
		reconnect: make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

var (
	defaultInstance *Supervisor
	defaultOnce     sync.Once
)

// StartDefault returns the process-wide supervisor, constructing and
// starting it on the first call. Repeated calls return the same running
// instance; later arguments are ignored.
func StartDefault(cfg PortConfig, onReading func(types.SensorReading)) *Supervisor {
	defaultOnce.Do(func() {
		defaultInstance = NewSupervisor(cfg, onReading)
		defaultInstance.Start()
	})
	return defaultInstance
}

// Start launches the background task. Calling it twice is a no-op.
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run()
}

// Stop transitions any state to Closing and releases the physical link.
// Blocks until the background task has exited.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// SetPort changes the preferred port. Takes effect through a forced
// close-and-reopen; an active link transitions through Closing before the
// next open uses the new port.
func (s *Supervisor) SetPort(port string) {
	s.mu.Lock()
	s.cfg.Preferred = port
	s.activePort = port
	s.mu.Unlock()

	select {
	case s.reconnect <- struct{}{}:
	default:
	}
}

// GetLatestData never fails; before any connection it reports zeroed
// values, "Never" and connected=false.
func (s *Supervisor) GetLatestData() types.LatestData {
	return s.store.LatestData()
}

func (s *Supervisor) Snapshot() types.LatestSnapshot {
	return s.store.Snapshot()
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Supervisor) stopping() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// run is the whole lifecycle: discover, open, read, back off, forever.
// No error in here may terminate the process; everything degrades to
// connected=false and another cycle.
func (s *Supervisor) run() {
	defer close(s.done)
	defer s.setState(StateIdle)

	failures := 0
	needDiscovery := true

	for {
		if s.stopping() {
			return
		}

		s.mu.Lock()
		preferred := s.cfg.Preferred
		active := s.activePort
		cfg := s.cfg
		s.mu.Unlock()

		if needDiscovery || active == "" {
			s.setState(StateDiscovering)
			ports, err := listPorts()
			if err != nil {
				log.Printf("Port enumeration failed: %v", err)
			}
			active = port_discovery.SelectPort(preferred, ports)
			s.mu.Lock()
			s.activePort = active
			s.mu.Unlock()
			needDiscovery = false
		}

		if active == "" {
			log.Printf("No serial port candidate found")
			s.store.MarkConnected(false)
			failures++
			if failures >= maxConsecutiveFailures {
				needDiscovery = true
				failures = 0
			}
			if !s.backoff() {
				return
			}
			continue
		}

		s.setState(StateOpening)
		s.store.SetState(types.Connecting)
		lnk, err := openLink(sensor_link.Config{
			Port:        active,
			BaudRate:    cfg.BaudRate,
			ReadTimeout: cfg.ReadTimeout,
		})
		if err != nil {
			log.Printf("Failed to open %s: %v", active, err)
			metrics.OpenFailures.Inc()
			s.store.MarkConnected(false)
			failures++
			if failures >= maxConsecutiveFailures {
				// Device may have moved to another port
				needDiscovery = true
				failures = 0
			}
			if !s.backoff() {
				return
			}
			continue
		}

		failures = 0
		reopenNow := s.readLoop(lnk)
		if s.stopping() {
			return
		}
		if reopenNow {
			// Port change requested; skip the backoff wait
			continue
		}
		if !s.backoff() {
			return
		}
	}
}

// readLoop pulls bytes until the link dies, goes stale, or a stop/port
// change arrives. Always closes the link on the way out. Returns true when
// the loop should reopen immediately (port change).
func (s *Supervisor) readLoop(lnk link) (reopenNow bool) {
	s.setState(StateReading)
	s.store.MarkConnected(true)
	metrics.LinkConnected.Set(1)

	defer func() {
		s.setState(StateClosing)
		lnk.Close()
		s.store.MarkConnected(false)
		metrics.LinkConnected.Set(0)
	}()

	scanner := framing.NewFrameScanner()
	buf := make([]byte, 256)

	for {
		select {
		case <-s.stop:
			return false
		case <-s.reconnect:
			log.Printf("Port change requested, reopening link")
			return true
		default:
		}

		n, err := lnk.ReadAvailable(buf)
		if err != nil {
			log.Printf("Read error on %s: %v", lnk.Name(), err)
			return false
		}

		if n > 0 {
			for _, frame := range scanner.Feed(buf[:n]) {
				reading, ok := framing.ParseReading(frame)
				if !ok {
					metrics.FramesDropped.Inc()
					continue
				}
				metrics.FramesParsed.Inc()
				s.store.Update(*reading)
				if s.onReading != nil {
					s.onReading(*reading)
				}
			}
		}

		if lnk.IsStale() {
			log.Printf("No data from %s, resetting link", lnk.Name())
			metrics.StaleResets.Inc()
			return false
		}
	}
}

// backoff waits out the reconnect delay. Returns false when a stop arrived
// during the wait. A port change cuts the wait short.
func (s *Supervisor) backoff() bool {
	s.setState(StateBackoffWait)
	metrics.BackoffCycles.Inc()
	select {
	case <-s.stop:
		return false
	case <-s.reconnect:
		return true
	case <-time.After(reconnectDelay):
		return true
	}
}
