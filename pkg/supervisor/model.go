package supervisor

import (
	"sync"
	"time"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/port_discovery"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/sensor_link"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/sensor_state"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/types"
)

// State of the background connection loop.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateOpening
	StateSettling
	StateReading
	StateClosing
	StateBackoffWait
)

func (s State) String() string {
	switch s {
	case StateDiscovering:
		return "discovering"
	case StateOpening:
		return "opening"
	case StateSettling:
		return "settling"
	case StateReading:
		return "reading"
	case StateClosing:
		return "closing"
	case StateBackoffWait:
		return "backoff"
	default:
		return "idle"
	}
}

// PortConfig is mutated by SetPort and auto-detect, read at open time only.
type PortConfig struct {
	Preferred   string
	BaudRate    int
	ReadTimeout time.Duration
}

// link is what the read loop needs from sensor_link.Link; tests stand in
// scriptable fakes.
type link interface {
	ReadAvailable(buf []byte) (int, error)
	IsStale() bool
	Name() string
	Close()
}

// allow tests to override external dependencies and compress time
var (
	openLink = func(cfg sensor_link.Config) (link, error) {
		return sensor_link.Open(cfg)
	}
	listPorts = port_discovery.ListPorts

	// Fixed delay between failed cycles; avoids a tight retry loop.
	reconnectDelay = 5 * time.Second

	// Consecutive failed cycles before the port is re-discovered, so an
	// unplugged device replugged elsewhere is found again.
	maxConsecutiveFailures = 3
)

// Supervisor owns the background ingestion task for the process lifetime.
// External callers only ever touch the store through GetLatestData/Snapshot.
type Supervisor struct {
	store     *sensor_state.Store
	onReading func(types.SensorReading)

	mu         sync.Mutex
	cfg        PortConfig
	activePort string
	state      State

	reconnect chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	started   bool
}
