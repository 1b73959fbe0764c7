package supervisor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/port_discovery"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/sensor_link"
	"github.com/stretchr/testify/require"
)

// scriptLink is a fake device the tests feed by hand.
type scriptLink struct {
	name      string
	feed      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	stale     atomic.Bool
}

func newScriptLink(name string) *scriptLink {
	return &scriptLink{
		name:   name,
		feed:   make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (l *scriptLink) ReadAvailable(buf []byte) (int, error) {
	select {
	case b := <-l.feed:
		return copy(buf, b), nil
	case <-l.closed:
		return 0, errors.New("port closed")
	case <-time.After(time.Millisecond):
		return 0, nil
	}
}

func (l *scriptLink) IsStale() bool { return l.stale.Load() }
func (l *scriptLink) Name() string  { return l.name }
func (l *scriptLink) Close()        { l.closeOnce.Do(func() { close(l.closed) }) }

func (l *scriptLink) isClosed() bool {
	select {
	case <-l.closed:
		return true
	default:
		return false
	}
}

func withFastTimings(t *testing.T) {
	t.Helper()
	origDelay := reconnectDelay
	reconnectDelay = 2 * time.Millisecond
	t.Cleanup(func() { reconnectDelay = origDelay })
}

func overridePorts(t *testing.T, devices ...string) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	orig := listPorts
	listPorts = func() ([]port_discovery.PortDescriptor, error) {
		calls.Add(1)
		ports := make([]port_discovery.PortDescriptor, 0, len(devices))
		for _, d := range devices {
			ports = append(ports, port_discovery.PortDescriptor{Device: d, Description: "Arduino Uno"})
		}
		return ports, nil
	}
	t.Cleanup(func() { listPorts = orig })
	return &calls
}

func TestGetLatestData_BeforeAnyConnection(t *testing.T) {
	s := NewSupervisor(PortConfig{}, nil)
	data := s.GetLatestData()
	require.Equal(t, 0.0, data.Temperature)
	require.Equal(t, 0.0, data.Humidity)
	require.Equal(t, "Never", data.LastUpdate)
	require.False(t, data.Connected)
}

func TestIngestion_EndToEnd(t *testing.T) {
	withFastTimings(t)
	overridePorts(t, "/dev/ttyUSB0")

	lnk := newScriptLink("/dev/ttyUSB0")
	origOpen := openLink
	openLink = func(cfg sensor_link.Config) (link, error) { return lnk, nil }
	t.Cleanup(func() { openLink = origOpen })

	s := NewSupervisor(PortConfig{}, nil)
	s.Start()
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool {
		return s.GetLatestData().Connected
	}, time.Second, time.Millisecond)

	lnk.feed <- []byte(`garbage{"temperature":23.5,"humidity":48.2}garbage`)

	require.Eventually(t, func() bool {
		d := s.GetLatestData()
		return d.Temperature == 23.5 && d.Humidity == 48.2
	}, time.Second, time.Millisecond)
	require.NotEqual(t, "Never", s.GetLatestData().LastUpdate)

	s.Stop()
	require.True(t, lnk.isClosed(), "shutdown must release the link")
	require.False(t, s.GetLatestData().Connected)
}

func TestMalformedFramesLeaveStoreUnchanged(t *testing.T) {
	withFastTimings(t)
	overridePorts(t, "/dev/ttyUSB0")

	lnk := newScriptLink("/dev/ttyUSB0")
	origOpen := openLink
	openLink = func(cfg sensor_link.Config) (link, error) { return lnk, nil }
	t.Cleanup(func() { openLink = origOpen })

	s := NewSupervisor(PortConfig{}, nil)
	s.Start()
	t.Cleanup(s.Stop)

	lnk.feed <- []byte(`{"temperature":1,"humidity":2}`)
	require.Eventually(t, func() bool {
		return s.GetLatestData().Temperature == 1
	}, time.Second, time.Millisecond)

	// Missing humidity: dropped, connection kept, store untouched
	lnk.feed <- []byte(`{"temperature":99}`)
	time.Sleep(20 * time.Millisecond)
	d := s.GetLatestData()
	require.Equal(t, 1.0, d.Temperature)
	require.Equal(t, 2.0, d.Humidity)
	require.True(t, d.Connected)
	require.False(t, lnk.isClosed())
}

func TestOpenFailuresForceRediscovery(t *testing.T) {
	withFastTimings(t)
	listCalls := overridePorts(t, "/dev/ttyUSB0")

	var openAttempts atomic.Int32
	origOpen := openLink
	openLink = func(cfg sensor_link.Config) (link, error) {
		openAttempts.Add(1)
		return nil, errors.New("device busy")
	}
	t.Cleanup(func() { openLink = origOpen })

	s := NewSupervisor(PortConfig{}, nil)
	s.Start()
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool {
		return openAttempts.Load() >= 4
	}, 2*time.Second, time.Millisecond)

	// One listing up front, another forced by three consecutive failures
	require.GreaterOrEqual(t, listCalls.Load(), int32(2))
	require.False(t, s.GetLatestData().Connected)
}

func TestSetPortForcesCloseBeforeReopen(t *testing.T) {
	withFastTimings(t)
	overridePorts(t, "/dev/ttyUSB0")

	var mu sync.Mutex
	var opened []string
	var links []*scriptLink
	origOpen := openLink
	openLink = func(cfg sensor_link.Config) (link, error) {
		mu.Lock()
		defer mu.Unlock()
		// The active link must have been closed before any reopen
		for _, l := range links {
			if !l.isClosed() {
				t.Errorf("opened %s while %s still open", cfg.Port, l.name)
			}
		}
		l := newScriptLink(cfg.Port)
		opened = append(opened, cfg.Port)
		links = append(links, l)
		return l, nil
	}
	t.Cleanup(func() { openLink = origOpen })

	s := NewSupervisor(PortConfig{}, nil)
	s.Start()
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(opened) == 1
	}, time.Second, time.Millisecond)

	s.SetPort("/dev/ttyACM1")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(opened) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyACM1"}, opened)
	require.True(t, links[0].isClosed())
}

func TestStaleLinkForcesReopen(t *testing.T) {
	withFastTimings(t)
	overridePorts(t, "/dev/ttyUSB0")

	var mu sync.Mutex
	var links []*scriptLink
	origOpen := openLink
	openLink = func(cfg sensor_link.Config) (link, error) {
		mu.Lock()
		defer mu.Unlock()
		l := newScriptLink(cfg.Port)
		links = append(links, l)
		return l, nil
	}
	t.Cleanup(func() { openLink = origOpen })

	s := NewSupervisor(PortConfig{}, nil)
	s.Start()
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(links) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	links[0].stale.Store(true)
	mu.Unlock()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(links) >= 2 && links[0].isClosed()
	}, time.Second, time.Millisecond)
}

func TestNoPortsFound(t *testing.T) {
	withFastTimings(t)
	overridePorts(t) // nothing attached

	var openAttempts atomic.Int32
	origOpen := openLink
	openLink = func(cfg sensor_link.Config) (link, error) {
		openAttempts.Add(1)
		return nil, errors.New("should not be called")
	}
	t.Cleanup(func() { openLink = origOpen })

	s := NewSupervisor(PortConfig{}, nil)
	s.Start()
	t.Cleanup(s.Stop)

	time.Sleep(30 * time.Millisecond)
	require.Zero(t, openAttempts.Load())
	require.False(t, s.GetLatestData().Connected)
}

func TestStartDefault_Idempotent(t *testing.T) {
	withFastTimings(t)
	overridePorts(t)

	a := StartDefault(PortConfig{}, nil)
	b := StartDefault(PortConfig{Preferred: "ignored"}, nil)
	require.Same(t, a, b)
	t.Cleanup(a.Stop)
}
