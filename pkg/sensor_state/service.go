package sensor_state

import (
	"sync"
	"time"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/types"
)

// Store holds the latest known reading plus connectivity metadata.
// Written only by the read loop, read by any number of API callers.
// The lock is held only for field copies, never across I/O.
type Store struct {
	mu         sync.RWMutex
	reading    *types.SensorReading
	state      types.ConnectionState
	lastUpdate time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Update replaces the latest reading as a whole. Temperature and humidity
// always come from the same frame.
func (s *Store) Update(r types.SensorReading) {
	if r.ObservedAt.IsZero() {
		r.ObservedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := r
	s.reading = &cp
	if r.ObservedAt.After(s.lastUpdate) {
		s.lastUpdate = r.ObservedAt
	}
}

// SetState records the link state. The last known reading survives a
// disconnect so consumers can tell "unreachable now" from "never seen".
func (s *Store) SetState(state types.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if state == types.Connected {
		now := time.Now()
		if now.After(s.lastUpdate) {
			s.lastUpdate = now
		}
	}
}

func (s *Store) MarkConnected(connected bool) {
	if connected {
		s.SetState(types.Connected)
	} else {
		s.SetState(types.Disconnected)
	}
}

func (s *Store) Snapshot() types.LatestSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := types.LatestSnapshot{
		State:      s.state,
		LastUpdate: s.lastUpdate,
	}
	if s.reading != nil {
		cp := *s.reading
		snap.Reading = &cp
	}
	return snap
}

// LatestData renders the snapshot in the API wire shape. Total: before any
// connection it returns zeroed values with lastUpdate "Never".
func (s *Store) LatestData() types.LatestData {
	snap := s.Snapshot()
	data := types.LatestData{
		LastUpdate: "Never",
		Connected:  snap.State == types.Connected,
	}
	if snap.Reading != nil {
		data.Temperature = snap.Reading.Temperature
		data.Humidity = snap.Reading.Humidity
	}
	if !snap.LastUpdate.IsZero() {
		data.LastUpdate = snap.LastUpdate.Format("15:04:05")
	}
	return data
}
