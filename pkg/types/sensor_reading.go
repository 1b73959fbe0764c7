package types

import (
	"encoding/json"
	"time"
)

// ConnectionState describes the serial link as seen by the supervisor.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (c ConnectionState) String() string {
	switch c {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// SensorReading is a single validated temperature/humidity frame.
// Immutable once constructed.
type SensorReading struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	ObservedAt  time.Time `json:"observed_at"`
}

// LatestSnapshot is the shared state published by the read loop.
// Reading is nil until the first valid frame; LastUpdate zero means never.
type LatestSnapshot struct {
	Reading    *SensorReading
	State      ConnectionState
	LastUpdate time.Time
}

// LatestData is the wire shape served to API consumers.
type LatestData struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	LastUpdate  string  `json:"lastUpdate"`
	Connected   bool    `json:"connected"`
}

func (d *LatestData) ToJsonBytes() []byte {
	data, err := json.Marshal(d)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// LatestDataFromJsonBytes parses a broadcast message. Returns nil on garbage.
func LatestDataFromJsonBytes(data []byte) *LatestData {
	var d LatestData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil
	}
	return &d
}
