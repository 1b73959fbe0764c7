package framing

import (
	"encoding/json"
	"time"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/types"
)

// A real frame is ~40 bytes; anything past this is garbage from a lost
// close brace and gets discarded.
const maxFrameLen = 4096

// FrameScanner extracts brace-delimited frames from an unstructured
// serial byte stream. Two states: outside any frame, or accumulating one.
// Owned exclusively by the read loop, not safe for concurrent use.
type FrameScanner struct {
	inFrame bool
	buf     []byte
}

func NewFrameScanner() *FrameScanner {
	return &FrameScanner{}
}

// Feed consumes a chunk of raw bytes and returns the frames it completed.
// Bytes outside a frame are noise and dropped. A new open brace always
// wins: any partially accumulated frame is abandoned, never concatenated.
func (s *FrameScanner) Feed(data []byte) []string {
	var frames []string
	for _, b := range data {
		switch {
		case b == '{':
			s.inFrame = true
			s.buf = append(s.buf[:0], b)
		case b == '}' && s.inFrame:
			s.buf = append(s.buf, b)
			frames = append(frames, string(s.buf))
			s.buf = s.buf[:0]
			s.inFrame = false
		case s.inFrame:
			s.buf = append(s.buf, b)
			if len(s.buf) > maxFrameLen {
				s.buf = s.buf[:0]
				s.inFrame = false
			}
		}
	}
	return frames
}

type framePayload struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// ParseReading validates a candidate frame. Both numeric fields must be
// present; anything else is dropped without error, the device-side
// serializer is not under our control.
func ParseReading(frame string) (*types.SensorReading, bool) {
	var p framePayload
	if err := json.Unmarshal([]byte(frame), &p); err != nil {
		return nil, false
	}
	if p.Temperature == nil || p.Humidity == nil {
		return nil, false
	}
	return &types.SensorReading{
		Temperature: *p.Temperature,
		Humidity:    *p.Humidity,
		ObservedAt:  time.Now(),
	}, true
}
