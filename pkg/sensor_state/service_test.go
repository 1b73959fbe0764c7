package sensor_state

import (
	"sync"
	"testing"
	"time"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestLatestData_NeverConnected(t *testing.T) {
	s := NewStore()
	data := s.LatestData()
	require.Equal(t, 0.0, data.Temperature)
	require.Equal(t, 0.0, data.Humidity)
	require.Equal(t, "Never", data.LastUpdate)
	require.False(t, data.Connected)
}

func TestLastKnownGoodRetainedAcrossDisconnect(t *testing.T) {
	s := NewStore()
	s.MarkConnected(true)
	s.Update(types.SensorReading{Temperature: 20, Humidity: 50})
	s.MarkConnected(false)

	snap := s.Snapshot()
	require.Equal(t, types.Disconnected, snap.State)
	require.NotNil(t, snap.Reading)
	require.Equal(t, 20.0, snap.Reading.Temperature)
	require.Equal(t, 50.0, snap.Reading.Humidity)

	data := s.LatestData()
	require.False(t, data.Connected)
	require.Equal(t, 20.0, data.Temperature)
	require.NotEqual(t, "Never", data.LastUpdate)
}

func TestLastUpdateMonotonic(t *testing.T) {
	s := NewStore()
	s.Update(types.SensorReading{Temperature: 1, Humidity: 2, ObservedAt: time.Now()})
	first := s.Snapshot().LastUpdate
	// A reading stamped in the past must not move lastUpdate backwards
	s.Update(types.SensorReading{Temperature: 3, Humidity: 4, ObservedAt: first.Add(-time.Hour)})
	snap := s.Snapshot()
	require.Equal(t, first, snap.LastUpdate)
	require.Equal(t, 3.0, snap.Reading.Temperature)
}

func TestSnapshot_NoTornReads(t *testing.T) {
	s := NewStore()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	// Writer pairs the fields so a torn read is detectable
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := float64(i % 1000)
			s.Update(types.SensorReading{Temperature: v, Humidity: 100 - v})
		}
	}()

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5000; i++ {
				snap := s.Snapshot()
				if snap.Reading == nil {
					continue
				}
				if snap.Reading.Temperature+snap.Reading.Humidity != 100.0 {
					t.Errorf("torn read: temperature %v paired with humidity %v",
						snap.Reading.Temperature, snap.Reading.Humidity)
					return
				}
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}

func TestSnapshotReadingIsACopy(t *testing.T) {
	s := NewStore()
	s.Update(types.SensorReading{Temperature: 5, Humidity: 6})
	snap := s.Snapshot()
	snap.Reading.Temperature = 99
	require.Equal(t, 5.0, s.Snapshot().Reading.Temperature)
}
