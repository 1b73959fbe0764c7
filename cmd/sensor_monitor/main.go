// Live console monitor for the sensor API's websocket feed.
// Depends on the sensor API being online.
package main

import (
	"fmt"
	"os"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/sensor_feed"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/sensorutils"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/types"
)

func main() {
	// Set the host:port from env var SENSOR_API_HOST
	host := os.Getenv("SENSOR_API_HOST")
	if host == "" {
		host = "localhost:5000"
	}

	// Subscribe to websocket with revive
	sensor_feed.StartListener(host, handleReading)
}

func handleReading(data *types.LatestData) {
	if !data.Connected {
		fmt.Printf("[%s] sensor offline (last: %.1f°C %.1f%%)\n",
			data.LastUpdate, data.Temperature, data.Humidity)
		return
	}
	fmt.Printf("[%s] %.1f°C / %.1f°F  humidity %.1f%%  dew point %.1f°C\n",
		data.LastUpdate,
		data.Temperature,
		sensorutils.CelsiusToFahrenheit(data.Temperature),
		data.Humidity,
		sensorutils.DewPointC(data.Temperature, data.Humidity),
	)
}
