// Sensor API owns the Arduino serial link and serves the latest reading.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/config"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/metrics"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/supervisor"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/types"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var sensorSupervisor *supervisor.Supervisor

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// ws clients for broadcasting live readings
var (
	wsClients                   = make(map[*websocket.Conn]bool)
	wsClientsMutex sync.RWMutex = sync.RWMutex{}
)

func main() {
	// Load config
	if err := config.LoadSensorAPIConfig(); err != nil {
		log.Fatalf("Failed to load sensor API config: %v", err)
	}
	cfg := config.ActiveSensorAPIConfig

	// Start the serial supervisor (process-wide instance)
	sensorSupervisor = supervisor.StartDefault(
		supervisor.PortConfig{
			Preferred:   cfg.SerialPort,
			BaudRate:    int(cfg.Baudrate),
			ReadTimeout: time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		},
		func(reading types.SensorReading) {
			data := sensorSupervisor.GetLatestData()
			BroadcastToWebSockets(&data)
		},
	)

	// Release the serial port before the process dies
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("Shutting down, releasing serial port...")
		sensorSupervisor.Stop()
		os.Exit(0)
	}()

	// Setup HTTP handlers
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]string{
			"message": "Food Spoilage Sensor API",
			"status":  "running",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)

	// Always answers, even with no device ever seen
	r.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		data := sensorSupervisor.GetLatestData()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(data)
	}).Methods(http.MethodGet)

	r.HandleFunc("/port", handleSetPort).Methods(http.MethodPost)

	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		AddWebSocketClient(conn)

		// Send current reading immediately
		data := sensorSupervisor.GetLatestData()
		conn.WriteMessage(websocket.TextMessage, data.ToJsonBytes())

		// Keep connection alive
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				RemoveWebSocketClient(conn)
				break
			}
		}
	})

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	listener := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)

	log.Printf("Starting Food Spoilage Sensor API on %s", listener)
	log.Fatal(http.ListenAndServe(listener, r))
}

func handleSetPort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Port string `json:"port"`
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Port == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "expected body like {\"port\":\"COM7\"}",
		})
		return
	}

	sensorSupervisor.SetPort(req.Port)

	// Persist so the choice survives a restart
	config.ActiveSensorAPIConfig.SerialPort = req.Port
	if err := config.SaveSensorAPIConfig(); err != nil {
		log.Printf("Failed to persist port change: %v", err)
	}

	log.Printf("Serial port changed to %s", req.Port)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"port":   req.Port,
	})
}

func BroadcastToWebSockets(data *types.LatestData) {
	wsClientsMutex.RLock()
	clients := make([]*websocket.Conn, 0, len(wsClients))
	for client := range wsClients {
		clients = append(clients, client)
	}
	wsClientsMutex.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data.ToJsonBytes()); err != nil {
			RemoveWebSocketClient(client)
		}
	}
}

func AddWebSocketClient(conn *websocket.Conn) {
	wsClientsMutex.Lock()
	wsClients[conn] = true
	wsClientsMutex.Unlock()
}

func RemoveWebSocketClient(conn *websocket.Conn) {
	wsClientsMutex.Lock()
	delete(wsClients, conn)
	wsClientsMutex.Unlock()
	conn.Close()
}
