package sensor_link

import (
	"errors"
	"fmt"
	"log"
	"time"

	"go.bug.st/serial"
)

// Open opens the serial port, waits out the device reset and flushes
// whatever it spewed during that window. Every failure is recoverable;
// the supervisor retries after backoff.
func Open(cfg Config) (*Link, error) {
	preOpenHook(cfg.Port)

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := openPort(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Port, err)
	}

	// Wait for the Arduino to reset
	time.Sleep(settleDelay)

	// Clear any pending pre-reset data
	if err := port.ResetInputBuffer(); err != nil {
		log.Printf("Input flush failed on %s: %v", cfg.Port, err)
	}

	log.Printf("Connected to sensor on %s", cfg.Port)
	return &Link{
		port:     port,
		name:     cfg.Port,
		lastData: time.Now(),
	}, nil
}

// ReadAvailable performs one bounded read. Returns n=0 with nil error when
// the device had nothing to say within the read timeout; absence of data
// is not an error.
func (l *Link) ReadAvailable(buf []byte) (int, error) {
	l.mu.Lock()
	port := l.port
	l.mu.Unlock()
	if port == nil {
		return 0, errors.New("serial port not connected")
	}

	n, err := port.Read(buf)
	if n > 0 {
		l.mu.Lock()
		l.lastData = time.Now()
		l.mu.Unlock()
	}
	return n, err
}

// IsStale reports whether the link looks open but dead: no bytes within
// the stale window. Protects against a hung device or cable fault.
func (l *Link) IsStale() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Since(l.lastData) > staleAfter
}

func (l *Link) Name() string {
	if l == nil {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.name
}

// Close is idempotent and safe on a nil or never-opened link.
func (l *Link) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port != nil {
		l.port.Close()
		l.port = nil
		log.Printf("Disconnected from %s", l.name)
	}
}
