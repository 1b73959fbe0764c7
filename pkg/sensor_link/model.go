package sensor_link

import (
	"sync"
	"time"

	"go.bug.st/serial"
)

// Config is read at open time only.
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
}

// portHandle is the slice of go.bug.st/serial.Port the link needs.
// Narrowed so tests can stand in a fake device.
type portHandle interface {
	Read(p []byte) (n int, err error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// allow tests to override external dependencies and compress time
var (
	openPort = func(name string, mode *serial.Mode) (portHandle, error) {
		return serial.Open(name, mode)
	}

	// Best-effort release of any OS-level lock on the port before opening.
	// No-op where unsupported; must never fail the open attempt.
	preOpenHook = func(portName string) {}

	// The Arduino resets when the port opens; bytes received during this
	// window are pre-reset noise and get flushed.
	settleDelay = 2 * time.Second

	// An open link that stays silent this long is treated as dead.
	staleAfter = 10 * time.Second
)

// Link owns one open serial connection. The handle belongs exclusively to
// the background read loop; only Close is called from elsewhere.
type Link struct {
	mu       sync.Mutex
	port     portHandle
	name     string
	lastData time.Time
}
