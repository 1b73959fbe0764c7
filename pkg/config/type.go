package config

type SensorAPIConfig struct {
	// Empty means auto-detect the Arduino on startup
	SerialPort    string `toml:"serial_port"`
	Baudrate      uint   `toml:"baudrate"`
	ReadTimeoutMs int    `toml:"read_timeout_ms"`
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
}
