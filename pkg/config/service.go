package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Jeetendra555t/Food-spoilage-detection-using-ESP32/pkg/pathing"
)

var ActiveSensorAPIConfig *SensorAPIConfig

func LoadSensorAPIConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "sensor_api.toml")

	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := &SensorAPIConfig{
			SerialPort:    "", // auto-detect
			Baudrate:      9600,
			ReadTimeoutMs: 1000,
			ListenAddress: "0.0.0.0",
			ListenPort:    5000,
		}
		// Create file
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		toml.NewEncoder(cfgFile).Encode(cfg)
		ActiveSensorAPIConfig = cfg
		return nil
	}

	// Load existing config
	var config SensorAPIConfig
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return err
	}
	ActiveSensorAPIConfig = &config
	return nil
}

// SaveSensorAPIConfig writes the active config back to disk.
// Used so a port change via the API survives a restart.
func SaveSensorAPIConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "sensor_api.toml")
	cfgFile, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer cfgFile.Close()
	return toml.NewEncoder(cfgFile).Encode(ActiveSensorAPIConfig)
}
