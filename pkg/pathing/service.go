package pathing

import (
	"log"
	"os"
)

// Ensure directories exist on startup
func init() {
	// Directories that must exist:
	dirs := []string{
		GetConfigDir(),
	}

	// Create all directories
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				log.Fatal(err)
			}
		}
	}
}

func GetConfigDir() string {
	// Override for development machines without /etc access
	if dir := os.Getenv("SPOILAGE_SENSOR_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/food_spoilage_sensor"
}
