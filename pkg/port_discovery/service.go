package port_discovery

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortDescriptor is a point-in-time view of one serial port on the host.
type PortDescriptor struct {
	Device      string
	Description string
	IsUSB       bool
	VendorID    string
	ProductID   string
}

// Product strings of the USB-serial bridges the Arduino boards show up as.
var knownVendorTags = []string{
	"arduino",
	"ch340",
	"usb serial",
	"wchusbserial",
	"usbmodem",
}

// USB vendor IDs of the common bridge chips.
var knownVendorIDs = map[string]string{
	"2341": "Arduino",
	"1a86": "WCH CH340/CH341",
	"0403": "FTDI",
	"10c4": "SiLabs CP210x",
}

// Overridable for tests
var listDetailedPorts = enumerator.GetDetailedPortsList

// ListPorts enumerates the serial ports currently present on the host.
func ListPorts() ([]PortDescriptor, error) {
	details, err := listDetailedPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]PortDescriptor, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortDescriptor{
			Device:      d.Name,
			Description: d.Product,
			IsUSB:       d.IsUSB,
			VendorID:    strings.ToLower(d.VID),
			ProductID:   strings.ToLower(d.PID),
		})
	}
	return ports, nil
}

// SelectPort picks the port to open from a point-in-time listing.
// Priority: the preferred port if still present, then any recognized
// Arduino/bridge device, then the first port as a best-effort fallback.
// Returns "" when no port is available. Pure function, no side effects.
func SelectPort(preferred string, ports []PortDescriptor) string {
	if preferred != "" {
		for _, p := range ports {
			if p.Device == preferred {
				return preferred
			}
		}
	}

	for _, p := range ports {
		if isKnownDevice(p) {
			return p.Device
		}
	}

	if len(ports) > 0 {
		return ports[0].Device
	}
	return ""
}

func isKnownDevice(p PortDescriptor) bool {
	desc := strings.ToLower(p.Description)
	for _, tag := range knownVendorTags {
		if strings.Contains(desc, tag) {
			return true
		}
	}
	if p.IsUSB {
		if _, ok := knownVendorIDs[p.VendorID]; ok {
			return true
		}
	}
	return false
}
