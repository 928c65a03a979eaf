// internal/drawer/enumerator.go
package drawer

import (
	"context"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

// Endpoint is a serial device found on the host
type Endpoint struct {
	Path         string `json:"path"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	IsUSB        bool   `json:"is_usb"`
}

// Enumerator lists candidate serial endpoints
type Enumerator interface {
	ListPorts(ctx context.Context) []Endpoint
}

// knownVendors maps USB vendor IDs (upper-case hex) to manufacturer names.
// Covers the usual POS printer vendors and USB-serial bridge chips.
var knownVendors = map[string]string{
	"04B8": "Seiko Epson Corporation",
	"0519": "Star Micronics Co., Ltd.",
	"1CBE": "Citizen Systems Japan Co., Ltd.",
	"1504": "BIXOLON Co., Ltd.",
	"0DD4": "Custom Engineering SPA",
	"0403": "Future Technology Devices International (FTDI)",
	"067B": "Prolific Technology, Inc.",
	"10C4": "Silicon Laboratories, Inc.",
	"1A86": "QinHeng Electronics (WCH)",
	"2341": "Arduino SA",
}

// ManufacturerForVID returns the manufacturer name for a USB vendor ID
func ManufacturerForVID(vid string) string {
	return knownVendors[strings.ToUpper(strings.TrimPrefix(strings.ToLower(vid), "0x"))]
}

// SerialEnumerator lists ports via go.bug.st/serial/enumerator
type SerialEnumerator struct {
	logger *zap.Logger
	list   func() ([]*enumerator.PortDetails, error)
}

// NewSerialEnumerator creates an enumerator for host serial ports
func NewSerialEnumerator(logger *zap.Logger) *SerialEnumerator {
	return &SerialEnumerator{
		logger: logger.With(zap.String("component", "port-enumerator")),
		list:   enumerator.GetDetailedPortsList,
	}
}

// ListPorts returns the endpoints in the order the platform reports them.
// Enumeration failures are logged and reported as an empty list.
func (e *SerialEnumerator) ListPorts(ctx context.Context) []Endpoint {
	details, err := e.list()
	if err != nil {
		e.logger.Warn("Serial port enumeration failed", zap.Error(err))
		return []Endpoint{}
	}

	endpoints := make([]Endpoint, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}
		endpoints = append(endpoints, Endpoint{
			Path:         d.Name,
			Manufacturer: ManufacturerForVID(d.VID),
			Product:      d.Product,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			IsUSB:        d.IsUSB,
		})
	}

	e.logger.Debug("Serial ports enumerated", zap.Int("count", len(endpoints)))
	return endpoints
}
