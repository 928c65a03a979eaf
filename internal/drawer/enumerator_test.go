package drawer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

func newTestEnumerator(list func() ([]*enumerator.PortDetails, error)) *SerialEnumerator {
	e := NewSerialEnumerator(zap.NewNop())
	e.list = list
	return e
}

func TestListPortsPreservesOrder(t *testing.T) {
	e := newTestEnumerator(func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyUSB1", IsUSB: true, VID: "04b8", PID: "0202", Product: "TM-T20"},
			nil,
			{Name: ""},
			{Name: "/dev/ttyS0"},
		}, nil
	})

	ports := e.ListPorts(context.Background())

	assert.Equal(t, []Endpoint{
		{
			Path:         "/dev/ttyUSB1",
			Manufacturer: "Seiko Epson Corporation",
			Product:      "TM-T20",
			VID:          "04b8",
			PID:          "0202",
			IsUSB:        true,
		},
		{Path: "/dev/ttyS0"},
	}, ports)
}

func TestListPortsEnumerationFailure(t *testing.T) {
	e := newTestEnumerator(func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("udev unavailable")
	})

	ports := e.ListPorts(context.Background())
	assert.NotNil(t, ports)
	assert.Empty(t, ports)
}

func TestManufacturerForVID(t *testing.T) {
	assert.Equal(t, "Star Micronics Co., Ltd.", ManufacturerForVID("0519"))
	assert.Equal(t, "Future Technology Devices International (FTDI)", ManufacturerForVID("0x0403"))
	assert.Equal(t, "QinHeng Electronics (WCH)", ManufacturerForVID("1a86"))
	assert.Equal(t, "", ManufacturerForVID("FFFF"))
	assert.Equal(t, "", ManufacturerForVID(""))
}

func TestDescribeOpenError(t *testing.T) {
	plain := describeOpenError(errors.New("boom"))
	assert.Contains(t, plain.Error(), "failed to open serial port")
}
