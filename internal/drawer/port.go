// internal/drawer/port.go
package drawer

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// DefaultBaudRate is used when a caller does not supply one
const DefaultBaudRate = 9600

// Port is an open serial handle. serial.Port satisfies it.
type Port interface {
	io.ReadWriteCloser

	// Drain blocks until all written bytes have left the output buffer
	Drain() error
}

// Opener opens serial handles with the fixed 8N1 framing
type Opener interface {
	Open(path string, baudRate int) (Port, error)
}

// SerialOpener opens real serial ports through go.bug.st/serial
type SerialOpener struct {
	// ReadTimeout bounds each blocking read of the hardware watcher. Zero
	// blocks until data arrives or the port fails.
	ReadTimeout time.Duration
	logger      *zap.Logger
}

// NewSerialOpener creates an opener for the host serial ports
func NewSerialOpener(readTimeout time.Duration, logger *zap.Logger) *SerialOpener {
	return &SerialOpener{
		ReadTimeout: readTimeout,
		logger:      logger.With(zap.String("protocol", "serial")),
	}
}

// Open opens the port with 8 data bits, no parity and one stop bit
func (o *SerialOpener) Open(path string, baudRate int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	o.logger.Info("Opening serial port",
		zap.String("port", path),
		zap.Int("baud_rate", baudRate),
	)

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, describeOpenError(err)
	}

	if o.ReadTimeout > 0 {
		if err := port.SetReadTimeout(o.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	return port, nil
}

// describeOpenError turns serial.PortError codes into messages an operator can act on
func describeOpenError(err error) error {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	switch portErr.Code() {
	case serial.PortNotFound:
		return fmt.Errorf("serial port not found: %w", err)
	case serial.PortBusy:
		return fmt.Errorf("serial port is busy: %w", err)
	case serial.PermissionDenied:
		return fmt.Errorf("permission denied opening serial port: %w", err)
	case serial.InvalidSpeed:
		return fmt.Errorf("unsupported baud rate: %w", err)
	default:
		return fmt.Errorf("failed to open serial port: %w", err)
	}
}
