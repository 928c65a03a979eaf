// internal/drawer/manager.go
package drawer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"drawer-service/internal/events"
)

const eventSource = "drawer"

// Manager owns the single serial handle of the cash drawer.
//
// Operations that touch the handle (connect, disconnect, send and the hardware
// watcher's state updates) are serialized by opMu. Status readers only take
// stateMu, so they never wait behind a slow open or drain. None of the
// operations time out: a hung driver call blocks its caller.
type Manager struct {
	opener     Opener
	enumerator Enumerator
	publisher  events.Publisher
	logger     *zap.Logger

	opMu       sync.Mutex
	port       Port
	generation atomic.Uint64
	last       *lastKnown

	stateMu sync.RWMutex
	state   snapshot

	watchers sync.WaitGroup
}

// NewManager creates a disconnected manager
func NewManager(opener Opener, enumerator Enumerator, publisher events.Publisher, logger *zap.Logger) *Manager {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Manager{
		opener:     opener,
		enumerator: enumerator,
		publisher:  publisher,
		logger:     logger.With(zap.String("component", "drawer-manager")),
		state:      snapshot{state: StateDisconnected},
	}
}

// ListPorts enumerates candidate endpoints
func (m *Manager) ListPorts(ctx context.Context) []Endpoint {
	return m.enumerator.ListPorts(ctx)
}

// Connect opens path at baudRate, closing any open handle first. A baudRate
// of zero selects DefaultBaudRate.
func (m *Manager) Connect(path string, baudRate int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	return m.connectLocked("connect", path, baudRate)
}

// Disconnect closes the handle. It is a no-op when already disconnected and
// always leaves the manager disconnected, even if the close itself fails.
func (m *Manager) Disconnect() {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.port == nil {
		return
	}
	m.closeLocked("disconnect requested")
}

// Reconnect replays the last successful endpoint and baud rate
func (m *Manager) Reconnect() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.last == nil {
		return &Error{Kind: ErrNoPriorConnection, Op: "reconnect"}
	}
	return m.connectLocked("reconnect", m.last.path, m.last.baudRate)
}

// AutoConnect connects to the first enumerated endpoint at the default baud
// rate. There is no fallback to later endpoints.
func (m *Manager) AutoConnect(ctx context.Context) (Endpoint, error) {
	ports := m.enumerator.ListPorts(ctx)
	if len(ports) == 0 {
		return Endpoint{}, &Error{Kind: ErrNoPortsAvailable, Op: "auto-connect"}
	}

	target := ports[0]
	m.logger.Info("Auto-connecting to first available port",
		zap.String("port", target.Path),
		zap.String("manufacturer", target.Manufacturer),
		zap.Int("candidates", len(ports)),
	)

	m.opMu.Lock()
	defer m.opMu.Unlock()

	return target, m.connectLocked("auto-connect", target.Path, DefaultBaudRate)
}

// Send writes the command and blocks until the transport has drained it.
// A transmit failure does not change the connection state.
func (m *Manager) Send(cmd Command) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.port == nil {
		return &Error{Kind: ErrNotConnected, Op: "send"}
	}

	data := cmd.Bytes()
	if data == nil {
		return &Error{Kind: ErrUnknownCommand, Op: "send", Err: fmt.Errorf("command %d", int(cmd))}
	}

	path := m.currentEndpoint()
	if err := m.transmit(data); err != nil {
		m.logger.Error("Drawer command failed",
			zap.String("command", cmd.String()),
			zap.String("port", path),
			zap.Error(err),
		)
		m.publisher.Publish(events.New(events.DrawerOpenFailed, eventSource, map[string]interface{}{
			"command": cmd.String(),
			"port":    path,
			"error":   err.Error(),
		}))
		return &Error{Kind: ErrTransmit, Op: "send", Port: path, Err: err}
	}

	m.logger.Info("Drawer command sent",
		zap.String("command", cmd.String()),
		zap.String("port", path),
		zap.Binary("data", data),
	)
	m.publisher.Publish(events.New(events.DrawerOpened, eventSource, map[string]interface{}{
		"command": cmd.String(),
		"port":    path,
	}))
	return nil
}

// TestDrawer sends the standard kick
func (m *Manager) TestDrawer() error {
	return m.Send(CommandStandard)
}

// Status returns the last settled state without blocking on in-flight operations
func (m *Manager) Status() Status {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.status()
}

// Close disconnects and waits for the hardware watcher to exit
func (m *Manager) Close() {
	m.Disconnect()
	m.watchers.Wait()
}

func (m *Manager) transmit(data []byte) error {
	n, err := m.port.Write(data)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}
	if err := m.port.Drain(); err != nil {
		return fmt.Errorf("drain failed: %w", err)
	}
	return nil
}

func (m *Manager) connectLocked(op, path string, baudRate int) error {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	if path == "" {
		return &Error{Kind: ErrConnection, Op: op, Err: errors.New("port path is required")}
	}

	if m.port != nil {
		m.closeLocked("replaced by new connection")
	}

	m.updateState(func(s *snapshot) {
		s.state = StateConnecting
		s.endpoint = path
		s.baudRate = baudRate
	})

	port, err := m.opener.Open(path, baudRate)
	if err != nil {
		m.updateState(func(s *snapshot) {
			s.state = StateDisconnected
			s.endpoint = ""
			s.baudRate = 0
		})
		m.logger.Error("Failed to connect drawer",
			zap.String("port", path),
			zap.Int("baud_rate", baudRate),
			zap.Error(err),
		)
		return &Error{Kind: ErrConnection, Op: op, Port: path, Err: err}
	}

	m.port = port
	m.last = &lastKnown{path: path, baudRate: baudRate}
	gen := m.generation.Add(1)

	last := *m.last
	m.updateState(func(s *snapshot) {
		s.state = StateConnected
		s.connectedAt = time.Now()
		s.fault = ""
		s.last = &last
	})

	m.watchers.Add(1)
	go m.watch(port, gen, path)

	m.logger.Info("Drawer connected",
		zap.String("port", path),
		zap.Int("baud_rate", baudRate),
	)
	m.publisher.Publish(events.New(events.DrawerConnected, eventSource, map[string]interface{}{
		"port":      path,
		"baud_rate": baudRate,
	}))
	return nil
}

// closeLocked discards the handle. Close errors are logged and ignored so a
// stuck handle never blocks a later connect.
func (m *Manager) closeLocked(reason string) {
	port := m.port
	path := m.currentEndpoint()
	m.port = nil
	m.generation.Add(1)

	if err := port.Close(); err != nil {
		m.logger.Warn("Error closing serial port, handle discarded",
			zap.String("port", path),
			zap.Error(err),
		)
	}

	m.updateState(func(s *snapshot) {
		s.state = StateDisconnected
		s.endpoint = ""
		s.baudRate = 0
		s.connectedAt = time.Time{}
	})

	m.logger.Info("Drawer disconnected",
		zap.String("port", path),
		zap.String("reason", reason),
	)
	m.publisher.Publish(events.New(events.DrawerDisconnected, eventSource, map[string]interface{}{
		"port":   path,
		"reason": reason,
	}))
}

// watch reads from the port until it fails. A read error on the active handle
// is treated as an unsolicited close from the hardware.
func (m *Manager) watch(port Port, gen uint64, path string) {
	defer m.watchers.Done()

	buf := make([]byte, 64)
	for {
		n, err := port.Read(buf)
		if err != nil {
			m.handleHardwareEvent(gen, path, err)
			return
		}
		if n > 0 {
			m.logger.Debug("Unsolicited data from drawer port",
				zap.String("port", path),
				zap.Binary("data", buf[:n]),
			)
			continue
		}
		if m.generation.Load() != gen {
			return
		}
	}
}

func (m *Manager) handleHardwareEvent(gen uint64, path string, cause error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.port == nil || m.generation.Load() != gen {
		// Handle was already closed by a foreground operation
		return
	}

	port := m.port
	m.port = nil
	m.generation.Add(1)
	_ = port.Close()

	m.updateState(func(s *snapshot) {
		s.state = StateDisconnected
		s.endpoint = ""
		s.baudRate = 0
		s.connectedAt = time.Time{}
		s.fault = cause.Error()
	})

	m.logger.Warn("Drawer port closed by hardware",
		zap.String("port", path),
		zap.Error(cause),
	)
	m.publisher.Publish(events.New(events.DrawerFault, eventSource, map[string]interface{}{
		"port":  path,
		"error": cause.Error(),
	}))
	m.publisher.Publish(events.New(events.DrawerDisconnected, eventSource, map[string]interface{}{
		"port":   path,
		"reason": "hardware",
	}))
}

func (m *Manager) currentEndpoint() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.endpoint
}

func (m *Manager) updateState(fn func(s *snapshot)) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	fn(&m.state)
}
