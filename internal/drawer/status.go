// internal/drawer/status.go
package drawer

import "time"

// State is the connection state of the drawer
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Status is a point-in-time snapshot of the connection
type Status struct {
	Connected    bool       `json:"connected"`
	State        State      `json:"state"`
	Endpoint     string     `json:"endpoint,omitempty"`
	BaudRate     int        `json:"baud_rate,omitempty"`
	LastEndpoint string     `json:"last_endpoint,omitempty"`
	LastBaudRate int        `json:"last_baud_rate,omitempty"`
	ConnectedAt  *time.Time `json:"connected_at,omitempty"`
	// Fault holds the reason of the last unsolicited disconnect, cleared on connect
	Fault string `json:"fault,omitempty"`
}

// lastKnown is the endpoint replayed by Reconnect
type lastKnown struct {
	path     string
	baudRate int
}

// snapshot is the state published to Status readers
type snapshot struct {
	state       State
	endpoint    string
	baudRate    int
	connectedAt time.Time
	fault       string
	last        *lastKnown
}

func (s snapshot) status() Status {
	st := Status{
		Connected: s.state == StateConnected,
		State:     s.state,
		Endpoint:  s.endpoint,
		BaudRate:  s.baudRate,
		Fault:     s.fault,
	}
	if s.state == StateConnected && !s.connectedAt.IsZero() {
		t := s.connectedAt
		st.ConnectedAt = &t
	}
	if s.last != nil {
		st.LastEndpoint = s.last.path
		st.LastBaudRate = s.last.baudRate
	}
	return st
}
