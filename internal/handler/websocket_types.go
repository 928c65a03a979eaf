// internal/handler/websocket_types.go
package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a WebSocket client
type Client struct {
	ID          string          `json:"id"`
	Connection  *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	UserAgent   string          `json:"user_agent"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// Inbound and outbound message types
const (
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeDrawerCommand   = "drawer_command"
	MessageTypeCommandResponse = "command_response"
	MessageTypeInitialStatus   = "initial_status"
	MessageTypeError           = "error"
)

// DrawerCommandRequest is the data of a drawer_command message
type DrawerCommandRequest struct {
	Command  string `json:"command"`
	Port     string `json:"port,omitempty"`
	BaudRate int    `json:"baud_rate,omitempty"`
	// Kick names the variant for the open command
	Kick string `json:"kick,omitempty"`
}

// CommandResponse is the data of a command_response message
type CommandResponse struct {
	Command string      `json:"command"`
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ClientHub tracks connected WebSocket clients
type ClientHub struct {
	clients map[string]*Client
	mutex   sync.RWMutex
}

// NewClientHub creates an empty hub
func NewClientHub() *ClientHub {
	return &ClientHub{clients: make(map[string]*Client)}
}

// Register adds a client
func (hub *ClientHub) Register(client *Client) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[client.ID] = client
}

// Unregister removes a client and closes its send queue. Repeated calls are no-ops.
func (hub *ClientHub) Unregister(client *Client) bool {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if _, ok := hub.clients[client.ID]; !ok {
		return false
	}
	delete(hub.clients, client.ID)
	close(client.Send)
	return true
}

// Broadcast queues payload on every client. Clients whose queue is full miss
// the message.
func (hub *ClientHub) Broadcast(payload []byte) int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	delivered := 0
	for _, client := range hub.clients {
		select {
		case client.Send <- payload:
			delivered++
		default:
		}
	}
	return delivered
}

// Enqueue queues payload for one registered client
func (hub *ClientHub) Enqueue(client *Client, payload []byte) bool {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	if _, ok := hub.clients[client.ID]; !ok {
		return false
	}
	select {
	case client.Send <- payload:
		return true
	default:
		return false
	}
}

// CloseAll unregisters every client
func (hub *ClientHub) CloseAll() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for id, client := range hub.clients {
		delete(hub.clients, id)
		close(client.Send)
	}
}

// GetStats returns connection statistics
func (hub *ClientHub) GetStats() *ConnectionStats {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	stats := &ConnectionStats{
		TotalConnections: len(hub.clients),
		Clients:          make([]*Client, 0, len(hub.clients)),
	}
	for _, client := range hub.clients {
		stats.Clients = append(stats.Clients, client)
	}
	return stats
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	TotalConnections int       `json:"total_connections"`
	Clients          []*Client `json:"clients"`
}
