// internal/handler/websocket_handler.go
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"drawer-service/internal/drawer"
	"drawer-service/internal/events"
	"drawer-service/internal/service"
	"drawer-service/internal/utils"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// WebSocketHandler streams drawer and updater events and accepts drawer
// commands over WebSocket
type WebSocketHandler struct {
	upgrader      websocket.Upgrader
	clients       *ClientHub
	drawerService *service.DrawerService
	bus           *events.Bus
	logger        *utils.ServiceLogger
}

type inboundMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewWebSocketHandler creates a new WebSocket handler. An empty
// allowedOrigins list, or one containing "*", accepts any origin.
func NewWebSocketHandler(
	drawerService *service.DrawerService,
	bus *events.Bus,
	allowedOrigins []string,
	logger *zap.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		clients:       NewClientHub(),
		drawerService: drawerService,
		bus:           bus,
		logger:        utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/events", h.HandleEventConnection)
}

// Start subscribes to the bus and forwards events to every connected client
// until ctx is done, then closes all clients.
func (h *WebSocketHandler) Start(ctx context.Context) {
	sub := h.bus.Subscribe(events.AllEvents)
	go h.forward(ctx, sub)
}

func (h *WebSocketHandler) forward(ctx context.Context, sub <-chan events.Event) {
	defer func() {
		h.bus.Unsubscribe(events.AllEvents, sub)
		h.clients.CloseAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			h.BroadcastEvent(event)
		}
	}
}

// BroadcastEvent sends an event to all clients as {type, data, timestamp}
func (h *WebSocketHandler) BroadcastEvent(event events.Event) {
	payload, err := json.Marshal(&WebSocketMessage{
		Type:      event.Type,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		h.logger.Error("Failed to marshal event", zap.Error(err), zap.String("event_type", event.Type))
		return
	}
	h.clients.Broadcast(payload)
}

// Stats returns the connected clients
func (h *WebSocketHandler) Stats() *ConnectionStats {
	return h.clients.GetStats()
}

// HandleEventConnection upgrades the request and starts the client pumps
// @Summary Live drawer events
// @Description WebSocket stream of drawer and update events; accepts ping and drawer_command messages
// @Tags WebSocket
// @Router /ws/events [get]
func (h *WebSocketHandler) HandleEventConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.clients.Register(client)
	h.logger.Info("Event WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	h.sendMessage(client, &WebSocketMessage{
		Type:      MessageTypeInitialStatus,
		Data:      h.drawerService.Status(),
		Timestamp: time.Now(),
	})

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.clients.Unregister(client)
		client.Connection.Close()
		h.logger.Info("Event WebSocket client disconnected", zap.String("client_id", client.ID))
	}()

	client.Connection.SetReadLimit(64 * 1024)
	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		return client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			return
		}

		var message inboundMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.sendError(client, "invalid message: "+err.Error())
			continue
		}

		h.handleClientMessage(client, &message)
	}
}

func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Warn("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) handleClientMessage(client *Client, message *inboundMessage) {
	switch message.Type {
	case MessageTypePing:
		h.sendMessage(client, &WebSocketMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	case MessageTypeDrawerCommand:
		var req DrawerCommandRequest
		if len(message.Data) == 0 || json.Unmarshal(message.Data, &req) != nil || req.Command == "" {
			h.sendError(client, "drawer_command requires data.command")
			return
		}
		// Commands block on the serial port; keep reading pings meanwhile
		go h.executeDrawerCommand(client, message.RequestID, &req)
	default:
		h.sendError(client, fmt.Sprintf("unknown message type: %s", message.Type))
	}
}

func (h *WebSocketHandler) executeDrawerCommand(client *Client, requestID string, req *DrawerCommandRequest) {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx := service.WithRequestID(context.Background(), requestID)

	var (
		result interface{}
		err    error
	)
	switch req.Command {
	case "connect":
		result, err = h.drawerService.Connect(ctx, req.Port, req.BaudRate)
	case "disconnect":
		result = h.drawerService.Disconnect(ctx)
	case "reconnect":
		result, err = h.drawerService.Reconnect(ctx)
	case "auto_connect":
		result, err = h.drawerService.AutoConnect(ctx)
	case "open":
		var cmd drawer.Command
		cmd, err = h.drawerService.OpenDrawer(ctx, req.Kick)
		if err == nil {
			result = map[string]interface{}{"opened": true, "command": cmd.String()}
		}
	case "test":
		err = h.drawerService.TestDrawer(ctx)
		if err == nil {
			result = map[string]interface{}{"opened": true}
		}
	case "status":
		result = h.drawerService.Status()
	default:
		err = &drawer.Error{Kind: drawer.ErrUnknownCommand, Op: "drawer_command", Err: fmt.Errorf("%q", req.Command)}
	}

	response := CommandResponse{
		Command: req.Command,
		Success: err == nil,
		Result:  result,
	}
	if err != nil {
		response.Error = err.Error()
		response.Code = drawer.ErrorCode(err)
		response.Result = nil
	}

	h.sendMessage(client, &WebSocketMessage{
		Type:      MessageTypeCommandResponse,
		Data:      response,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}
	if !h.clients.Enqueue(client, messageBytes) {
		h.logger.Warn("Client gone or send queue full, dropping message",
			zap.String("client_id", client.ID),
			zap.String("type", message.Type),
		)
	}
}

func (h *WebSocketHandler) sendError(client *Client, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type:      MessageTypeError,
		Data:      map[string]interface{}{"error": errorMsg},
		Timestamp: time.Now(),
	})
}
