package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drawer-service/internal/drawer"
	"drawer-service/internal/events"
	"drawer-service/internal/repository"
	"drawer-service/internal/service"
)

type wsMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

func newWebSocketServer(t *testing.T, ctrl *fakeController) (*websocket.Conn, *events.Bus) {
	t.Helper()

	bus := events.NewBus(zap.NewNop())
	go bus.Start()
	t.Cleanup(bus.Close)

	svc := service.NewDrawerService(ctrl, repository.NewMemoryOperationRepository(10), drawer.CommandStandard, zap.NewNop())
	ws := NewWebSocketHandler(svc, bus, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ws.Start(ctx)

	router := gin.New()
	ws.RegisterRoutes(router.Group("/ws"))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	initial := readMessage(t, conn)
	require.Equal(t, MessageTypeInitialStatus, initial.Type)
	return conn, bus
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketPing(t *testing.T) {
	conn, _ := newWebSocketServer(t, &fakeController{})

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping", "request_id": "r-1"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypePong, msg.Type)
	assert.Equal(t, "r-1", msg.RequestID)
}

func TestWebSocketDrawerCommands(t *testing.T) {
	ctrl := &fakeController{}
	conn, _ := newWebSocketServer(t, ctrl)

	send := func(data map[string]interface{}) CommandResponse {
		require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "drawer_command", "data": data}))
		msg := readMessage(t, conn)
		require.Equal(t, MessageTypeCommandResponse, msg.Type)
		var resp CommandResponse
		require.NoError(t, json.Unmarshal(msg.Data, &resp))
		return resp
	}

	resp := send(map[string]interface{}{"command": "open"})
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_CONNECTED", resp.Code)

	resp = send(map[string]interface{}{"command": "connect", "port": "/dev/ttyUSB0", "baud_rate": 9600})
	require.True(t, resp.Success, resp.Error)

	resp = send(map[string]interface{}{"command": "open", "kick": "star"})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, []drawer.Command{drawer.CommandVendorB}, ctrl.sentCommands())

	resp = send(map[string]interface{}{"command": "status"})
	require.True(t, resp.Success)
	status := resp.Result.(map[string]interface{})
	assert.Equal(t, true, status["connected"])

	resp = send(map[string]interface{}{"command": "eject"})
	assert.False(t, resp.Success)
	assert.Equal(t, "UNKNOWN_COMMAND", resp.Code)
}

func TestWebSocketStreamsBusEvents(t *testing.T) {
	conn, bus := newWebSocketServer(t, &fakeController{})

	bus.Publish(events.New(events.DrawerFault, "drawer", map[string]interface{}{
		"port":  "/dev/ttyUSB0",
		"error": "device unplugged",
	}))

	msg := readMessage(t, conn)
	assert.Equal(t, events.DrawerFault, msg.Type)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "/dev/ttyUSB0", data["port"])
}

func TestWebSocketUnknownMessage(t *testing.T) {
	conn, _ := newWebSocketServer(t, &fakeController{})

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeError, msg.Type)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

func TestClientHubUnregisterTwice(t *testing.T) {
	hub := NewClientHub()
	client := &Client{ID: "c1", Send: make(chan []byte, 1)}
	hub.Register(client)

	assert.Equal(t, 1, hub.Broadcast([]byte("x")))
	assert.True(t, hub.Unregister(client))
	assert.False(t, hub.Unregister(client))
	assert.Equal(t, 0, hub.Broadcast([]byte("y")))
	assert.Equal(t, 0, hub.GetStats().TotalConnections)
}
