package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/realtime"
	"github.com/ShakirYasin/exact-sol-test/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 10 * 1024
)

// controlMessage is what clients send over the socket. Everything except
// room control is ignored.
type controlMessage struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId"`
}

// RealtimeHandler upgrades websocket connections and bridges them to the hub
type RealtimeHandler struct {
	hub      *realtime.Hub
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewRealtimeHandler creates a new RealtimeHandler instance
func NewRealtimeHandler(hub *realtime.Hub, logger *logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Connect upgrades the request to a websocket and joins the client to the
// shared task room. The auth middleware has already validated the token,
// either from the Authorization header or the token query parameter.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade to WebSocket",
			zap.Error(err),
			zap.String("user_id", userID.String()))
		return
	}

	// One user may hold several tabs, so the hub id is per connection.
	clientID := fmt.Sprintf("%s:%s", userID, uuid.New())

	client, err := h.hub.Register(clientID)
	if err != nil {
		h.logger.Warn("Rejecting websocket, hub closed", zap.String("user_id", userID.String()))
		ws.Close()
		return
	}

	middleware.WebsocketConnected()
	h.logger.Info("WebSocket client connected",
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID))

	go h.writeLoop(ws, client)
	h.readLoop(ws, clientID, userID)
}

// readLoop consumes client messages until the connection drops. JOIN_TASK and
// LEAVE_TASK manage per-task room membership; anything else is discarded.
func (h *RealtimeHandler) readLoop(ws *websocket.Conn, clientID string, userID uuid.UUID) {
	defer func() {
		h.hub.Unregister(clientID)
		middleware.WebsocketDisconnected()
		ws.Close()
		h.logger.Info("WebSocket client disconnected",
			zap.String("user_id", userID.String()),
			zap.String("client_id", clientID))
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", clientID))
			}
			return
		}

		var msg controlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "JOIN_TASK":
			if msg.TaskID != "" {
				h.hub.JoinRoom(clientID, taskRoomName(msg.TaskID))
			}
		case "LEAVE_TASK":
			if msg.TaskID != "" {
				h.hub.LeaveRoom(clientID, taskRoomName(msg.TaskID))
			}
		}
	}
}

// writeLoop drains the client's send channel onto the socket. A single
// writer per connection keeps message order intact.
func (h *RealtimeHandler) writeLoop(ws *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case data, ok := <-client.Send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func taskRoomName(taskID string) string {
	return "task:" + taskID
}
