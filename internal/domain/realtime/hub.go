package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// TaskRoom is the shared room every connected client is joined to. All task
// mutation notifications are broadcast here.
const TaskRoom = "tasks-room"

var ErrHubClosed = errors.New("realtime: hub is closed")

// Message is the wire payload pushed to room members.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected subscriber. Send is drained by a single writer
// goroutine owned by the transport, which preserves per-connection ordering.
type Client struct {
	ID   string
	Send chan []byte
}

// Hub maintains room membership and broadcasts messages to members. It is
// constructed once at process start and passed by handle to every component
// that publishes; there is no package-level instance.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	rooms    map[string]map[string]*Client
	closed   bool
	sendSize int
	log      *logrus.Logger
}

// NewHub creates a hub whose clients buffer up to sendSize pending messages.
func NewHub(sendSize int, log *logrus.Logger) *Hub {
	if sendSize <= 0 {
		sendSize = 64
	}
	return &Hub{
		clients:  make(map[string]*Client),
		rooms:    make(map[string]map[string]*Client),
		sendSize: sendSize,
		log:      log,
	}
}

// Register adds a client and joins it to the shared task room. Join happens
// atomically with registration: there is no connected-but-unjoined state.
func (h *Hub) Register(id string) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	client := &Client{
		ID:   id,
		Send: make(chan []byte, h.sendSize),
	}
	h.clients[id] = client
	h.join(client, TaskRoom)

	h.log.WithField("client_id", id).Debug("client registered")
	return client, nil
}

// Unregister removes a client from every room and closes its send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	for room, members := range h.rooms {
		if _, ok := members[id]; ok {
			delete(members, id)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(client.Send)

	h.log.WithField("client_id", id).Debug("client unregistered")
}

// JoinRoom adds a registered client to an additional room.
func (h *Hub) JoinRoom(id, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[id]
	if !ok {
		return
	}
	h.join(client, room)
}

// LeaveRoom removes a client from a room. Leaving the shared task room is
// allowed but the client stays registered.
func (h *Hub) LeaveRoom(id, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// join adds the client to a room. Caller holds the lock.
func (h *Hub) join(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Client)
	}
	h.rooms[room][client.ID] = client
}

// Broadcast delivers msg to every current member of room, at most once each.
// Delivery is fire-and-forget: a member whose send buffer is full misses the
// message, and clients that connect later never see it.
func (h *Hub) Broadcast(room string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal broadcast message")
		return
	}

	// Sends are non-blocking, so the read lock is held for the whole
	// publish. This keeps Unregister (which closes Send) from racing a
	// delivery, and members joining mid-publish wait for the next one.
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for _, client := range h.rooms[room] {
		select {
		case client.Send <- data:
		default:
			h.log.WithFields(logrus.Fields{
				"client_id": client.ID,
				"room":      room,
			}).Warn("dropping notification, client send buffer full")
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of members in a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close unregisters every client and rejects further registration. Called
// once at process shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
	h.rooms = make(map[string]map[string]*Client)

	h.log.Info("realtime hub closed")
}
