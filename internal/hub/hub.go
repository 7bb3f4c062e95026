package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"group_chat/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Hub is the room broadcast router. It tracks live connections per room
// and fans events out to them. Its per-room sets are independent of the
// persisted membership records: they hold sockets, not members.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Client]struct{}
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]map[*Client]struct{}),
		log:   log,
	}
}

func (h *Hub) Register(roomID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[roomID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[roomID] = clients
	}
	clients[client] = struct{}{}

	h.log.Debug("Client registered", "room_id", roomID, "clients", len(clients))
}

// Deregister removes the client from its room's fan-out set. It is
// unconditional and safe to call more than once.
func (h *Hub) Deregister(roomID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	client.shutdown()

	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}

	h.log.Debug("Client deregistered", "room_id", roomID, "clients", len(clients))
}

// Broadcast fans the event out to every client attached to the room,
// except exclude when non-nil. Enqueueing happens under the lock so two
// broadcasts to the same room are observed in the same order by every
// recipient; actual socket writes happen in each client's write pump, so
// a slow connection never stalls the others.
func (h *Hub) Broadcast(roomID uuid.UUID, event Event, exclude *Client) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to marshal broadcast event", "error", err, "type", event.Type)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		if client == exclude {
			continue
		}
		select {
		case client.send <- payload:
		default:
			// Buffer full: this client is too slow, drop the event for
			// it rather than stall the room.
			h.log.Warn("Client send buffer full, dropping event", "room_id", roomID, "type", event.Type)
		}
	}
}

// RoomSize reports the number of live connections in a room.
func (h *Hub) RoomSize(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
