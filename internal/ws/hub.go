package ws

import (
	"encoding/json"
	"sync"

	"asobibox/internal/logger"
	"asobibox/internal/metrics"
	"asobibox/internal/repository"
	"asobibox/internal/room"
)

// sink is the outbound half of a connection. *Client implements it; tests
// substitute an in-memory one.
type sink interface {
	enqueue(data []byte)
}

// Hub tracks live connections and routes inbound events into the room
// manager and the game dispatcher. It never holds its own lock while the
// manager's lock is taken; sends happen on snapshots.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]sink
	manager *room.Manager
	matches *repository.MatchRepository // nil when archiving is disabled
}

func NewHub(manager *room.Manager, matches *repository.MatchRepository) *Hub {
	return &Hub{
		conns:   make(map[string]sink),
		manager: manager,
		matches: matches,
	}
}

// Manager exposes the room manager for the read-only admin surface.
func (h *Hub) Manager() *room.Manager { return h.manager }

func (h *Hub) addClient(c *Client) {
	h.addConn(c.ID, c)
}

func (h *Hub) addConn(id string, s sink) {
	h.mu.Lock()
	h.conns[id] = s
	h.mu.Unlock()
	metrics.ConnectionsActive.Inc()
}

// dropClient tears the connection down: the mapping is cleared immediately
// but the player stays in their room under a grace-period timer.
func (h *Hub) dropClient(c *Client) {
	h.mu.Lock()
	delete(h.conns, c.ID)
	h.mu.Unlock()
	metrics.ConnectionsActive.Dec()

	h.manager.Disconnect(c.ID, func(snap *room.Snapshot) {
		h.broadcastRoom(*snap)
	})
	_ = c.Conn.Close()
}

func (h *Hub) send(connID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("marshal payload", "event", event, "error", err)
		return
	}
	frame, err := json.Marshal(Message{Type: event, Payload: data})
	if err != nil {
		logger.Error("marshal frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	s, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok {
		s.enqueue(frame)
	}
}

// sendError delivers a rejection to the offending connection only.
func (h *Hub) sendError(connID, msg string) {
	h.send(connID, EvtError, ErrorPayload{Message: msg})
}

// broadcastRoom fans the room snapshot out to every connected member.
func (h *Hub) broadcastRoom(snap room.Snapshot) {
	for connID := range snap.Recipients {
		h.send(connID, EvtRoomUpdated, snap.Info)
	}
}

// broadcastEach sends one event to every member, with a payload built per
// recipient (used for per-viewer filtered game state).
func (h *Hub) broadcastEach(snap room.Snapshot, event string, build func(playerID string) any) {
	for connID, playerID := range snap.Recipients {
		h.send(connID, event, build(playerID))
	}
}
