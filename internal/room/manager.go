package room

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"asobibox/internal/game"
	"asobibox/internal/logger"
	"asobibox/internal/metrics"

	"github.com/google/uuid"
)

// Visually ambiguous characters (0/O, 1/I) are excluded from room codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 4

var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomStarted     = errors.New("game has already started")
	ErrRoomFull        = errors.New("room is full")
	ErrNotInRoom       = errors.New("not in a room")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSessionNotFound = errors.New("session not found")
)

// disconnectTimer exists between "connection dropped" and either
// "reconnected" or "grace period elapsed". The resolved flag is the race
// arbiter: whichever of cancel and fire swaps it first wins, the loser
// becomes a no-op.
type disconnectTimer struct {
	timer    *time.Timer
	resolved atomic.Bool
}

// Manager owns every room, session and disconnect timer in the process.
//
// One mutex serializes all mutations. Engine calls made under the lock are
// pure in-memory computations, so nothing blocks for unbounded time while
// holding it; websocket sends and database writes happen outside on
// snapshots.
type Manager struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	sessions map[string]*Session
	timers   map[string]*disconnectTimer

	grace time.Duration
}

func NewManager(grace time.Duration) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		sessions: make(map[string]*Session),
		timers:   make(map[string]*disconnectTimer),
		grace:    grace,
	}
}

func (m *Manager) generateCode() string {
	for {
		code := make([]byte, codeLength)
		for i := range code {
			code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		if _, taken := m.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

// sessionToken returns a usable token: the client-provided one, or a fresh
// one when it is empty or already bound to another session.
func (m *Manager) sessionToken(provided string) string {
	if provided != "" {
		if _, taken := m.sessions[provided]; !taken {
			return provided
		}
	}
	return uuid.NewString()
}

// CreateRoom creates a room with the caller as host. Returns the room
// snapshot, the new player id and the effective session token.
func (m *Manager) CreateRoom(connID, playerName, gameID, sessionToken string) (Snapshot, string, string, error) {
	if _, ok := game.Get(gameID); !ok {
		return Snapshot{}, "", "", ErrUnknownGame
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.generateCode()
	playerID := uuid.NewString()
	token := m.sessionToken(sessionToken)

	r := &Room{
		Code:         code,
		GameID:       gameID,
		Players:      []Player{{ID: playerID, Name: playerName}},
		HostID:       playerID,
		Status:       StatusWaiting,
		ConnToPlayer: map[string]string{connID: playerID},
	}
	m.rooms[code] = r
	m.sessions[token] = &Session{Token: token, RoomCode: code, PlayerID: playerID}
	metrics.RoomsActive.Inc()

	logger.Info("room created", "code", code, "game", gameID, "player", playerID)
	return r.snapshot(), playerID, token, nil
}

// JoinRoom adds a player to a waiting room. Capacity is the game's maximum
// player count.
func (m *Manager) JoinRoom(code, connID, playerName, sessionToken string) (Snapshot, string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[code]
	if !ok {
		return Snapshot{}, "", "", ErrRoomNotFound
	}
	if r.Status != StatusWaiting {
		return Snapshot{}, "", "", ErrRoomStarted
	}
	capacity, _ := game.MaxPlayers(r.GameID)
	if len(r.Players) >= capacity {
		return Snapshot{}, "", "", ErrRoomFull
	}

	playerID := uuid.NewString()
	token := m.sessionToken(sessionToken)

	r.Players = append(r.Players, Player{ID: playerID, Name: playerName})
	r.ConnToPlayer[connID] = playerID
	m.sessions[token] = &Session{Token: token, RoomCode: code, PlayerID: playerID}

	logger.Info("player joined", "code", code, "player", playerID)
	return r.snapshot(), playerID, token, nil
}

// Leave removes the player behind connID immediately: session destroyed, any
// pending disconnect timer cancelled, room destroyed when it empties. The
// returned snapshot is nil when the room was destroyed.
func (m *Manager) Leave(connID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, playerID := m.roomByConnLocked(connID)
	if r == nil {
		return nil, ErrNotInRoom
	}

	delete(r.ConnToPlayer, connID)
	m.destroySessionLocked(r.Code, playerID)
	snap := m.removePlayerLocked(r, playerID)

	logger.Info("player left", "code", r.Code, "player", playerID)
	return snap, nil
}

// Disconnect clears the connection mapping but keeps the player in the
// room, arming a grace-period timer on their session. onExpired runs after
// the grace period removed the player, with the surviving room's snapshot,
// or nil when the room was destroyed with them.
func (m *Manager) Disconnect(connID string, onExpired func(*Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, playerID := m.roomByConnLocked(connID)
	if r == nil {
		return
	}
	delete(r.ConnToPlayer, connID)

	sess := m.sessionByPlayerLocked(r.Code, playerID)
	if sess == nil {
		return
	}

	// At most one timer per session: a stale one loses to this arm.
	if old, ok := m.timers[sess.Token]; ok {
		old.resolved.Store(true)
		old.timer.Stop()
	}

	dt := &disconnectTimer{}
	dt.timer = time.AfterFunc(m.grace, func() {
		m.expireSession(sess.Token, dt, onExpired)
	})
	m.timers[sess.Token] = dt

	logger.Info("connection dropped, grace period armed",
		"code", r.Code, "player", playerID, "grace", m.grace)
}

func (m *Manager) expireSession(token string, dt *disconnectTimer, onExpired func(*Snapshot)) {
	if !dt.resolved.CompareAndSwap(false, true) {
		return // reconnect won the race
	}

	m.mu.Lock()
	sess, ok := m.sessions[token]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, token)
	delete(m.timers, token)

	var snap *Snapshot
	if r, ok := m.rooms[sess.RoomCode]; ok {
		snap = m.removePlayerLocked(r, sess.PlayerID)
	}
	m.mu.Unlock()

	metrics.ReconnectsTotal.WithLabelValues("expired").Inc()
	logger.Info("grace period elapsed, player removed",
		"code", sess.RoomCode, "player", sess.PlayerID)

	if snap != nil && onExpired != nil {
		onExpired(snap)
	}
}

// ReconnectResult is everything a re-joining client needs to resume.
type ReconnectResult struct {
	Snapshot   Snapshot
	PlayerID   string
	GameState  any
	GameResult *game.Result
}

// Reconnect re-associates a live connection with an existing session. It
// fails when the session never existed or its grace period already elapsed.
func (m *Manager) Reconnect(sessionToken, connID string) (*ReconnectResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionToken]
	if !ok {
		metrics.ReconnectsTotal.WithLabelValues("failed").Inc()
		return nil, ErrSessionNotFound
	}

	if dt, ok := m.timers[sessionToken]; ok {
		if !dt.resolved.CompareAndSwap(false, true) {
			// Timer fired concurrently; the session is on its way out.
			metrics.ReconnectsTotal.WithLabelValues("failed").Inc()
			return nil, ErrSessionNotFound
		}
		dt.timer.Stop()
		delete(m.timers, sessionToken)
	}

	r, ok := m.rooms[sess.RoomCode]
	if !ok || !r.hasPlayer(sess.PlayerID) {
		delete(m.sessions, sessionToken)
		metrics.ReconnectsTotal.WithLabelValues("failed").Inc()
		return nil, ErrSessionNotFound
	}

	r.ConnToPlayer[connID] = sess.PlayerID
	metrics.ReconnectsTotal.WithLabelValues("resumed").Inc()
	logger.Info("session resumed", "code", r.Code, "player", sess.PlayerID)

	return &ReconnectResult{
		Snapshot:   r.snapshot(),
		PlayerID:   sess.PlayerID,
		GameState:  r.GameState,
		GameResult: r.GameResult,
	}, nil
}

// WithRoom runs fn under the manager lock with the room that connID is
// mapped into, serializing it against every other mutation of that room.
// fn must not block or perform I/O.
func (m *Manager) WithRoom(connID string, fn func(r *Room, playerID string) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, playerID := m.roomByConnLocked(connID)
	if r == nil {
		return ErrNotInRoom
	}
	return fn(r, playerID)
}

func (m *Manager) roomByConnLocked(connID string) (*Room, string) {
	for _, r := range m.rooms {
		if playerID, ok := r.ConnToPlayer[connID]; ok {
			return r, playerID
		}
	}
	return nil, ""
}

func (m *Manager) sessionByPlayerLocked(roomCode, playerID string) *Session {
	for _, s := range m.sessions {
		if s.RoomCode == roomCode && s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

func (m *Manager) destroySessionLocked(roomCode, playerID string) {
	if sess := m.sessionByPlayerLocked(roomCode, playerID); sess != nil {
		if dt, ok := m.timers[sess.Token]; ok {
			dt.resolved.Store(true)
			dt.timer.Stop()
			delete(m.timers, sess.Token)
		}
		delete(m.sessions, sess.Token)
	}
}

// removePlayerLocked drops a player from the room, reassigning the host
// when needed (hostId must always point at a present player) and destroying
// the room when it empties.
func (m *Manager) removePlayerLocked(r *Room, playerID string) *Snapshot {
	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}

	if len(r.Players) == 0 {
		delete(m.rooms, r.Code)
		metrics.RoomsActive.Dec()
		logger.Info("room destroyed", "code", r.Code)
		return nil
	}

	if r.HostID == playerID {
		r.HostID = r.Players[0].ID
	}
	snap := r.snapshot()
	return &snap
}

// AdminStats is the aggregate view for the read-only dashboard.
type AdminStats struct {
	RoomCount            int            `json:"roomCount"`
	SessionCount         int            `json:"sessionCount"`
	DisconnectTimerCount int            `json:"disconnectTimerCount"`
	RoomsByStatus        map[string]int `json:"roomsByStatus"`
}

func (m *Manager) Stats() AdminStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := AdminStats{
		RoomCount:            len(m.rooms),
		SessionCount:         len(m.sessions),
		DisconnectTimerCount: len(m.timers),
		RoomsByStatus: map[string]int{
			StatusWaiting:  0,
			StatusPlaying:  0,
			StatusFinished: 0,
		},
	}
	for _, r := range m.rooms {
		stats.RoomsByStatus[r.Status]++
	}
	return stats
}

// Rooms returns snapshots of every live room.
func (m *Manager) Rooms() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]Info, 0, len(m.rooms))
	for _, r := range m.rooms {
		infos = append(infos, r.info())
	}
	return infos
}

// AdminPlayer decorates a player with liveness for the dashboard.
type AdminPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	IsHost    bool   `json:"isHost"`
}

// AdminRoomDetail is the per-room dashboard view.
type AdminRoomDetail struct {
	Code       string        `json:"code"`
	GameID     string        `json:"gameId"`
	Status     string        `json:"status"`
	HostID     string        `json:"hostId"`
	Players    []AdminPlayer `json:"players"`
	GameResult *game.Result  `json:"gameResult"`
}

func (m *Manager) RoomDetail(code string) (*AdminRoomDetail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[code]
	if !ok {
		return nil, false
	}

	connected := make(map[string]bool, len(r.ConnToPlayer))
	for _, playerID := range r.ConnToPlayer {
		connected[playerID] = true
	}

	detail := &AdminRoomDetail{
		Code:       r.Code,
		GameID:     r.GameID,
		Status:     r.Status,
		HostID:     r.HostID,
		GameResult: r.GameResult,
	}
	for _, p := range r.Players {
		detail.Players = append(detail.Players, AdminPlayer{
			ID:        p.ID,
			Name:      p.Name,
			Connected: connected[p.ID],
			IsHost:    p.ID == r.HostID,
		})
	}
	return detail, true
}
