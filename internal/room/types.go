package room

import "asobibox/internal/game"

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is a single match lobby. All fields are guarded by the Manager's
// lock; outside packages only see copies taken via Manager methods or the
// *Room handed to a WithRoom callback.
type Room struct {
	Code       string
	GameID     string
	Players    []Player
	HostID     string
	Status     string
	GameState  any
	GameResult *game.Result

	// Live connections currently mapped into the room.
	ConnToPlayer map[string]string
}

// Session binds a participant to a room across connection drops. The token
// is a client-held secret.
type Session struct {
	Token    string
	RoomCode string
	PlayerID string
}

// Info is the wire-facing room snapshot. It deliberately omits the game
// state: hidden-information games must only leave the server through
// per-viewer filtered payloads.
type Info struct {
	Code    string   `json:"code"`
	GameID  string   `json:"gameId"`
	Players []Player `json:"players"`
	HostID  string   `json:"hostId"`
	Status  string   `json:"status"`
}

// Snapshot carries everything a message handler needs to fan out an update
// after the manager lock is released.
type Snapshot struct {
	Info       Info
	Recipients map[string]string // connID -> playerID
}

func (r *Room) info() Info {
	return Info{
		Code:    r.Code,
		GameID:  r.GameID,
		Players: append([]Player(nil), r.Players...),
		HostID:  r.HostID,
		Status:  r.Status,
	}
}

func (r *Room) snapshot() Snapshot {
	recipients := make(map[string]string, len(r.ConnToPlayer))
	for conn, player := range r.ConnToPlayer {
		recipients[conn] = player
	}
	return Snapshot{Info: r.info(), Recipients: recipients}
}

// Snapshot copies the room for use after the manager lock is released.
// Callers inside a WithRoom callback use it to capture broadcast targets.
func (r *Room) Snapshot() Snapshot { return r.snapshot() }

// PlayerIDs returns the player ids in join order.
func (r *Room) PlayerIDs() []string { return r.playerIDs() }

func (r *Room) playerIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

func (r *Room) hasPlayer(playerID string) bool {
	for _, p := range r.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
