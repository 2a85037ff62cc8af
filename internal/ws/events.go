package ws

import (
	"encoding/json"

	"asobibox/internal/game"
	"asobibox/internal/room"
)

const (
	// client → server
	EvtRoomCreate       = "room:create"
	EvtRoomJoin         = "room:join"
	EvtRoomLeave        = "room:leave"
	EvtGameStart        = "game:start"
	EvtGameMove         = "game:move"
	EvtSessionReconnect = "session:reconnect"

	// server → client
	EvtRoomCreated        = "room:created"
	EvtRoomJoined         = "room:joined"
	EvtRoomUpdated        = "room:updated"
	EvtRoomLeft           = "room:left"
	EvtGameStarted        = "game:started"
	EvtGameStateUpdated   = "game:stateUpdated"
	EvtGameEnded          = "game:ended"
	EvtSessionReconnected = "session:reconnected"
	EvtError              = "error"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client → server

type CreateRoomPayload struct {
	PlayerName   string `json:"playerName"`
	GameID       string `json:"gameId"`
	SessionToken string `json:"sessionToken"`
}

type JoinRoomPayload struct {
	RoomCode     string `json:"roomCode"`
	PlayerName   string `json:"playerName"`
	SessionToken string `json:"sessionToken"`
}

type MovePayload struct {
	Move json.RawMessage `json:"move"`
}

type ReconnectPayload struct {
	SessionToken string `json:"sessionToken"`
}

// server → client

type RoomCreatedPayload struct {
	RoomCode     string `json:"roomCode"`
	PlayerID     string `json:"playerId"`
	SessionToken string `json:"sessionToken"`
}

type JoinResultPayload struct {
	OK           bool       `json:"ok"`
	Error        string     `json:"error,omitempty"`
	Room         *room.Info `json:"room,omitempty"`
	PlayerID     string     `json:"playerId,omitempty"`
	SessionToken string     `json:"sessionToken,omitempty"`
}

type ReconnectedPayload struct {
	Success    bool         `json:"success"`
	Room       *room.Info   `json:"room,omitempty"`
	PlayerID   string       `json:"playerId,omitempty"`
	GameState  any          `json:"gameState,omitempty"`
	GameResult *game.Result `json:"gameResult,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
