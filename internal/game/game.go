package game

import "encoding/json"

type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Result describes a finished game. A nil WinnerID means a draw; for team
// games the winner is one representative player id.
type Result struct {
	WinnerID *string `json:"winnerId"`
	Reason   string  `json:"reason"`
}

// Engine is the contract every game implements. State values are owned by
// the engine that created them and are opaque to everything else: callers
// never inspect fields, they only pass states back into contract methods.
//
// ApplyMove must only be called after ValidateMove returned true for the
// same (state, raw, playerID) triple. Calling it otherwise is a caller bug
// and engines are free to panic.
type Engine interface {
	ID() string
	Name() string
	MinPlayers() int
	MaxPlayers() int

	// NewState builds the starting state. Deterministic for a given player
	// order except where a game intentionally randomizes internally.
	NewState(playerIDs []string, hostID string) any

	// ValidateMove reports whether raw is a legal move for playerID. It is a
	// pure predicate: false for the wrong actor, the wrong phase, a payload
	// that does not decode, or a rule violation. Never mutates state.
	ValidateMove(state any, raw json.RawMessage, playerID string) bool

	// ApplyMove produces the successor state.
	ApplyMove(state any, raw json.RawMessage, playerID string) any

	Status(state any) Status

	// Winner returns the winning player id, or nil for a draw.
	Winner(state any) *string

	// CurrentPlayerID is informational only; ValidateMove stays authoritative.
	CurrentPlayerID(state any) string
}

// Viewer is implemented by engines whose state must be filtered per player
// before it leaves the server. Engines without it broadcast unfiltered.
type Viewer interface {
	PlayerView(state any, viewerID string) any
}
