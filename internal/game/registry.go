package game

import (
	"encoding/json"
	"fmt"
)

// The catalog is fixed and small, so the registry is a static table built at
// package init. No registration happens after startup.
var registry = map[string]Engine{}

func register(e Engine) {
	if _, dup := registry[e.ID()]; dup {
		panic("game: duplicate engine id " + e.ID())
	}
	registry[e.ID()] = e
}

func init() {
	register(&Othello{})
	register(&AiueBattle{})
	register(&CityChase{})
}

// Get looks up an engine by game id.
func Get(id string) (Engine, bool) {
	e, ok := registry[id]
	return e, ok
}

// mustGet is for paths where the game id was already resolved once; a miss
// here is a caller bug, not user input.
func mustGet(id string) Engine {
	e, ok := registry[id]
	if !ok {
		panic("game: no engine registered for id " + id)
	}
	return e
}

// Start builds the initial state for a game, checking the player count
// against the engine's limits.
func Start(gameID string, playerIDs []string, hostID string) (any, error) {
	e, ok := Get(gameID)
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", gameID)
	}
	if len(playerIDs) < e.MinPlayers() || len(playerIDs) > e.MaxPlayers() {
		return nil, fmt.Errorf("%s requires %d-%d players", e.Name(), e.MinPlayers(), e.MaxPlayers())
	}
	return e.NewState(playerIDs, hostID), nil
}

// ProcessMove validates and applies a move. A rejection comes back as an
// error; a finished game additionally yields a Result.
func ProcessMove(gameID string, state any, raw json.RawMessage, playerID string) (any, *Result, error) {
	e := mustGet(gameID)

	if !e.ValidateMove(state, raw, playerID) {
		return nil, nil, fmt.Errorf("invalid move")
	}

	next := e.ApplyMove(state, raw, playerID)
	if e.Status(next) == StatusFinished {
		winner := e.Winner(next)
		reason := "win"
		if winner == nil {
			reason = "draw"
		}
		return next, &Result{WinnerID: winner, Reason: reason}, nil
	}
	return next, nil, nil
}

// PlayerView filters state for a viewer when the engine defines a view;
// otherwise the state passes through untouched.
func PlayerView(gameID string, state any, viewerID string) any {
	if v, ok := mustGet(gameID).(Viewer); ok {
		return v.PlayerView(state, viewerID)
	}
	return state
}

// HasPlayerView reports whether the engine filters state per viewer.
func HasPlayerView(gameID string) bool {
	e, ok := Get(gameID)
	if !ok {
		return false
	}
	_, hasView := e.(Viewer)
	return hasView
}

// MaxPlayers returns the capacity for a game id, used as room capacity.
func MaxPlayers(gameID string) (int, bool) {
	e, ok := Get(gameID)
	if !ok {
		return 0, false
	}
	return e.MaxPlayers(), true
}
