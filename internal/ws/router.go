package ws

import (
	"encoding/json"
	"errors"
	"math/rand"

	"asobibox/internal/game"
	"asobibox/internal/logger"
	"asobibox/internal/metrics"
	"asobibox/internal/room"
)

var (
	errNotHost          = errors.New("only the host can start the game")
	errNotEnoughPlayers = errors.New("not enough players")
	errNotInProgress    = errors.New("game is not in progress")
)

// HandleMessage dispatches one inbound frame. Rejections go back to the
// sending connection only; they never broadcast.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	h.handle(c.ID, raw)
}

func (h *Hub) handle(connID string, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(connID, "malformed message")
		return
	}

	switch msg.Type {
	case EvtRoomCreate:
		h.handleRoomCreate(connID, msg.Payload)
	case EvtRoomJoin:
		h.handleRoomJoin(connID, msg.Payload)
	case EvtGameStart:
		h.handleGameStart(connID)
	case EvtGameMove:
		h.handleGameMove(connID, msg.Payload)
	case EvtRoomLeave:
		h.handleRoomLeave(connID)
	case EvtSessionReconnect:
		h.handleReconnect(connID, msg.Payload)
	default:
		h.sendError(connID, "unknown event: "+msg.Type)
	}
}

func (h *Hub) handleRoomCreate(connID string, payload json.RawMessage) {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.PlayerName == "" {
		h.sendError(connID, "invalid room:create payload")
		return
	}

	snap, playerID, token, err := h.manager.CreateRoom(connID, p.PlayerName, p.GameID, p.SessionToken)
	if err != nil {
		h.sendError(connID, err.Error())
		return
	}

	h.send(connID, EvtRoomCreated, RoomCreatedPayload{
		RoomCode:     snap.Info.Code,
		PlayerID:     playerID,
		SessionToken: token,
	})
	h.broadcastRoom(snap)
}

func (h *Hub) handleRoomJoin(connID string, payload json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.PlayerName == "" {
		h.sendError(connID, "invalid room:join payload")
		return
	}

	snap, playerID, token, err := h.manager.JoinRoom(p.RoomCode, connID, p.PlayerName, p.SessionToken)
	if err != nil {
		h.send(connID, EvtRoomJoined, JoinResultPayload{OK: false, Error: err.Error()})
		return
	}

	h.send(connID, EvtRoomJoined, JoinResultPayload{
		OK:           true,
		Room:         &snap.Info,
		PlayerID:     playerID,
		SessionToken: token,
	})
	h.broadcastRoom(snap)
}

func (h *Hub) handleGameStart(connID string) {
	var (
		snap   room.Snapshot
		gameID string
		state  any
	)
	err := h.manager.WithRoom(connID, func(r *room.Room, playerID string) error {
		if playerID != r.HostID {
			return errNotHost
		}
		if len(r.Players) < 2 {
			return errNotEnoughPlayers
		}

		// A finished room re-arms into a fresh game.
		if r.Status == room.StatusFinished {
			r.Status = room.StatusWaiting
			r.GameState = nil
			r.GameResult = nil
		}
		if r.Status != room.StatusWaiting {
			return room.ErrRoomStarted
		}

		ids := r.PlayerIDs()
		rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

		s, err := game.Start(r.GameID, ids, r.HostID)
		if err != nil {
			return err
		}
		r.Status = room.StatusPlaying
		r.GameState = s

		snap = r.Snapshot()
		gameID = r.GameID
		state = s
		return nil
	})
	if err != nil {
		h.sendError(connID, err.Error())
		return
	}

	logger.Info("game started", "code", snap.Info.Code, "game", gameID)
	h.broadcastRoom(snap)
	h.broadcastEach(snap, EvtGameStarted, func(playerID string) any {
		return game.PlayerView(gameID, state, playerID)
	})
}

func (h *Hub) handleGameMove(connID string, payload json.RawMessage) {
	var p MovePayload
	if err := json.Unmarshal(payload, &p); err != nil || len(p.Move) == 0 {
		h.sendError(connID, "invalid game:move payload")
		return
	}

	var (
		snap   room.Snapshot
		gameID string
		state  any
		result *game.Result
	)
	err := h.manager.WithRoom(connID, func(r *room.Room, playerID string) error {
		if r.Status != room.StatusPlaying || r.GameState == nil {
			return errNotInProgress
		}

		next, res, err := game.ProcessMove(r.GameID, r.GameState, p.Move, playerID)
		if err != nil {
			return err
		}
		r.GameState = next
		if res != nil {
			r.Status = room.StatusFinished
			r.GameResult = res
		}

		snap = r.Snapshot()
		gameID = r.GameID
		state = next
		result = res
		return nil
	})
	if err != nil {
		h.sendError(connID, err.Error())
		return
	}

	metrics.MovesTotal.WithLabelValues(gameID).Inc()
	h.broadcastEach(snap, EvtGameStateUpdated, func(playerID string) any {
		return game.PlayerView(gameID, state, playerID)
	})

	if result != nil {
		h.broadcastRoom(snap)
		h.broadcastEach(snap, EvtGameEnded, func(string) any { return result })
		h.archiveMatch(snap.Info, result)
	}
}

func (h *Hub) handleRoomLeave(connID string) {
	snap, err := h.manager.Leave(connID)
	if err != nil {
		h.send(connID, EvtRoomLeft, struct{}{})
		return
	}
	h.send(connID, EvtRoomLeft, struct{}{})
	if snap != nil {
		h.broadcastRoom(*snap)
	}
}

func (h *Hub) handleReconnect(connID string, payload json.RawMessage) {
	var p ReconnectPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionToken == "" {
		h.send(connID, EvtSessionReconnected, ReconnectedPayload{Success: false})
		return
	}

	res, err := h.manager.Reconnect(p.SessionToken, connID)
	if err != nil {
		h.send(connID, EvtSessionReconnected, ReconnectedPayload{Success: false})
		return
	}

	// The resumed state is the full server copy, not a per-viewer filtered
	// one. See DESIGN.md.
	h.send(connID, EvtSessionReconnected, ReconnectedPayload{
		Success:    true,
		Room:       &res.Snapshot.Info,
		PlayerID:   res.PlayerID,
		GameState:  res.GameState,
		GameResult: res.GameResult,
	})
	h.broadcastRoom(res.Snapshot)
}
