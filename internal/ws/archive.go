package ws

import (
	"context"
	"time"

	"asobibox/internal/domain"
	"asobibox/internal/game"
	"asobibox/internal/logger"
	"asobibox/internal/room"
)

// archiveMatch stores a finished game asynchronously. Archiving is best
// effort: a failed write is logged and forgotten, the room flow never
// waits on the database.
func (h *Hub) archiveMatch(info room.Info, result *game.Result) {
	if h.matches == nil {
		return
	}

	players := make([]string, len(info.Players))
	for i, p := range info.Players {
		players[i] = p.ID
	}
	rec := &domain.MatchRecord{
		RoomCode: info.Code,
		GameID:   info.GameID,
		WinnerID: result.WinnerID,
		Reason:   result.Reason,
		Players:  players,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.matches.Create(ctx, rec); err != nil {
			logger.Error("match archive failed", "code", info.Code, "error", err)
		}
	}()
}
