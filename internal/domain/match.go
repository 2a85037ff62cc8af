package domain

import "time"

// MatchRecord is the write-only archive row for a finished game. Live room
// state never touches the database; this exists purely for history.
type MatchRecord struct {
	ID         int64
	RoomCode   string
	GameID     string
	WinnerID   *string
	Reason     string
	Players    []string
	FinishedAt time.Time
}
