package repository

import (
	"context"

	"asobibox/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m *domain.MatchRecord) error {
	query := `
		INSERT INTO matches (room_code, game_id, winner_id, reason, players)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, finished_at
	`
	return r.db.QueryRow(ctx, query,
		m.RoomCode, m.GameID, m.WinnerID, m.Reason, m.Players,
	).Scan(&m.ID, &m.FinishedAt)
}

// Recent returns the latest finished matches, newest first.
func (r *MatchRepository) Recent(ctx context.Context, limit int) ([]domain.MatchRecord, error) {
	query := `
		SELECT id, room_code, game_id, winner_id, reason, players, finished_at
		FROM matches
		ORDER BY finished_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.MatchRecord
	for rows.Next() {
		var m domain.MatchRecord
		if err := rows.Scan(&m.ID, &m.RoomCode, &m.GameID, &m.WinnerID, &m.Reason, &m.Players, &m.FinishedAt); err != nil {
			return nil, err
		}
		records = append(records, m)
	}
	return records, rows.Err()
}
