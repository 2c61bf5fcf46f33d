package postgres

import (
	"context"
	"fmt"

	"personquiz/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore persists submitted scores in Postgres.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) InsertScore(ctx context.Context, name string, score int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scores (name, score, created_at) VALUES ($1, $2, now())`,
		name, score)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) TopScores(ctx context.Context, limit int) ([]domain.LeaderboardItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, score, created_at FROM scores
		 ORDER BY score DESC, created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var items []domain.LeaderboardItem
	for rows.Next() {
		var item domain.LeaderboardItem
		if err := rows.Scan(&item.Name, &item.Score, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
