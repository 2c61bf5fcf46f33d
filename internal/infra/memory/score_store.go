package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"personquiz/internal/domain"
)

// ScoreStore keeps submitted scores in memory, ordered like the
// persistent stores: score descending, then most recent first.
type ScoreStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	items []domain.LeaderboardItem
}

func NewScoreStore() *ScoreStore {
	return NewScoreStoreWithClock(time.Now)
}

// NewScoreStoreWithClock is test-only for deterministic timestamps.
func NewScoreStoreWithClock(now func() time.Time) *ScoreStore {
	return &ScoreStore{now: now}
}

func (s *ScoreStore) InsertScore(_ context.Context, name string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, domain.LeaderboardItem{
		Name:      name,
		Score:     score,
		CreatedAt: s.now().UTC(),
	})
	return nil
}

func (s *ScoreStore) TopScores(_ context.Context, limit int) ([]domain.LeaderboardItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LeaderboardItem, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
