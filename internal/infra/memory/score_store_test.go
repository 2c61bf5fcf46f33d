package memory

import (
	"context"
	"testing"
	"time"
)

func TestScoreStoreOrdersByScoreThenRecency(t *testing.T) {
	base := time.Date(2025, 8, 1, 18, 0, 0, 0, time.UTC)
	tick := 0
	store := NewScoreStoreWithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()

	for _, row := range []struct {
		name  string
		score int
	}{{"anna", 3}, {"bo", 7}, {"cleo", 7}, {"dan", 1}} {
		if err := store.InsertScore(ctx, row.name, row.score); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	top, err := store.TopScores(ctx, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	// cleo submitted after bo with the same score, so recency wins the tie.
	if top[0].Name != "cleo" || top[1].Name != "bo" || top[2].Name != "anna" {
		t.Fatalf("unexpected order: %+v", top)
	}
}

func TestScoreStoreLimitZeroReturnsAll(t *testing.T) {
	store := NewScoreStore()
	ctx := context.Background()
	_ = store.InsertScore(ctx, "a", 1)
	_ = store.InsertScore(ctx, "b", 2)

	top, err := store.TopScores(ctx, 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected all entries, got %d", len(top))
	}
}
