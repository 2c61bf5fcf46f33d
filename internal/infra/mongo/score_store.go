// Package mongo persists scores in MongoDB, one document per submission.
package mongo

import (
	"context"
	"fmt"
	"time"

	"personquiz/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScoreStore stores score documents shaped as
// {name, score, created_at} in a single collection.
type ScoreStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewScoreStore(collection *mongo.Collection) *ScoreStore {
	return &ScoreStore{collection: collection, now: time.Now}
}

// EnsureIndexes creates the indexes the leaderboard query relies on.
func (s *ScoreStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "score", Value: -1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create score indexes: %w", err)
	}
	return nil
}

func (s *ScoreStore) InsertScore(ctx context.Context, name string, score int) error {
	_, err := s.collection.InsertOne(ctx, bson.M{
		"name":       name,
		"score":      score,
		"created_at": s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) TopScores(ctx context.Context, limit int) ([]domain.LeaderboardItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.LeaderboardItem
	for cursor.Next(ctx) {
		var doc struct {
			Name      string    `bson:"name"`
			Score     int       `bson:"score"`
			CreatedAt time.Time `bson:"created_at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode score: %w", err)
		}
		items = append(items, domain.LeaderboardItem{
			Name:      doc.Name,
			Score:     doc.Score,
			CreatedAt: doc.CreatedAt,
		})
	}
	return items, cursor.Err()
}
