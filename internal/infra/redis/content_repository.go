package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"personquiz/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches quiz content from a backing store.
type ContentLoader interface {
	LoadContent(ctx context.Context, lang domain.Lang) (domain.Content, error)
}

// ContentRepository caches one JSON document per language in Redis
// (SET quiz:content:{lang}) and falls back to a loader on cache miss.
type ContentRepository struct {
	client *redis.Client
	loader ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewContentRepository(client *redis.Client, loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, lang domain.Lang) (domain.Content, error) {
	key := r.key(lang)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var content domain.Content
		if err := json.Unmarshal(raw, &content); err == nil {
			return content, nil
		}
		// Corrupt cache entry: fall through and repopulate.
	}

	result, err, _ := r.sf.Do(string(lang), func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		raw, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			var content domain.Content
			if err := json.Unmarshal(raw, &content); err == nil {
				return content, nil
			}
		}

		content, err := r.loader.LoadContent(ctx, lang)
		if err != nil {
			return domain.Content{}, err
		}

		if data, err := json.Marshal(content); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return content, nil
	})
	if err != nil {
		return domain.Content{}, err
	}
	return result.(domain.Content), nil
}

func (r *ContentRepository) key(lang domain.Lang) string {
	return "quiz:content:" + string(lang)
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
