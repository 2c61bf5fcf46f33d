package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"personquiz/internal/domain"

	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches one language's quiz material from a backing
// store (files, Postgres, etc).
type ContentLoader interface {
	LoadContent(ctx context.Context, lang domain.Lang) (domain.Content, error)
}

// ContentRepository caches content per language with a TTL to avoid
// repeated backing-store hits.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Lang]cachedContent
}

type cachedContent struct {
	content   domain.Content
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Lang]cachedContent),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, lang domain.Lang) (domain.Content, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[lang]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.content, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(string(lang), func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[lang]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.content, nil
		}
		r.mu.RUnlock()

		content, err := r.loader.LoadContent(ctx, lang)
		if err != nil {
			return domain.Content{}, err
		}

		r.mu.Lock()
		r.cache[lang] = cachedContent{
			content:   content,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return domain.Content{}, err
	}
	return result.(domain.Content), nil
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticContentLoader serves content from an in-memory map (demos/tests).
type StaticContentLoader struct {
	content map[domain.Lang]domain.Content
}

func NewStaticContentLoader(content map[domain.Lang]domain.Content) *StaticContentLoader {
	return &StaticContentLoader{content: content}
}

func (l *StaticContentLoader) LoadContent(_ context.Context, lang domain.Lang) (domain.Content, error) {
	if content, ok := l.content[lang]; ok {
		return content, nil
	}
	return domain.Content{}, domain.ErrContentNotFound
}
