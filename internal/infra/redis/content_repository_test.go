package redis

import (
	"context"
	"testing"
	"time"

	"personquiz/internal/domain"
	"personquiz/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestContentRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		ContentLoader: memory.NewStaticContentLoader(map[domain.Lang]domain.Content{
			domain.LangPolish: sampleContent(),
		}),
	}
	repo := NewContentRepository(client, loader, time.Minute)

	content, err := repo.GetContent(context.Background(), domain.LangPolish)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(content.Questions) != 1 || content.Questions[0].Correct != domain.OptionDraw {
		t.Fatalf("unexpected content %+v", content)
	}
	if !mr.Exists("quiz:content:pl") {
		t.Fatalf("expected content cached in redis")
	}

	// Second call hits Redis, loader not incremented.
	again, err := repo.GetContent(context.Background(), domain.LangPolish)
	if err != nil {
		t.Fatalf("get content 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(again.Questions) != 1 || again.Questions[0].Correct != domain.OptionDraw {
		t.Fatalf("cached content does not round-trip: %+v", again)
	}
}

func TestContentRepositoryLoaderFailure(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewContentRepository(client, memory.NewStaticContentLoader(nil), time.Minute)

	if _, err := repo.GetContent(context.Background(), domain.LangSwedish); err != domain.ErrContentNotFound {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

type countingLoader struct {
	ContentLoader
	calls int
}

func (l *countingLoader) LoadContent(ctx context.Context, lang domain.Lang) (domain.Content, error) {
	l.calls++
	return l.ContentLoader.LoadContent(ctx, lang)
}

func sampleContent() domain.Content {
	return domain.Content{
		Questions: []domain.SourceQuestion{
			{
				ID:   1,
				Text: "Pierwsze pytanie?",
				Options: map[domain.OptionKey]string{
					domain.OptionHome: "a",
					domain.OptionDraw: "b",
					domain.OptionAway: "c",
				},
				Correct: domain.OptionDraw,
			},
		},
		Challenge: []domain.SourceChallengeItem{{ID: 3, Label: "item", Correct: true}},
	}
}
