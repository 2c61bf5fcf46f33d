package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"personquiz/internal/app"
	"personquiz/internal/domain"
	pgstore "personquiz/internal/infra/postgres"
	pgmigrations "personquiz/internal/infra/postgres/migrations"
	rediscache "personquiz/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestSubmitEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedContent(t, ctx, pgURL, domain.LangSwedish, sampleContent())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	content := rediscache.NewContentRepository(redisClient, pgstore.NewContentLoader(pool), 5*time.Minute)
	scores := pgstore.NewScoreStore(pool)
	service := app.NewQuizService(content, scores)

	res, err := service.Check(ctx, domain.LangSwedish, 1, domain.OptionDraw)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Correct != domain.OptionDraw || !res.IsCorrect {
		t.Fatalf("expected correct=X, got %+v", res)
	}

	submit, err := service.Submit(ctx, domain.LangSwedish, "Alice",
		[]domain.Answer{{ID: 1, Selected: domain.OptionDraw}},
		[]int{10},
	)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submit.Score != 2 || submit.Total != 1 {
		t.Fatalf("expected score 2 of 1, got %+v", submit)
	}
	if len(submit.Leaderboard) != 1 || submit.Leaderboard[0].Name != "Alice" {
		t.Fatalf("expected Alice on leaderboard, got %+v", submit.Leaderboard)
	}

	// Second submission lands above the first on the board.
	if _, err := service.Submit(ctx, domain.LangSwedish, "Bob",
		[]domain.Answer{{ID: 1, Selected: domain.OptionDraw}},
		nil,
	); err != nil {
		t.Fatalf("submit bob: %v", err)
	}
	board, err := service.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Name != "Alice" || board[0].Score != 2 {
		t.Fatalf("expected Alice leading with 2, got %+v", board)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("pg host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("pg port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedContent(t *testing.T, ctx context.Context, dsn string, lang domain.Lang, content domain.Content) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO quiz_content (lang, data) VALUES (?, ?::jsonb) ON CONFLICT (lang) DO UPDATE SET data=EXCLUDED.data`,
		string(lang), string(data)); err != nil {
		t.Fatalf("insert content: %v", err)
	}
}

func sampleContent() domain.Content {
	return domain.Content{
		Questions: []domain.SourceQuestion{
			{
				ID:   1,
				Text: "How did the first dance end?",
				Options: map[domain.OptionKey]string{
					domain.OptionHome: "first won",
					domain.OptionDraw: "a draw",
					domain.OptionAway: "second won",
				},
				Correct: domain.OptionDraw,
			},
		},
		Challenge: []domain.SourceChallengeItem{
			{ID: 10, Label: "true about the guest of honor", Correct: true},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
