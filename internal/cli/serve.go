package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"personquiz/internal/app"
	"personquiz/internal/config"
	"personquiz/internal/domain"
	fileloader "personquiz/internal/infra/file"
	"personquiz/internal/infra/memory"
	mongostore "personquiz/internal/infra/mongo"
	pgstore "personquiz/internal/infra/postgres"
	rediscache "personquiz/internal/infra/redis"
	transport "personquiz/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8000"
	}

	var loader memory.ContentLoader = memory.NewStaticContentLoader(sampleContent())
	if cfg.Content.Dir != "" {
		loader = fileloader.NewContentLoader(cfg.Content.Dir)
	} else if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgstore.NewContentLoader(pool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var content app.ContentRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		content = rediscache.NewContentRepository(redisClient, loader, contentTTL)
	} else {
		content = memory.NewContentRepository(loader, contentTTL)
	}

	scores, closeScores, err := newScoreStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closeScores != nil {
		defer closeScores()
	}

	service := app.NewQuizService(content, scores)

	defaultLang := domain.Lang(cfg.Content.DefaultLang)
	handler := transport.NewHandler(service, defaultLang)
	feed := transport.NewLeaderboardFeed(service)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws/leaderboard", feed.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.CORS(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting personquiz on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newScoreStore picks Mongo when configured, then Postgres, then memory.
func newScoreStore(ctx context.Context, cfg config.Config) (app.ScoreStore, func(), error) {
	if cfg.Mongo.URI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, err
		}
		dbName := cfg.Mongo.Database
		if dbName == "" {
			dbName = "personquiz"
		}
		collName := cfg.Mongo.Collection
		if collName == "" {
			collName = "scores"
		}
		store := mongostore.NewScoreStore(client.Database(dbName).Collection(collName))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		closer := func() {
			_ = client.Disconnect(context.Background())
		}
		return store, closer, nil
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewScoreStore(pool), pool.Close, nil
	}

	return memory.NewScoreStore(), nil, nil
}

// sampleContent keeps the server usable without any backing store.
func sampleContent() map[domain.Lang]domain.Content {
	questions := []domain.SourceQuestion{
		{
			ID:   1,
			Text: "What happened first at the party?",
			Options: map[domain.OptionKey]string{
				domain.OptionHome: "The cake fell",
				domain.OptionDraw: "Nothing yet",
				domain.OptionAway: "The balloons popped",
			},
			Correct: domain.OptionHome,
		},
		{
			ID:   2,
			Text: "Who danced the longest?",
			Options: map[domain.OptionKey]string{
				domain.OptionHome: "Grandma",
				domain.OptionDraw: "It was a tie",
				domain.OptionAway: "The birthday kid",
			},
			Correct: domain.OptionAway,
		},
	}
	challenge := []domain.SourceChallengeItem{
		{ID: 10, Label: "Loves bananas", Correct: true},
		{ID: 11, Label: "Sleeps through fireworks", Correct: false},
	}
	return map[domain.Lang]domain.Content{
		domain.LangSwedish: {Questions: questions, Challenge: challenge},
		domain.LangPolish:  {Questions: questions, Challenge: challenge},
	}
}
