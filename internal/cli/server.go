package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizzy-service/internal/app"
	"quizzy-service/internal/config"
	"quizzy-service/internal/domain"
	"quizzy-service/internal/infra/memory"
	pgstore "quizzy-service/internal/infra/postgres"
	redisinfra "quizzy-service/internal/infra/redis"
	transport "quizzy-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz service",
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
		finalPort = "8080"
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var source memory.QuestionSource = memory.NewStaticQuestionSource(sampleQuestions())
	var results app.ResultStore = memory.NewResultStore()
	if pool != nil {
		source = pgstore.NewQuestionSource(pool)
		results = pgstore.NewResultStore(pool)
	}

	poolTTL := config.TTLDuration(cfg.Quiz.PoolTTL, 10*time.Minute)
	questions := memory.NewQuestionRepository(source, poolTTL)

	var profiles app.ProfileCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		profiles = redisinfra.NewProfileCache(client, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}

	quizLen := config.IntOr(cfg.Quiz.Length, 5)
	service := app.NewQuizService(questions, results, profiles, quizLen)
	wsHandler := transport.NewWSHandler(service)
	statsHandler := transport.NewStatsHandler(service,
		config.IntOr(cfg.Quiz.LeaderboardSize, 20),
		config.IntOr(cfg.Quiz.HistoryLimit, 50),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/leaderboard", statsHandler.Leaderboard)
	mux.HandleFunc("/summary", statsHandler.Summary)
	mux.HandleFunc("/history", statsHandler.History)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizzy service on :%s", finalPort)
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

// sampleQuestions provides a minimal bank for running without Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
		{ID: "q2", Prompt: "Which planet is closest to the sun?", Options: []string{"Venus", "Earth", "Mercury"}, CorrectIndex: 2},
		{ID: "q3", Prompt: "What does CPU stand for?", Options: []string{"Central Processing Unit", "Computer Personal Unit"}, CorrectIndex: 0},
		{ID: "q4", Prompt: "How many bits in a byte?", Options: []string{"4", "8", "16"}, CorrectIndex: 1},
		{ID: "q5", Prompt: "Which of these is a compiled language?", Options: []string{"Python", "Go", "JavaScript"}, CorrectIndex: 1},
		{ID: "q6", Prompt: "What is the binary for decimal 5?", Options: []string{"101", "110", "011"}, CorrectIndex: 0},
	}
}
