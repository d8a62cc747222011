package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
	"quizmaster/internal/infra/postgres"
	redissession "quizmaster/internal/infra/redis"
	"quizmaster/internal/infra/sqlite"
	"quizmaster/internal/logger"
	"quizmaster/internal/questions"
	transport "quizmaster/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
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
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	results, closeResults, err := openResultStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeResults()

	var (
		store        app.SessionRepository
		liveSessions func(context.Context) (int, error)
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:                  cfg.Redis.Addr,
			Password:              cfg.Redis.Password,
			DB:                    cfg.Redis.DB,
			ContextTimeoutEnabled: true,
		})
		defer redisClient.Close()
		redisStore := redissession.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		store, liveSessions = redisStore, redisStore.Live
		log.Info("session markers in redis", "addr", cfg.Redis.Addr)
	} else {
		store = memory.NewSessionStore()
	}

	var gen questions.Generator
	if cfg.Generator.APIKey != "" {
		gen = questions.NewOpenAIGenerator(cfg.Generator.APIKey, cfg.Generator.BaseURL, cfg.Generator.Model, log)
	}
	source := buildSource(cfg, gen, log)

	service := app.NewQuizService(store, results, source,
		app.WithSettings(sessionSettings(cfg)),
		app.WithLogger(log),
	)

	defaultDifficulty, err := domain.ParseDifficulty(cfg.DefaultDifficulty())
	if err != nil {
		return err
	}
	if cfg.Session.Secret == "" {
		log.Warn("session.secret not set, profile cookies use an insecure default")
		cfg.Session.Secret = "quizmaster-dev-secret"
	}
	router := transport.NewRouter(transport.RouterConfig{
		Service:           service,
		Profiles:          transport.NewProfiles(cfg.Session.Secret, log),
		Generator:         gen,
		DefaultDifficulty: defaultDifficulty,
		LiveSessions:      liveSessions,
		Log:               log,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func sessionSettings(cfg config.Config) app.Settings {
	return app.Settings{
		QuestionCount: cfg.QuestionCount(),
		TimeBudget:    cfg.TimeBudgetSeconds(),
		TickInterval:  cfg.TickInterval(),
		PassThreshold: cfg.PassThreshold(),
	}
}

// buildSource picks the question source: a remote endpoint, then the
// configured model, then the built-in offline bank.
func buildSource(cfg config.Config, gen questions.Generator, log *logger.Logger) app.QuestionSource {
	switch {
	case cfg.Questions.Endpoint != "":
		log.Info("questions from remote endpoint", "endpoint", cfg.Questions.Endpoint)
		return questions.NewHTTPSource(cfg.Questions.Endpoint, &http.Client{Timeout: 60 * time.Second})
	case gen != nil:
		log.Info("questions from model", "model", cfg.Generator.Model)
		return questions.NewGeneratorSource(gen)
	default:
		log.Warn("no question endpoint or api key configured, using the offline bank")
		return questions.NewStaticSource(questions.SampleBank())
	}
}

func openResultStore(ctx context.Context, cfg config.Config, log *logger.Logger) (app.ResultStore, func(), error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("results in postgres")
		return postgres.NewResultStore(pool), pool.Close, nil
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("results in sqlite", "path", cfg.SQLite.Path)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn("close sqlite", "error", err)
			}
		}, nil
	default:
		return memory.NewResultStore(), func() {}, nil
	}
}
