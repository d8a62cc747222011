package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/postgres"
	pgmigrations "quizmaster/internal/infra/postgres/migrations"
	infraredis "quizmaster/internal/infra/redis"
	"quizmaster/internal/questions"
)

func TestCompletedQuizIsRecordedEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateResults(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	sched := app.NewManualScheduler()
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(sessions, postgres.NewResultStore(pool), questions.NewStaticSource(questions.SampleBank()),
		app.WithScheduler(sched),
		app.WithIDGenerator(func() string { return "it-1" }),
	)

	ctrl, err := service.Start(ctx, "Alice", "golang", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if n, err := sessions.Live(ctx); err != nil || n != 1 {
		t.Fatalf("expected one live session marker, got %d err=%v", n, err)
	}

	// correct indices are 1,1,2,3,0; miss the last two
	for q, opt := range []int{1, 1, 2, 0, 1} {
		if _, err := service.SelectAnswer(ctrl.ID(), q, opt); err != nil {
			t.Fatalf("select %d: %v", q, err)
		}
	}
	result, err := service.Submit(ctrl.ID())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ScorePercent != 60 || result.TimedOut {
		t.Fatalf("unexpected result %+v", result)
	}
	if sched.Active() != 0 {
		t.Fatalf("timer should be stopped after submit")
	}
	if n, _ := sessions.Live(ctx); n != 0 {
		t.Fatalf("expected session marker to be cleared, got %d", n)
	}

	stored, err := service.Result(ctx, "it-1")
	if err != nil {
		t.Fatalf("load result: %v", err)
	}
	if stored.UserName != "Alice" || stored.Result.ScorePercent != 60 || stored.Result.Topic != "golang" {
		t.Fatalf("unexpected stored result %+v", stored)
	}
	if service.Passed(stored.Result) {
		t.Fatalf("60%% should not pass the default threshold")
	}
	if _, err := service.Result(ctx, "missing"); err != domain.ErrResultNotFound {
		t.Fatalf("expected not found, got %v", err)
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
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
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

func migrateResults(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
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
