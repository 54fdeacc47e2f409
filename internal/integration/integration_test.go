package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quiz-royale/internal/app"
	"quiz-royale/internal/domain"
	"quiz-royale/internal/game"
	"quiz-royale/internal/infra/postgres"
	pgmigrations "quiz-royale/internal/infra/postgres/migrations"
	infraredis "quiz-royale/internal/infra/redis"
	"quiz-royale/internal/reward"
)

const player = "0x00000000000000000000000000000000000000cd"

func TestPerfectRunPaysFromPostgresLedger(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, pgURL)
	defer db.Close()
	migrateUp(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := postgres.NewQuizLoader(pool)
	if err := loader.SaveQuiz(ctx, domain.DefaultQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	ledger := postgres.NewLedger(db)
	if _, err := ledger.Fund(ctx, big.NewInt(1_000_000_000_000_000_000)); err != nil {
		t.Fatalf("fund: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	amount := big.NewInt(50_000_000_000_000_000)
	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute, log)
	keys := app.AnswerKeyFrom(quizRepo, domain.DefaultQuizID)
	gateway := reward.NewCachedGateway(reward.NewLedgerGateway(ledger, keys, amount, log), time.Second)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(sessionStore, quizRepo, gateway, app.Settings{
		Rules:   game.Rules{BaseSeconds: 60, BonusSeconds: 5},
		Tick:    time.Hour,
		ChainID: "0xaa36a7",
		Reward:  reward.SessionConfig{ClaimTimeout: 10 * time.Second},
	}, log)

	session, err := service.Open(ctx, player, "0xaa36a7")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := service.Start(ctx, session.ID()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, option := range domain.DefaultQuiz().AnswerKey() {
		sel, _ := domain.NewSelection(&option)
		if accepted, err := service.SubmitAnswer(ctx, session.ID(), sel); err != nil || !accepted {
			t.Fatalf("answer %d not accepted: %v", i, err)
		}
	}

	snap, err := service.Snapshot(session.ID())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Outcome == nil || snap.Outcome.Reward == nil || snap.Outcome.Reward.State != domain.RewardClaimed {
		t.Fatalf("expected claimed reward, got %+v", snap.Outcome)
	}

	claims, err := ledger.Claims(ctx)
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if len(claims) != 1 || claims[0].Address != player || claims[0].TxRef != snap.Outcome.Reward.TxRef {
		t.Fatalf("unexpected claims %+v", claims)
	}
	balance, err := ledger.Balance(ctx)
	if err != nil || balance.String() != "950000000000000000" {
		t.Fatalf("expected debited pool, got %v err=%v", balance, err)
	}

	// A second session for the same wallet is refused at start.
	again, err := service.Open(ctx, player, "0xaa36a7")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := service.Start(ctx, again.ID()); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed on start, got %v", err)
	}
	if err := ledger.Claim(ctx, player, amount, "0xdead"); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Fatalf("expected ledger to refuse a second claim, got %v", err)
	}
}

func TestRedisLedgerAgainstRealRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, cleanup := startRedis(t, ctx)
	defer cleanup()
	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	ledger := infraredis.NewLedger(client)
	if _, err := ledger.Fund(ctx, big.NewInt(100)); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := ledger.Claim(ctx, player, big.NewInt(70), "0x1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := ledger.Claim(ctx, "0xother", big.NewInt(70), "0x2"); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	balance, _ := ledger.Balance(ctx)
	if balance.Int64() != 30 {
		t.Fatalf("expected 30 left, got %s", balance)
	}
}

func openBun(t *testing.T, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateUp(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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
