package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"quiz-royale/internal/app"
	"quiz-royale/internal/config"
	"quiz-royale/internal/domain"
	"quiz-royale/internal/infra/memory"
	"quiz-royale/internal/infra/postgres"
	infraredis "quiz-royale/internal/infra/redis"
	"quiz-royale/internal/reward"
	transport "quiz-royale/internal/transport/http"
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
	log := config.NewLogger(cfg.Log.Level, cfg.Log.Format)

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

	redisClient := newRedisClient(cfg)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var loader memory.QuizLoader = memory.NewDefaultQuizLoader()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgLoader := postgres.NewQuizLoader(pool)
		if err := seedDefaultQuiz(ctx, pgLoader, cfg.Quiz.ID, log); err != nil {
			return err
		}
		loader = pgLoader
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL, log)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	quizID := cfg.Quiz.ID
	if quizID == "" {
		quizID = domain.DefaultQuizID
	}
	// fail fast on a missing or invalid bank
	if _, err := quizRepo.GetQuiz(ctx, quizID); err != nil {
		return err
	}

	gateway, closeLedger, err := buildGateway(ctx, cfg, redisClient, app.AnswerKeyFrom(quizRepo, quizID), log)
	if err != nil {
		return err
	}
	defer closeLedger()

	service := app.NewQuizService(store, quizRepo, gateway, app.Settings{
		QuizID:  quizID,
		Rules:   cfg.Rules(),
		Tick:    config.Duration(cfg.Quiz.Tick, time.Second),
		ChainID: cfg.Reward.ChainID,
		Reward: reward.SessionConfig{
			ClaimTimeout: cfg.ClaimTimeout(),
			ExplorerURL:  cfg.Reward.ExplorerURL,
		},
	}, log)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, log),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildGateway wires the configured ledger behind the contract emulation.
// A nil gateway runs every game without reward capability.
func buildGateway(ctx context.Context, cfg config.Config, redisClient *redis.Client, keys reward.AnswerKeySource, log logrus.FieldLogger) (reward.Gateway, func(), error) {
	ledger, closeLedger, err := openLedger(cfg, redisClient)
	if err != nil {
		return nil, closeLedger, err
	}
	if ledger == nil {
		log.Warn("reward ledger disabled")
		return nil, closeLedger, nil
	}

	balance, err := seedPool(ctx, ledger, cfg.Reward.InitialPoolWei)
	if err != nil {
		closeLedger()
		return nil, func() {}, err
	}
	if balance == nil {
		if balance, err = ledger.Balance(ctx); err != nil {
			closeLedger()
			return nil, func() {}, err
		}
	}
	amount, err := reward.ParseWei(cfg.Reward.AmountWei)
	if err != nil {
		closeLedger()
		return nil, func() {}, err
	}
	log.WithFields(logrus.Fields{
		"ledger": cfg.Reward.Ledger,
		"amount": reward.FormatEther(amount),
		"pool":   reward.FormatEther(balance),
	}).Info("reward pool ready")

	gateway := reward.NewLedgerGateway(ledger, keys, amount, log)
	return reward.NewCachedGateway(gateway, config.TTLDuration(cfg.Reward.ViewTTL, 30*time.Second)), closeLedger, nil
}
