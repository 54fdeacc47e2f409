package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quiz-royale/internal/config"
	"quiz-royale/internal/domain"
	"quiz-royale/internal/infra/postgres"
	pgmigrations "quiz-royale/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := config.NewLogger(cfg.Log.Level, cfg.Log.Format)
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			if !seed {
				return nil
			}
			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()
			return seedDefaultQuiz(cmd.Context(), postgres.NewQuizLoader(pool), cfg.Quiz.ID, log)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "store the built-in question bank if it is missing")
	return cmd
}

func openBun(url string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.WithField("group", group.String()).Info("migrations applied")
	return nil
}

// seedDefaultQuiz stores the built-in bank under quizID when none exists.
func seedDefaultQuiz(ctx context.Context, loader *postgres.QuizLoader, quizID string, log logrus.FieldLogger) error {
	if quizID == "" {
		quizID = domain.DefaultQuizID
	}
	_, err := loader.LoadQuiz(ctx, quizID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrQuizNotFound) {
		return err
	}
	quiz := domain.DefaultQuiz()
	quiz.ID = quizID
	if err := loader.SaveQuiz(ctx, quiz); err != nil {
		return err
	}
	log.WithField("quiz_id", quizID).Info("seeded default question bank")
	return nil
}
