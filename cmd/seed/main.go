// cmd/seed/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"coinledger/internal/config"
	"coinledger/internal/repository"
	"coinledger/internal/repository/postgres"
	"coinledger/internal/seed"
	"coinledger/internal/util"
	"coinledger/pkg/db"
)

// Creates the schema, the bank account, the currency directory and the bank reserves.
// Safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		util.GetLogger().Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	util.InitLogger(cfg.Log)
	logger := util.GetLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Seeding complete")
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.NewPostgresDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// All reference data lands in one transaction.
	txController, err := db.BeginTx(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.RollbackTx(txController)

	q, ok := txController.(repository.DBExecutor)
	if !ok {
		return errors.New("transaction controller does not implement DBExecutor")
	}

	seeder := seed.NewSeeder(postgres.NewUserRepository(), postgres.NewCurrencyRepository(), postgres.NewBalanceRepository(), logger)
	if err := seeder.Run(ctx, q, seed.DefaultCatalog()); err != nil {
		return err
	}
	return db.CommitTx(txController)
}
