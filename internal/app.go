// internal/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	router "coinledger/internal/api"
	"coinledger/internal/api/handler"
	"coinledger/internal/config"
	"coinledger/internal/metrics"
	"coinledger/internal/notify"
	"coinledger/internal/repository"
	"coinledger/internal/repository/postgres"
	"coinledger/internal/service"
	"coinledger/internal/util"
	"coinledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	UserRepository        repository.UserRepository
	CurrencyRepository    repository.CurrencyRepository
	BalanceRepository     repository.BalanceRepository
	TransactionRepository repository.TransactionRepository

	// Services
	Notifications *notify.Dispatcher
	Operations    service.MoneyOperations
	Ledger        service.LedgerReader

	// Observability
	Registry *prometheus.Registry

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.Log)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database and apply the schema
	database, err := db.NewPostgresDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	if err := db.Migrate(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.CurrencyRepository = postgres.NewCurrencyRepository()
	app.BalanceRepository = postgres.NewBalanceRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Post-commit notifications: in-process subscribers, plus Redis when enabled
	app.Notifications = notify.NewDispatcher(app.Logger)
	app.Notifications.Subscribe(func(_ context.Context, e notify.TransactionsChanged) {
		app.Logger.Debug("Transactions changed", "event_id", e.EventID, "kind", e.Kind, "user_ids", e.UserIDs, "transaction_ids", e.TransactionIDs)
	})
	var notifier notify.Notifier = app.Notifications
	if cfg.RedisEnabled {
		app.Redis = notify.NewRedisClient(cfg.Redis)
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			app.Logger.Warn("Redis is unreachable, publishing will fail until it is back", "addr", cfg.Redis.Addr, "error", err)
		}
		notifier = notify.Multi{app.Notifications, notify.NewRedisPublisher(app.Redis, cfg.Redis.Channel)}
		app.Logger.Info("Redis event publisher enabled.", "channel", cfg.Redis.Channel)
	}

	// 6. Metrics
	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(app.Registry)

	// 7. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	runner := service.NewTxRunner(app.DB, db.BeginTx, db.CommitTx, db.RollbackTx)
	converter := service.NewCurrencyConverter(app.DB, app.CurrencyRepository)
	env := &service.OperationEnv{
		Runner:     runner,
		DBExecutor: app.DB,
		Users:      app.UserRepository,
		Currencies: app.CurrencyRepository,
		Balances:   service.NewBalanceEngine(app.BalanceRepository),
		TxLog:      service.NewTransactionLog(app.UserRepository, app.CurrencyRepository, app.TransactionRepository),
		Converter:  converter,
		Logger:     app.Logger,
	}
	app.Operations = service.NewManagerFromEnv(env, notifier, recorder)
	app.Ledger = service.NewLedgerQueryService(app.DB, app.UserRepository, app.BalanceRepository, app.TransactionRepository, converter)
	app.Logger.Info("Services initialized.")

	// 8. Initialize HTTP Handlers and Router
	ledgerHandler := handler.NewLedgerHandler(app.Operations, app.Ledger, app.Logger)
	app.HTTPHandler = router.NewRouter(ledgerHandler, app.Registry, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	var errs []error
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close Redis client", "error", err)
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		} else {
			app.Logger.Info("Database connection closed.")
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
