// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
// gatherer serves /metrics; a nil gatherer leaves the endpoint out.
func NewRouter(ledgerHandler *handler.LedgerHandler, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Money operations
	r.Route("/operations", func(r chi.Router) {
		r.Post("/transfer", ledgerHandler.Transfer)
		r.Post("/deposit", ledgerHandler.Deposit)
		r.Post("/conversion", ledgerHandler.Convert)
		r.Post("/welcome-bonus", ledgerHandler.GrantWelcomeBonus)
	})

	// Ledger reads
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/balances", ledgerHandler.GetBalances)
		r.Get("/transactions", ledgerHandler.GetTransactionHistory)
	})
	r.Get("/transactions/{transactionID}", ledgerHandler.GetTransaction)
	r.Get("/exchange-rate", ledgerHandler.GetExchangeRate)
	r.Get("/currencies", ledgerHandler.ListCurrencies)

	return r
}

// requestLogger logs one structured line per request through logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
