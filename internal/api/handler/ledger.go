// internal/api/handler/ledger.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"coinledger/internal/api/types"
	"coinledger/internal/domain"
	"coinledger/internal/service"
	"coinledger/internal/util"
)

// DefaultTimeout bounds the handling of one request.
const DefaultTimeout = 30 * time.Second

// LedgerHandler handles HTTP requests for money operations and ledger reads.
type LedgerHandler struct {
	operations service.MoneyOperations
	ledger     service.LedgerReader
	validate   *validator.Validate
	logger     *slog.Logger
}

// requestValidator is shared by every handler; validator.Validate caches struct metadata.
var requestValidator = mustValidator()

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(operations service.MoneyOperations, ledger service.LedgerReader, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		operations: operations,
		ledger:     ledger,
		validate:   requestValidator,
		logger:     logger,
	}
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// amount: positive and representable at domain.AmountScale.
	if err := v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		amount, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && domain.ValidAmount(amount)
	}); err != nil {
		return nil, fmt.Errorf("failed to register amount rule: %w", err)
	}
	return v, nil
}

func mustValidator() *validator.Validate {
	v, err := newValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// operationContext detaches a money operation from request cancellation. Once
// started, an operation runs to commit or rollback even if the client goes away.
func operationContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// Helper function to send JSON responses.
func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *LedgerHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		message = "Insufficient funds"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// respondWithResult writes a money operation result with the status matching its failure kind.
func (h *LedgerHandler) respondWithResult(w http.ResponseWriter, result *domain.MoneyOperationResult) {
	h.respondWithJSON(w, StatusForResult(result), result)
}

// StatusForResult maps a money operation outcome to an HTTP status code.
func StatusForResult(result *domain.MoneyOperationResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Failure {
	case domain.FailureValidation:
		return http.StatusBadRequest
	case domain.FailureEntityNotFound:
		return http.StatusNotFound
	case domain.FailureInsufficientFunds:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate reads a JSON body into dst and checks its validation tags.
func (h *LedgerHandler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", util.ErrInvalidInput)
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("field %q failed the %q rule: %w", fe.Field(), fe.Tag(), util.ErrInvalidInput)
		}
		return fmt.Errorf("%s: %w", err.Error(), util.ErrInvalidInput)
	}
	return nil
}

// TransferRequest represents the request body for a transfer.
type TransferRequest struct {
	UserID      int64           `json:"user_id" validate:"required,gt=0"`
	RecipientID int64           `json:"recipient_id" validate:"required,gt=0"`
	CurrencyID  int64           `json:"currency_id" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount" validate:"amount"`
	Comment     string          `json:"comment" validate:"max=255"`
}

// Transfer handles the transfer request.
// POST /operations/transfer
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result := h.operations.Transfer(operationContext(r), &domain.TransferRequest{
		OperationBase: domain.OperationBase{UserID: req.UserID, CurrencyID: req.CurrencyID, Amount: req.Amount, Comment: req.Comment},
		RecipientID:   req.RecipientID,
	})
	h.respondWithResult(w, result)
}

// DepositRequest represents the request body for a deposit.
type DepositRequest struct {
	UserID     int64           `json:"user_id" validate:"required,gt=0"`
	CurrencyID int64           `json:"currency_id" validate:"required,gt=0"`
	Amount     decimal.Decimal `json:"amount" validate:"amount"`
	Comment    string          `json:"comment" validate:"max=255"`
}

// Deposit handles the deposit request.
// POST /operations/deposit
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result := h.operations.Deposit(operationContext(r), &domain.DepositRequest{
		OperationBase: domain.OperationBase{UserID: req.UserID, CurrencyID: req.CurrencyID, Amount: req.Amount, Comment: req.Comment},
	})
	h.respondWithResult(w, result)
}

// ConversionRequest represents the request body for a currency conversion.
type ConversionRequest struct {
	UserID           int64           `json:"user_id" validate:"required,gt=0"`
	CurrencyID       int64           `json:"currency_id" validate:"required,gt=0"`
	TargetCurrencyID int64           `json:"target_currency_id" validate:"required,gt=0"`
	Amount           decimal.Decimal `json:"amount" validate:"amount"`
	Comment          string          `json:"comment" validate:"max=255"`
}

// Convert handles the conversion request.
// POST /operations/conversion
func (h *LedgerHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConversionRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result := h.operations.Convert(operationContext(r), &domain.ConversionRequest{
		OperationBase:    domain.OperationBase{UserID: req.UserID, CurrencyID: req.CurrencyID, Amount: req.Amount, Comment: req.Comment},
		TargetCurrencyID: req.TargetCurrencyID,
	})
	h.respondWithResult(w, result)
}

// WelcomeBonusRequest represents the request body for a welcome bonus grant.
type WelcomeBonusRequest struct {
	UserID    int64  `json:"user_id" validate:"omitempty,gt=0"` // initiating user, optional
	NewUserID int64  `json:"new_user_id" validate:"required,gt=0"`
	Comment   string `json:"comment" validate:"max=255"`
}

// GrantWelcomeBonus handles the welcome bonus request.
// POST /operations/welcome-bonus
func (h *LedgerHandler) GrantWelcomeBonus(w http.ResponseWriter, r *http.Request) {
	var req WelcomeBonusRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result := h.operations.GrantWelcomeBonus(operationContext(r), &domain.WelcomeBonusRequest{
		OperationBase: domain.OperationBase{UserID: req.UserID, Comment: req.Comment},
		NewUserID:     req.NewUserID,
	})
	h.respondWithResult(w, result)
}

// GetBalances handles the list balances request.
// GET /users/{userID}/balances
func (h *LedgerHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	balances, err := h.ledger.GetBalances(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if balances == nil {
		balances = []domain.UserBalance{}
	}

	h.respondWithJSON(w, http.StatusOK, types.BalancesResponse{UserID: userID, Balances: balances})
}

// GetTransactionHistory handles the transaction history request.
// GET /users/{userID}/transactions?limit=&offset=
func (h *LedgerHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	// Parse query parameters for pagination
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = service.DefaultHistoryLimit
	}
	if limit > service.MaxHistoryLimit {
		limit = service.MaxHistoryLimit
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			h.respondWithError(w, fmt.Errorf("offset %q is not an integer: %w", raw, util.ErrInvalidInput))
			return
		}
	}

	transactions, total, err := h.ledger.GetTransactionHistory(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}

// GetTransaction handles the single transaction request; children are included.
// GET /transactions/{transactionID}
func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := parseIDParam(r, "transactionID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	detail, err := h.ledger.GetTransaction(r.Context(), transactionID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, detail)
}

// GetExchangeRate handles the exchange rate quote request.
// GET /exchange-rate?from=USD&to=EUR&amount=20
func (h *LedgerHandler) GetExchangeRate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := strings.ToUpper(strings.TrimSpace(query.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(query.Get("to")))
	if from == "" || to == "" {
		h.respondWithError(w, fmt.Errorf("from and to are required: %w", util.ErrInvalidInput))
		return
	}

	amount := decimal.NewFromInt(1)
	if raw := query.Get("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			h.respondWithError(w, fmt.Errorf("amount %q is not a number: %w", raw, util.ErrInvalidInput))
			return
		}
		amount = parsed
	}

	quote, err := h.ledger.Quote(r.Context(), from, to, amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, quote)
}

// ListCurrencies handles the active currency directory request.
// GET /currencies
func (h *LedgerHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.ledger.ListCurrencies(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if currencies == nil {
		currencies = []domain.Currency{}
	}
	h.respondWithJSON(w, http.StatusOK, types.CurrenciesResponse{Currencies: currencies})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, util.ErrInvalidInput)
	}
	return id, nil
}
