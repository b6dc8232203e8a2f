// internal/api/types/response.go
package types

import "coinledger/internal/domain"

// PaginatedResponse wraps one page of a listing together with its paging window.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// ErrorResponse is the body of every non-operation error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BalancesResponse lists every balance row a user holds.
type BalancesResponse struct {
	UserID   int64                `json:"user_id"`
	Balances []domain.UserBalance `json:"balances"`
}

// CurrenciesResponse lists the active currency directory.
type CurrenciesResponse struct {
	Currencies []domain.Currency `json:"currencies"`
}
