package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChargeResult carries the outcome of a single charge attempt. The gateway
// is the sole source of truth for whether funds moved.
type ChargeResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// ChargeGateway is the opaque external charge operation. A nil error with
// Success=false means the gateway answered and declined; a non-nil error
// means the gateway could not be reached and the attempt must not count
// against the retry budget.
type ChargeGateway interface {
	Charge(ctx context.Context, memberID uint, amount decimal.Decimal, method string) (*ChargeResult, error)
}
