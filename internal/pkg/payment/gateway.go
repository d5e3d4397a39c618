package payment

import (
	"context"
	"errors"
)

// ErrChargeDeclined indicates the gateway rejected the charge. Declines are
// business outcomes (the subscription moves to past_due), not system errors.
var ErrChargeDeclined = errors.New("payment charge declined")

// Result is the outcome of a successful gateway operation.
type Result struct {
	TransactionID string
}

// Gateway is the external payment collaborator. Amounts are in the currency's
// minor unit. Implementations must bound each call with a timeout; a timeout
// counts as a failed charge.
type Gateway interface {
	Charge(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*Result, error)
	Refund(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*Result, error)
}
