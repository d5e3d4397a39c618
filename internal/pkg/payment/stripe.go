package payment

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customerbalancetransaction"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/randevuhq/randevu/internal/pkg/env"
)

const gatewayTimeout = 15 * time.Second

// StripeGateway implements Gateway using the Stripe API. GatewayRef values are
// Stripe customer references with a default payment method attached: charges
// confirm off-session against that method, credits post to the customer
// balance and offset the next charge.
type StripeGateway struct {
	apiKey string
}

// NewStripeGateway creates a StripeGateway with the given API key.
func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{apiKey: apiKey}
}

// NewStripeGatewayFromEnv creates a StripeGateway from environment configuration.
func NewStripeGatewayFromEnv() *StripeGateway {
	return NewStripeGateway(env.GetEnv("STRIPE_API_KEY", ""))
}

// Charge confirms an off-session payment against the customer's default
// payment method. Declines map to ErrChargeDeclined; timeouts surface as
// ordinary errors and count as failures.
func (g *StripeGateway) Charge(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Customer:   stripe.String(gatewayRef),
		Amount:     stripe.Int64(amountCents),
		Currency:   stripe.String(currency),
		Confirm:    stripe.Bool(true),
		OffSession: stripe.Bool(true),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", ErrChargeDeclined, stripeErr.Code)
		}
		return nil, fmt.Errorf("payment: stripe charge: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: intent status %s", ErrChargeDeclined, pi.Status)
	}
	return &Result{TransactionID: pi.ID}, nil
}

// Refund posts a credit to the customer balance.
func (g *StripeGateway) Refund(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.CustomerBalanceTransactionParams{
		Customer: stripe.String(gatewayRef),
		Amount:   stripe.Int64(-amountCents),
		Currency: stripe.String(currency),
	}
	params.Context = ctx

	txn, err := customerbalancetransaction.New(params)
	if err != nil {
		return nil, fmt.Errorf("payment: stripe credit: %w", err)
	}
	return &Result{TransactionID: txn.ID}, nil
}
