package subscription

import (
	"time"

	"github.com/randevuhq/randevu/app/models"
)

// Proration is the billing adjustment owed when switching plans mid-cycle.
// Amounts are in the currency's minor unit; NetAmount > 0 means the business
// owes a charge, < 0 means it receives a credit.
type Proration struct {
	CreditAmount int64  `json:"credit_amount"`
	ChargeAmount int64  `json:"charge_amount"`
	NetAmount    int64  `json:"net_amount"`
	Currency     string `json:"currency"`
}

// CalculateProration computes the adjustment for switching from currentPlan to
// newPlan at `now` within the billing period [periodStart, periodEnd). It is a
// pure function: deterministic, no side effects.
//
// The remaining fraction of the period is (periodEnd - now) / (periodEnd -
// periodStart), applied to the price difference and rounded half away from
// zero to the minor unit. When now is at or past periodEnd the switch is a
// full-period change and all amounts are zero.
func CalculateProration(currentPlan, newPlan *models.Plan, periodStart, periodEnd, now time.Time) Proration {
	currency := currentPlan.Currency
	if currency == "" {
		currency = newPlan.Currency
	}
	p := Proration{Currency: currency}

	if !periodEnd.After(periodStart) || !now.Before(periodEnd) {
		return p
	}
	if now.Before(periodStart) {
		now = periodStart
	}

	diff := newPlan.PriceCents - currentPlan.PriceCents
	if diff == 0 {
		return p
	}

	abs := diff
	if abs < 0 {
		abs = -abs
	}

	remaining := int64(periodEnd.Sub(now) / time.Second)
	total := int64(periodEnd.Sub(periodStart) / time.Second)
	net := prorateAmount(abs, remaining, total)

	if diff > 0 {
		p.ChargeAmount = net
		p.NetAmount = net
	} else {
		p.CreditAmount = net
		p.NetAmount = -net
	}
	return p
}

// prorateAmount scales amount by remaining/total, rounding half up. amount
// must be non-negative and total positive.
func prorateAmount(amount, remaining, total int64) int64 {
	if total <= 0 || remaining <= 0 || amount <= 0 {
		return 0
	}
	if remaining > total {
		remaining = total
	}
	return (amount*remaining*2 + total) / (2 * total)
}

// remainingValue returns the unused value of a plan's price for the rest of
// the period. Used when a plan change also changes the billing interval and
// the old period is closed out entirely.
func remainingValue(plan *models.Plan, periodStart, periodEnd, now time.Time) int64 {
	if !periodEnd.After(periodStart) || !now.Before(periodEnd) {
		return 0
	}
	if now.Before(periodStart) {
		now = periodStart
	}
	remaining := int64(periodEnd.Sub(now) / time.Second)
	total := int64(periodEnd.Sub(periodStart) / time.Second)
	return prorateAmount(plan.PriceCents, remaining, total)
}
