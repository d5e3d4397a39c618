package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/randevuhq/randevu/app/models"
)

const (
	sweepBatchSize = 500

	// A past_due subscription expires after this many failed renewal charges.
	maxFailedPayments = 3

	// Trial-ending alerts go out this far ahead of the trial end.
	trialEndingNotice = 3 * 24 * time.Hour
)

// SweepResult summarizes one sweep run. Items are processed independently: a
// failure on one subscription never aborts the rest.
type SweepResult struct {
	Processed     int `json:"processed"`
	Renewed       int `json:"renewed"`
	MarkedPastDue int `json:"marked_past_due"`
	Canceled      int `json:"canceled"`
	Expired       int `json:"expired"`
	Failed        int `json:"failed"`
}

// ProcessSubscriptionRenewals attempts a renewal charge for every current
// subscription whose period has elapsed with auto-renewal on. Success advances
// the period by one billing interval and resets the failure counter; a decline
// moves the subscription to past_due and increments it.
func (s *Service) ProcessSubscriptionRenewals(ctx context.Context) (SweepResult, error) {
	result := SweepResult{}
	now := s.now()

	due, err := s.repos.Subscription.ListDue(now, sweepBatchSize)
	if err != nil {
		return result, fmt.Errorf("list due subscriptions: %w", err)
	}

	for i := range due {
		sub := due[i]
		if !s.renewable(&sub) {
			continue
		}
		result.Processed++
		if err := s.processRenewal(ctx, &sub, &result); err != nil {
			result.Failed++
			log.Errorf("[Sweeper] renewal of subscription %d failed: %v", sub.ID, err)
		}
	}
	return result, nil
}

func (s *Service) renewable(sub *models.Subscription) bool {
	if !sub.AutoRenewal || sub.CancelAtPeriodEnd {
		return false
	}
	switch sub.Status {
	case models.SubscriptionStatusActive, models.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}

func (s *Service) processRenewal(ctx context.Context, sub *models.Subscription, result *SweepResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	plan, err := s.getPlan(sub.PlanID)
	if err != nil {
		return err
	}

	pm, pmErr := s.resolvePaymentMethod(sub.BusinessID, sub.PaymentMethodID)
	var chargeErr error
	if pmErr != nil {
		chargeErr = pmErr
	} else if plan.PriceCents > 0 {
		_, chargeErr = s.gateway.Charge(ctx, pm.GatewayRef, plan.PriceCents, plan.Currency)
	}

	if chargeErr != nil {
		// Recorded on the subscription rather than raised: the sweeper has no
		// caller to report to.
		applied, uerr := s.repos.Subscription.UpdateStatusIf(sub.ID, sub.Status, map[string]interface{}{
			"status":               models.SubscriptionStatusPastDue,
			"failed_payment_count": sub.FailedPaymentCount + 1,
		})
		if uerr != nil {
			return fmt.Errorf("mark past_due: %w", uerr)
		}
		if applied {
			result.MarkedPastDue++
			s.notifier.PaymentFailed(sub.BusinessID, sub.FailedPaymentCount+1)
		}
		return nil
	}

	periodStart := sub.CurrentPeriodEnd
	periodEnd := plan.PeriodEndFrom(periodStart)
	applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, sub.Status, map[string]interface{}{
		"status":               models.SubscriptionStatusActive,
		"current_period_start": periodStart,
		"current_period_end":   periodEnd,
		"next_billing_date":    &periodEnd,
		"failed_payment_count": 0,
	})
	if err != nil {
		return fmt.Errorf("advance period: %w", err)
	}
	if applied {
		result.Renewed++
		s.notifier.SubscriptionRenewed(sub.BusinessID, periodEnd)
	}
	return nil
}

// ProcessExpiredSubscriptions advances non-renewing subscriptions past their
// period boundary: pending cancellations flip to canceled, canceled and
// non-renewing ones expire, and trials that lapsed without conversion expire.
func (s *Service) ProcessExpiredSubscriptions(ctx context.Context) (SweepResult, error) {
	_ = ctx
	result := SweepResult{}
	now := s.now()

	due, err := s.repos.Subscription.ListDue(now, sweepBatchSize)
	if err != nil {
		return result, fmt.Errorf("list due subscriptions: %w", err)
	}

	for i := range due {
		sub := due[i]
		result.Processed++
		if err := s.processExpiry(&sub, &result); err != nil {
			result.Failed++
			log.Errorf("[Sweeper] expiry of subscription %d failed: %v", sub.ID, err)
		}
	}
	return result, nil
}

func (s *Service) processExpiry(sub *models.Subscription, result *SweepResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch {
	case sub.Status == models.SubscriptionStatusActive && sub.CancelAtPeriodEnd:
		applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, sub.Status, map[string]interface{}{
			"status":       models.SubscriptionStatusCanceled,
			"auto_renewal": false,
		})
		if err != nil {
			return err
		}
		if applied {
			result.Canceled++
		}

	case sub.Status == models.SubscriptionStatusCanceled,
		sub.Status == models.SubscriptionStatusTrialing,
		!sub.AutoRenewal &&
			(sub.Status == models.SubscriptionStatusActive || sub.Status == models.SubscriptionStatusPastDue),
		sub.Status == models.SubscriptionStatusPastDue && sub.FailedPaymentCount >= maxFailedPayments:
		applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, sub.Status, map[string]interface{}{
			"status": models.SubscriptionStatusExpired,
		})
		if err != nil {
			return err
		}
		if applied {
			result.Expired++
			s.notifier.SubscriptionExpired(sub.BusinessID)
		}
	}
	return nil
}

// NotifyTrialsEnding sends a trial-ending alert for trials closing within the
// notice window. Returns the number of alerts queued.
func (s *Service) NotifyTrialsEnding(ctx context.Context) (int, error) {
	_ = ctx
	cutoff := s.now().Add(trialEndingNotice)
	trials, err := s.repos.Subscription.ListTrialsEndingBy(cutoff)
	if err != nil {
		return 0, fmt.Errorf("list ending trials: %w", err)
	}
	for i := range trials {
		if trials[i].TrialEnd != nil {
			s.notifier.TrialEnding(trials[i].BusinessID, *trials[i].TrialEnd)
		}
	}
	return len(trials), nil
}
