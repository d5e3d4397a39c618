package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/notify"
	"github.com/randevuhq/randevu/internal/pkg/payment"
)

// Service orchestrates subscription lifecycle transitions. All state changes
// go through status-guarded updates so concurrent writers cannot apply the
// same transition twice.
type Service struct {
	repos    *repository.Repositories
	gateway  payment.Gateway
	notifier notify.Notifier
	now      func() time.Time
}

// NewService creates a lifecycle service from injected collaborators.
func NewService(repos *repository.Repositories, gateway payment.Gateway, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Service{
		repos:    repos,
		gateway:  gateway,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateSubscriptionInput is the validated input for sign-up.
type CreateSubscriptionInput struct {
	BusinessID      uint
	PlanID          uint
	PaymentMethodID *uint
	StartTrial      bool
}

// PlanChangeResult is returned by plan-change operations.
type PlanChangeResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Proration    Proration            `json:"proration"`
}

// CreateSubscription opens a business's subscription, either trialing (when
// the plan offers a trial) or active after a successful first charge.
func (s *Service) CreateSubscription(ctx context.Context, in CreateSubscriptionInput) (*models.Subscription, error) {
	if in.BusinessID == 0 || in.PlanID == 0 {
		return nil, newValidationError("business_id and plan_id are required")
	}

	plan, err := s.getPlan(in.PlanID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Subscription.GetCurrentByBusinessID(in.BusinessID); err == nil {
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load current subscription: %w", err)
	}

	now := s.now()
	sub := &models.Subscription{
		PublicID:        uuid.New().String(),
		BusinessID:      in.BusinessID,
		PlanID:          plan.ID,
		IsCurrent:       true,
		AutoRenewal:     true,
		PaymentMethodID: in.PaymentMethodID,
	}

	if in.StartTrial && plan.TrialDays > 0 {
		trialEnd := plan.TrialEndsAt(now)
		sub.Status = models.SubscriptionStatusTrialing
		sub.TrialStart = &now
		sub.TrialEnd = &trialEnd
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = trialEnd
		sub.NextBillingDate = &trialEnd
	} else {
		pm, err := s.resolvePaymentMethod(in.BusinessID, in.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		if plan.PriceCents > 0 {
			if _, err := s.charge(ctx, pm, plan.PriceCents, plan.Currency); err != nil {
				return nil, err
			}
		}
		periodEnd := plan.PeriodEndFrom(now)
		sub.Status = models.SubscriptionStatusActive
		sub.PaymentMethodID = &pm.ID
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = periodEnd
		sub.NextBillingDate = &periodEnd
	}

	if err := s.repos.Subscription.Create(sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

// ConvertTrialToActive converts a trialing subscription to active after a
// successful first charge against the given payment method.
func (s *Service) ConvertTrialToActive(ctx context.Context, businessID, paymentMethodID uint) (*models.Subscription, error) {
	sub, err := s.getCurrent(businessID)
	if err != nil {
		return nil, err
	}
	if !sub.IsTrialing() {
		return nil, withMessage(ErrInvalidTransition, "Only a trialing subscription can be converted")
	}

	pm, err := s.resolvePaymentMethod(businessID, &paymentMethodID)
	if err != nil {
		return nil, err
	}

	plan, err := s.getPlan(sub.PlanID)
	if err != nil {
		return nil, err
	}

	if plan.PriceCents > 0 {
		if _, err := s.charge(ctx, pm, plan.PriceCents, plan.Currency); err != nil {
			return nil, err
		}
	}

	now := s.now()
	periodEnd := plan.PeriodEndFrom(now)
	applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, models.SubscriptionStatusTrialing, map[string]interface{}{
		"status":               models.SubscriptionStatusActive,
		"payment_method_id":    pm.ID,
		"current_period_start": now,
		"current_period_end":   periodEnd,
		"next_billing_date":    &periodEnd,
		"failed_payment_count": 0,
	})
	if err != nil {
		return nil, fmt.Errorf("convert trial: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}
	return s.repos.Subscription.GetByID(sub.ID)
}

// ChangeSubscriptionPlan switches an active subscription to another plan,
// applying proration and charging or crediting the difference.
func (s *Service) ChangeSubscriptionPlan(ctx context.Context, businessID, newPlanID uint) (*PlanChangeResult, error) {
	sub, err := s.getCurrent(businessID)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive() {
		return nil, withMessage(ErrInvalidTransition, "Only an active subscription can change plans")
	}
	if sub.PlanID == newPlanID {
		return nil, newValidationError("subscription is already on this plan")
	}

	currentPlan, err := s.getPlan(sub.PlanID)
	if err != nil {
		return nil, err
	}
	newPlan, err := s.getPlan(newPlanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]interface{}{"plan_id": newPlan.ID}

	var pro Proration
	if currentPlan.BillingInterval == newPlan.BillingInterval {
		pro = CalculateProration(currentPlan, newPlan, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, now)
	} else {
		// Interval change closes out the old period: credit its unused value,
		// charge the new plan in full, and start a fresh period now.
		credit := remainingValue(currentPlan, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, now)
		pro = Proration{
			CreditAmount: credit,
			ChargeAmount: newPlan.PriceCents,
			NetAmount:    newPlan.PriceCents - credit,
			Currency:     newPlan.Currency,
		}
		periodEnd := newPlan.PeriodEndFrom(now)
		updates["current_period_start"] = now
		updates["current_period_end"] = periodEnd
		updates["next_billing_date"] = &periodEnd
	}

	if pro.NetAmount != 0 {
		pm, err := s.resolvePaymentMethod(businessID, sub.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		if pro.NetAmount > 0 {
			if _, err := s.charge(ctx, pm, pro.NetAmount, pro.Currency); err != nil {
				return nil, err
			}
		} else {
			if _, err := s.gateway.Refund(ctx, pm.GatewayRef, -pro.NetAmount, pro.Currency); err != nil {
				return nil, fmt.Errorf("credit unused period value: %w", err)
			}
		}
	}

	applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, models.SubscriptionStatusActive, updates)
	if err != nil {
		return nil, fmt.Errorf("change plan: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repos.Subscription.GetByID(sub.ID)
	if err != nil {
		return nil, fmt.Errorf("reload subscription: %w", err)
	}
	return &PlanChangeResult{Subscription: updated, Proration: pro}, nil
}

// UpgradePlan changes to a more expensive plan.
func (s *Service) UpgradePlan(ctx context.Context, businessID, newPlanID uint) (*PlanChangeResult, error) {
	sub, err := s.getCurrent(businessID)
	if err != nil {
		return nil, err
	}
	currentPlan, err := s.getPlan(sub.PlanID)
	if err != nil {
		return nil, err
	}
	newPlan, err := s.getPlan(newPlanID)
	if err != nil {
		return nil, err
	}
	if newPlan.PriceCents <= currentPlan.PriceCents {
		return nil, newValidationError("target plan is not an upgrade")
	}
	return s.ChangeSubscriptionPlan(ctx, businessID, newPlanID)
}

// DowngradePlan changes to a cheaper plan, refusing the switch while current
// usage exceeds the target plan's limits.
func (s *Service) DowngradePlan(ctx context.Context, businessID, newPlanID uint) (*PlanChangeResult, error) {
	sub, err := s.getCurrent(businessID)
	if err != nil {
		return nil, err
	}
	currentPlan, err := s.getPlan(sub.PlanID)
	if err != nil {
		return nil, err
	}
	newPlan, err := s.getPlan(newPlanID)
	if err != nil {
		return nil, err
	}
	if newPlan.PriceCents >= currentPlan.PriceCents {
		return nil, newValidationError("target plan is not a downgrade")
	}
	if err := s.checkDowngradeUsage(businessID, newPlan); err != nil {
		return nil, err
	}
	return s.ChangeSubscriptionPlan(ctx, businessID, newPlanID)
}

// CancelSubscription cancels a subscription. With cancelAtPeriodEnd the status
// stays unchanged until the sweeper processes the period boundary; otherwise
// the status flips to canceled immediately. The period end is retained either
// way.
func (s *Service) CancelSubscription(ctx context.Context, businessID uint, cancelAtPeriodEnd bool) (*models.Subscription, error) {
	_ = ctx
	sub, err := s.getCurrent(businessID)
	if err != nil {
		return nil, err
	}
	switch sub.Status {
	case models.SubscriptionStatusActive, models.SubscriptionStatusTrialing, models.SubscriptionStatusPastDue:
	default:
		return nil, withMessage(ErrInvalidTransition, "Subscription is already canceled or expired")
	}
	if cancelAtPeriodEnd && sub.CancelAtPeriodEnd {
		return nil, withMessage(ErrInvalidTransition, "Subscription is already set to cancel at period end")
	}

	updates := map[string]interface{}{
		"auto_renewal": false,
	}
	if cancelAtPeriodEnd {
		updates["cancel_at_period_end"] = true
	} else {
		updates["status"] = models.SubscriptionStatusCanceled
		updates["cancel_at_period_end"] = false
	}

	applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, sub.Status, updates)
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}
	return s.repos.Subscription.GetByID(sub.ID)
}

// ReactivateSubscription undoes a cancellation, permitted only before the
// current period has ended.
func (s *Service) ReactivateSubscription(ctx context.Context, businessID uint) (*models.Subscription, error) {
	_ = ctx
	sub, err := s.getCurrent(businessID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case sub.IsCanceled() && now.Before(sub.CurrentPeriodEnd):
		applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, models.SubscriptionStatusCanceled, map[string]interface{}{
			"status":               models.SubscriptionStatusActive,
			"cancel_at_period_end": false,
			"auto_renewal":         true,
		})
		if err != nil {
			return nil, fmt.Errorf("reactivate subscription: %w", err)
		}
		if !applied {
			return nil, ErrInvalidTransition
		}
	case sub.IsActive() && sub.CancelAtPeriodEnd:
		applied, err := s.repos.Subscription.UpdateStatusIf(sub.ID, models.SubscriptionStatusActive, map[string]interface{}{
			"cancel_at_period_end": false,
			"auto_renewal":         true,
		})
		if err != nil {
			return nil, fmt.Errorf("reactivate subscription: %w", err)
		}
		if !applied {
			return nil, ErrInvalidTransition
		}
	default:
		return nil, withMessage(ErrInvalidTransition, "Subscription can no longer be reactivated")
	}

	return s.repos.Subscription.GetByID(sub.ID)
}

// GetCurrentSubscription loads the business's current subscription.
func (s *Service) GetCurrentSubscription(businessID uint) (*models.Subscription, error) {
	return s.getCurrent(businessID)
}

// ListSubscriptions returns current subscriptions matching the filter.
func (s *Service) ListSubscriptions(filter repository.SubscriptionFilter, offset, limit int) ([]models.Subscription, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	subs, err := s.repos.Subscription.List(filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Subscription.Count(filter)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (s *Service) getCurrent(businessID uint) (*models.Subscription, error) {
	if businessID == 0 {
		return nil, newValidationError("business_id is required")
	}
	sub, err := s.repos.Subscription.GetCurrentByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return sub, nil
}

func (s *Service) getPlan(planID uint) (*models.Plan, error) {
	plan, err := s.repos.Plan.GetByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}
	return plan, nil
}

// resolvePaymentMethod loads the given payment method or falls back to the
// business's default, and checks ownership.
func (s *Service) resolvePaymentMethod(businessID uint, paymentMethodID *uint) (*models.PaymentMethod, error) {
	if paymentMethodID != nil && *paymentMethodID != 0 {
		pm, err := s.repos.PaymentMeth.GetByID(*paymentMethodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidPaymentMethod
			}
			return nil, fmt.Errorf("load payment method: %w", err)
		}
		if pm.BusinessID != businessID {
			return nil, ErrInvalidPaymentMethod
		}
		return pm, nil
	}

	pm, err := s.repos.PaymentMeth.GetDefaultByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPaymentMethod
		}
		return nil, fmt.Errorf("load default payment method: %w", err)
	}
	return pm, nil
}

// charge runs a gateway charge, mapping declines (and timeouts) to the domain
// payment error.
func (s *Service) charge(ctx context.Context, pm *models.PaymentMethod, amount int64, currency string) (*payment.Result, error) {
	res, err := s.gateway.Charge(ctx, pm.GatewayRef, amount, currency)
	if err != nil {
		if errors.Is(err, payment.ErrChargeDeclined) {
			return nil, ErrPaymentFailed
		}
		return nil, withMessage(ErrPaymentFailed, "Payment could not be processed")
	}
	return res, nil
}

// checkDowngradeUsage refuses a downgrade while live usage exceeds the target
// plan's quotas.
func (s *Service) checkDowngradeUsage(businessID uint, target *models.Plan) error {
	checks := []struct {
		name  string
		limit int64
		count func(uint) (int64, error)
	}{
		{"staff members", target.MaxStaff, s.repos.Usage.CountStaff},
		{"services", target.MaxServices, s.repos.Usage.CountServices},
		{"customers", target.MaxCustomers, s.repos.Usage.CountCustomers},
	}
	for _, check := range checks {
		if check.limit == models.UnlimitedQuota {
			continue
		}
		count, err := check.count(businessID)
		if err != nil {
			return fmt.Errorf("count %s: %w", check.name, err)
		}
		if count > check.limit {
			return withMessage(ErrDowngradeBlocked,
				fmt.Sprintf("Current %s count (%d) exceeds the target plan's limit (%d)", check.name, count, check.limit))
		}
	}
	return nil
}
