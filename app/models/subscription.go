package models

import "time"

const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// Subscription is a business's subscription state. At most one row per
// business has IsCurrent=true; superseded rows remain as history and are never
// hard-deleted.
type Subscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	PublicID           string     `gorm:"type:varchar(36);uniqueIndex" json:"public_id"`
	BusinessID         uint       `gorm:"not null;index:idx_subscriptions_business_current,priority:1" json:"business_id"`
	PlanID             uint       `gorm:"not null;index" json:"plan_id"`
	Status             string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	IsCurrent          bool       `gorm:"not null;default:true;index:idx_subscriptions_business_current,priority:2" json:"is_current"`
	CurrentPeriodStart time.Time  `gorm:"type:timestamp;not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `gorm:"type:timestamp;not null;index" json:"current_period_end"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`
	TrialStart         *time.Time `gorm:"type:timestamp;default:null" json:"trial_start,omitempty"`
	TrialEnd           *time.Time `gorm:"type:timestamp;default:null" json:"trial_end,omitempty"`
	AutoRenewal        bool       `gorm:"default:true" json:"auto_renewal"`
	PaymentMethodID    *uint      `gorm:"default:null" json:"payment_method_id,omitempty"`
	NextBillingDate    *time.Time `gorm:"type:timestamp;default:null" json:"next_billing_date,omitempty"`
	FailedPaymentCount int        `gorm:"not null;default:0" json:"failed_payment_count"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) IsTrialing() bool {
	return s.Status == SubscriptionStatusTrialing
}

func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

func (s *Subscription) IsCanceled() bool {
	return s.Status == SubscriptionStatusCanceled
}

// PeriodElapsed reports whether the current billing period has ended at the
// given time.
func (s *Subscription) PeriodElapsed(now time.Time) bool {
	return !now.Before(s.CurrentPeriodEnd)
}

// TrialDaysRemainingAt returns the number of days left in the trial at the
// given time, rounding partial days up. Zero when not trialing.
func (s *Subscription) TrialDaysRemainingAt(now time.Time) int {
	if !s.IsTrialing() || s.TrialEnd == nil {
		return 0
	}
	remaining := s.TrialEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := remaining.Hours() / 24
	return int(days + 0.5)
}
