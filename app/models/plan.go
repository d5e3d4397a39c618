package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	BillingIntervalMonth = "month"
	BillingIntervalYear  = "year"
)

// UnlimitedQuota marks a feature limit with no cap.
const UnlimitedQuota int64 = -1

// Plan is a subscription plan version. Plans referenced by an active
// subscription are immutable; new pricing creates a new plan row instead of
// mutating an existing one.
type Plan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Slug            string    `gorm:"type:varchar(100);not null;index" json:"slug" validate:"required,min=2,max=100"`
	PriceCents      int64     `gorm:"not null" json:"price_cents" validate:"gte=0"`
	Currency        string    `gorm:"type:varchar(3);not null;default:'TRY'" json:"currency" validate:"required,len=3"`
	BillingInterval string    `gorm:"type:varchar(16);not null;default:'month'" json:"billing_interval" validate:"oneof=month year"`
	TrialDays       int       `gorm:"not null;default:0" json:"trial_days" validate:"gte=0"`
	MaxStaff        int64     `gorm:"not null;default:0" json:"max_staff"`
	MaxServices     int64     `gorm:"not null;default:0" json:"max_services"`
	MaxCustomers    int64     `gorm:"not null;default:0" json:"max_customers"`
	SmsQuotaPerDay  int64     `gorm:"not null;default:0" json:"sms_quota_per_day"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// PeriodEndFrom returns the end of one billing period starting at the given time.
func (p *Plan) PeriodEndFrom(start time.Time) time.Time {
	if p.BillingInterval == BillingIntervalYear {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// TrialEndsAt returns when a trial started at the given time ends.
// If the plan has no trial, it returns startedAt unchanged.
func (p *Plan) TrialEndsAt(startedAt time.Time) time.Time {
	if p.TrialDays <= 0 {
		return startedAt
	}
	return startedAt.AddDate(0, 0, p.TrialDays)
}
