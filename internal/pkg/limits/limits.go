package limits

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
	"github.com/randevuhq/randevu/app/repository"
)

// ErrNoSubscription is returned when a business has no current subscription to
// derive quotas from.
var ErrNoSubscription = errors.New("business has no current subscription")

// CheckResult is the outcome of one quota check. Limit of -1 means unlimited.
type CheckResult struct {
	Allowed      bool   `json:"allowed"`
	CurrentCount int64  `json:"current_count"`
	Limit        int64  `json:"limit"`
	Resource     string `json:"resource"`
}

// Summary holds every quota of a business at once, for dashboard use.
type Summary struct {
	Staff     CheckResult `json:"staff"`
	Services  CheckResult `json:"services"`
	Customers CheckResult `json:"customers"`
	SmsToday  CheckResult `json:"sms_today"`
}

// Validator checks live resource counts against the current plan's quotas.
// Every call recomputes from source counts; the check-then-create race is
// accepted (last write wins).
type Validator struct {
	subs  repository.SubscriptionRepository
	plans repository.PlanRepository
	usage repository.UsageRepository
	now   func() time.Time
}

// NewValidator creates a usage validator from injected repositories.
func NewValidator(subs repository.SubscriptionRepository, plans repository.PlanRepository, usage repository.UsageRepository) *Validator {
	return &Validator{subs: subs, plans: plans, usage: usage, now: time.Now}
}

// CanAddStaffMember reports whether the business may add another staff member.
func (v *Validator) CanAddStaffMember(businessID uint) (*CheckResult, error) {
	return v.check(businessID, "staff", func(plan *models.Plan) int64 { return plan.MaxStaff }, v.usage.CountStaff)
}

// CanAddServiceOffering reports whether the business may add another service.
func (v *Validator) CanAddServiceOffering(businessID uint) (*CheckResult, error) {
	return v.check(businessID, "services", func(plan *models.Plan) int64 { return plan.MaxServices }, v.usage.CountServices)
}

// CanAddCustomer reports whether the business may add another customer.
func (v *Validator) CanAddCustomer(businessID uint) (*CheckResult, error) {
	return v.check(businessID, "customers", func(plan *models.Plan) int64 { return plan.MaxCustomers }, v.usage.CountCustomers)
}

// CanSendSms reports whether the business is still under its daily SMS quota.
func (v *Validator) CanSendSms(businessID uint) (*CheckResult, error) {
	return v.check(businessID, "sms_per_day",
		func(plan *models.Plan) int64 { return plan.SmsQuotaPerDay },
		func(businessID uint) (int64, error) {
			return v.usage.CountSmsSentSince(businessID, v.startOfDay())
		})
}

// GetUsageSummary returns all quota checks for a business at once.
func (v *Validator) GetUsageSummary(businessID uint) (*Summary, error) {
	staff, err := v.CanAddStaffMember(businessID)
	if err != nil {
		return nil, err
	}
	services, err := v.CanAddServiceOffering(businessID)
	if err != nil {
		return nil, err
	}
	customers, err := v.CanAddCustomer(businessID)
	if err != nil {
		return nil, err
	}
	sms, err := v.CanSendSms(businessID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Staff:     *staff,
		Services:  *services,
		Customers: *customers,
		SmsToday:  *sms,
	}, nil
}

func (v *Validator) check(businessID uint, resource string, limitOf func(*models.Plan) int64, countFn func(uint) (int64, error)) (*CheckResult, error) {
	plan, err := v.currentPlan(businessID)
	if err != nil {
		return nil, err
	}

	count, err := countFn(businessID)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", resource, err)
	}

	limit := limitOf(plan)
	allowed := limit == models.UnlimitedQuota || count < limit
	return &CheckResult{
		Allowed:      allowed,
		CurrentCount: count,
		Limit:        limit,
		Resource:     resource,
	}, nil
}

func (v *Validator) currentPlan(businessID uint) (*models.Plan, error) {
	sub, err := v.subs.GetCurrentByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	plan, err := v.plans.GetByID(sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	return plan, nil
}

func (v *Validator) startOfDay() time.Time {
	now := v.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
