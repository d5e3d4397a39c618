package controllers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/payment"
	"github.com/randevuhq/randevu/internal/pkg/subscription"
)

// In-memory repositories backing controller round-trip tests.

type memPlanRepo struct {
	plans map[uint]*models.Plan
}

func (r *memPlanRepo) GetByID(id uint) (*models.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPlanRepo) GetAllActive() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) GetByBillingInterval(interval string) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.IsActive && p.BillingInterval == interval {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) GetPriceOverride(uint, string, string, string) (*models.PlanPriceOverride, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *memPlanRepo) Create(p *models.Plan) error { r.plans[p.ID] = p; return nil }
func (r *memPlanRepo) Count() (int64, error)       { return int64(len(r.plans)), nil }

type memSubRepo struct {
	subs   map[uint]*models.Subscription
	nextID uint
}

func (r *memSubRepo) Create(sub *models.Subscription) error {
	if sub.IsCurrent {
		for _, existing := range r.subs {
			if existing.BusinessID == sub.BusinessID {
				existing.IsCurrent = false
			}
		}
	}
	r.nextID++
	sub.ID = r.nextID
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *memSubRepo) GetByID(id uint) (*models.Subscription, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubRepo) GetByPublicID(publicID string) (*models.Subscription, error) {
	for _, s := range r.subs {
		if s.PublicID == publicID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSubRepo) GetCurrentByBusinessID(businessID uint) (*models.Subscription, error) {
	for _, s := range r.subs {
		if s.BusinessID == businessID && s.IsCurrent {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSubRepo) Update(sub *models.Subscription) error {
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *memSubRepo) UpdateStatusIf(id uint, expectedStatus string, updates map[string]interface{}) (bool, error) {
	s, ok := r.subs[id]
	if !ok || s.Status != expectedStatus {
		return false, nil
	}
	for key, value := range updates {
		switch key {
		case "status":
			s.Status = value.(string)
		case "plan_id":
			s.PlanID = value.(uint)
		case "payment_method_id":
			pmID := value.(uint)
			s.PaymentMethodID = &pmID
		case "current_period_start":
			s.CurrentPeriodStart = value.(time.Time)
		case "current_period_end":
			s.CurrentPeriodEnd = value.(time.Time)
		case "next_billing_date":
			s.NextBillingDate = value.(*time.Time)
		case "failed_payment_count":
			s.FailedPaymentCount = value.(int)
		case "cancel_at_period_end":
			s.CancelAtPeriodEnd = value.(bool)
		case "auto_renewal":
			s.AutoRenewal = value.(bool)
		}
	}
	return true, nil
}

func (r *memSubRepo) List(filter repository.SubscriptionFilter, offset, limit int) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range r.subs {
		if !s.IsCurrent {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.PlanID != 0 && s.PlanID != filter.PlanID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *memSubRepo) ListDue(now time.Time, limit int) ([]models.Subscription, error) {
	return nil, nil
}

func (r *memSubRepo) ListTrialsEndingBy(cutoff time.Time) ([]models.Subscription, error) {
	return nil, nil
}

func (r *memSubRepo) Count(filter repository.SubscriptionFilter) (int64, error) {
	subs, err := r.List(filter, 0, 0)
	return int64(len(subs)), err
}

type memPaymentMethodRepo struct {
	methods map[uint]*models.PaymentMethod
}

func (r *memPaymentMethodRepo) Create(pm *models.PaymentMethod) error {
	r.methods[pm.ID] = pm
	return nil
}

func (r *memPaymentMethodRepo) GetByID(id uint) (*models.PaymentMethod, error) {
	pm, ok := r.methods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *pm
	return &cp, nil
}

func (r *memPaymentMethodRepo) GetDefaultByBusinessID(businessID uint) (*models.PaymentMethod, error) {
	for _, pm := range r.methods {
		if pm.BusinessID == businessID && pm.IsDefault {
			cp := *pm
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPaymentMethodRepo) ListByBusinessID(businessID uint) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	for _, pm := range r.methods {
		if pm.BusinessID == businessID {
			out = append(out, *pm)
		}
	}
	return out, nil
}

func (r *memPaymentMethodRepo) SetDefault(businessID, id uint) error { return nil }

type memUsageRepo struct {
	staff, services, customers, sms int64
}

func (r *memUsageRepo) CountStaff(uint) (int64, error)     { return r.staff, nil }
func (r *memUsageRepo) CountServices(uint) (int64, error)  { return r.services, nil }
func (r *memUsageRepo) CountCustomers(uint) (int64, error) { return r.customers, nil }
func (r *memUsageRepo) CountSmsSentSince(uint, time.Time) (int64, error) {
	return r.sms, nil
}

type memNotificationRepo struct{}

func (memNotificationRepo) Create(n *models.Notification) error          { return nil }
func (memNotificationRepo) MarkDelivered(id uint, at time.Time) error    { return nil }
func (memNotificationRepo) ListByBusinessID(uint, int, int) ([]models.Notification, error) {
	return nil, nil
}

type okGateway struct{}

func (okGateway) Charge(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*payment.Result, error) {
	return &payment.Result{TransactionID: "txn_test"}, nil
}

func (okGateway) Refund(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*payment.Result, error) {
	return &payment.Result{TransactionID: "re_test"}, nil
}

type controllerFixture struct {
	repos   *repository.Repositories
	subs    *memSubRepo
	plans   *memPlanRepo
	methods *memPaymentMethodRepo
	usage   *memUsageRepo
	svc     *subscription.Service
}

func newControllerFixture(plans ...*models.Plan) *controllerFixture {
	f := &controllerFixture{
		subs:    &memSubRepo{subs: make(map[uint]*models.Subscription)},
		plans:   &memPlanRepo{plans: make(map[uint]*models.Plan)},
		methods: &memPaymentMethodRepo{methods: make(map[uint]*models.PaymentMethod)},
		usage:   &memUsageRepo{},
	}
	for _, p := range plans {
		f.plans.plans[p.ID] = p
	}
	f.repos = &repository.Repositories{
		Plan:         f.plans,
		Subscription: f.subs,
		PaymentMeth:  f.methods,
		Usage:        f.usage,
		Notification: memNotificationRepo{},
	}
	f.svc = subscription.NewService(f.repos, okGateway{}, nil)
	return f
}
