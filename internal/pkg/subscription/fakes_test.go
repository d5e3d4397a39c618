package subscription

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/payment"
)

type fakePlanRepo struct {
	plans map[uint]*models.Plan
}

func newFakePlanRepo(plans ...*models.Plan) *fakePlanRepo {
	r := &fakePlanRepo{plans: make(map[uint]*models.Plan)}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakePlanRepo) GetByID(id uint) (*models.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlanRepo) GetAllActive() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) GetByBillingInterval(interval string) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.IsActive && p.BillingInterval == interval {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) GetPriceOverride(planID uint, city, state, country string) (*models.PlanPriceOverride, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePlanRepo) Create(plan *models.Plan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *fakePlanRepo) Count() (int64, error) {
	return int64(len(r.plans)), nil
}

type fakeSubRepo struct {
	mu     sync.Mutex
	subs   map[uint]*models.Subscription
	nextID uint
}

func newFakeSubRepo(subs ...*models.Subscription) *fakeSubRepo {
	r := &fakeSubRepo{subs: make(map[uint]*models.Subscription), nextID: 1}
	for _, s := range subs {
		if s.ID == 0 {
			s.ID = r.nextID
		}
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
		r.subs[s.ID] = s
	}
	return r
}

func (r *fakeSubRepo) Create(sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub.IsCurrent {
		for _, existing := range r.subs {
			if existing.BusinessID == sub.BusinessID {
				existing.IsCurrent = false
			}
		}
	}
	sub.ID = r.nextID
	r.nextID++
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubRepo) GetByID(id uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubRepo) GetByPublicID(publicID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.PublicID == publicID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubRepo) GetCurrentByBusinessID(businessID uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.BusinessID == businessID && s.IsCurrent {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubRepo) Update(sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubRepo) UpdateStatusIf(id uint, expectedStatus string, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeSubRepo) List(filter repository.SubscriptionFilter, offset, limit int) ([]models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeSubRepo) ListDue(now time.Time, limit int) ([]models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Subscription
	for _, s := range r.subs {
		if s.IsCurrent && !s.CurrentPeriodEnd.After(now) && s.Status != models.SubscriptionStatusExpired {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) ListTrialsEndingBy(cutoff time.Time) ([]models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Subscription
	for _, s := range r.subs {
		if s.IsCurrent && s.Status == models.SubscriptionStatusTrialing &&
			s.TrialEnd != nil && !s.TrialEnd.After(cutoff) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) Count(filter repository.SubscriptionFilter) (int64, error) {
	subs, err := r.List(filter, 0, 0)
	return int64(len(subs)), err
}

type fakePaymentMethodRepo struct {
	methods map[uint]*models.PaymentMethod
}

func newFakePaymentMethodRepo(methods ...*models.PaymentMethod) *fakePaymentMethodRepo {
	r := &fakePaymentMethodRepo{methods: make(map[uint]*models.PaymentMethod)}
	for _, pm := range methods {
		r.methods[pm.ID] = pm
	}
	return r
}

func (r *fakePaymentMethodRepo) Create(pm *models.PaymentMethod) error {
	r.methods[pm.ID] = pm
	return nil
}

func (r *fakePaymentMethodRepo) GetByID(id uint) (*models.PaymentMethod, error) {
	pm, ok := r.methods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *pm
	return &cp, nil
}

func (r *fakePaymentMethodRepo) GetDefaultByBusinessID(businessID uint) (*models.PaymentMethod, error) {
	for _, pm := range r.methods {
		if pm.BusinessID == businessID && pm.IsDefault {
			cp := *pm
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentMethodRepo) ListByBusinessID(businessID uint) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	for _, pm := range r.methods {
		if pm.BusinessID == businessID {
			out = append(out, *pm)
		}
	}
	return out, nil
}

func (r *fakePaymentMethodRepo) SetDefault(businessID, id uint) error {
	for _, pm := range r.methods {
		if pm.BusinessID == businessID {
			pm.IsDefault = pm.ID == id
		}
	}
	return nil
}

type fakeUsageRepo struct {
	staff     int64
	services  int64
	customers int64
	sms       int64
}

func (r *fakeUsageRepo) CountStaff(businessID uint) (int64, error)     { return r.staff, nil }
func (r *fakeUsageRepo) CountServices(businessID uint) (int64, error)  { return r.services, nil }
func (r *fakeUsageRepo) CountCustomers(businessID uint) (int64, error) { return r.customers, nil }
func (r *fakeUsageRepo) CountSmsSentSince(businessID uint, since time.Time) (int64, error) {
	return r.sms, nil
}

type fakeNotificationRepo struct {
	created []models.Notification
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	n.ID = uint(len(r.created) + 1)
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) MarkDelivered(id uint, at time.Time) error { return nil }

func (r *fakeNotificationRepo) ListByBusinessID(businessID uint, offset, limit int) ([]models.Notification, error) {
	return r.created, nil
}

type chargeCall struct {
	gatewayRef string
	amount     int64
	currency   string
}

type fakeGateway struct {
	mu        sync.Mutex
	chargeErr error
	refundErr error
	charges   []chargeCall
	refunds   []chargeCall

	// failFor declines charges for these gateway refs only.
	failFor map[string]bool
}

func (g *fakeGateway) Charge(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*payment.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	if g.failFor[gatewayRef] {
		return nil, payment.ErrChargeDeclined
	}
	g.charges = append(g.charges, chargeCall{gatewayRef: gatewayRef, amount: amountCents, currency: currency})
	return &payment.Result{TransactionID: "txn_test"}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, gatewayRef string, amountCents int64, currency string) (*payment.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, chargeCall{gatewayRef: gatewayRef, amount: amountCents, currency: currency})
	return &payment.Result{TransactionID: "re_test"}, nil
}

type recordingNotifier struct {
	mu           sync.Mutex
	trialEnding  []uint
	paymentFails []uint
	renewed      []uint
	expired      []uint
}

func (n *recordingNotifier) TrialEnding(businessID uint, trialEnd time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trialEnding = append(n.trialEnding, businessID)
}

func (n *recordingNotifier) PaymentFailed(businessID uint, failedCount int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paymentFails = append(n.paymentFails, businessID)
}

func (n *recordingNotifier) SubscriptionRenewed(businessID uint, periodEnd time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.renewed = append(n.renewed, businessID)
}

func (n *recordingNotifier) SubscriptionExpired(businessID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired = append(n.expired, businessID)
}

// testEnv bundles a service over in-memory fakes with a fixed clock.
type testEnv struct {
	svc      *Service
	subs     *fakeSubRepo
	plans    *fakePlanRepo
	methods  *fakePaymentMethodRepo
	usage    *fakeUsageRepo
	gateway  *fakeGateway
	notifier *recordingNotifier
	now      time.Time
}

func newTestEnv(now time.Time, plans ...*models.Plan) *testEnv {
	env := &testEnv{
		subs:     newFakeSubRepo(),
		plans:    newFakePlanRepo(plans...),
		methods:  newFakePaymentMethodRepo(),
		usage:    &fakeUsageRepo{},
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
		now:      now,
	}
	repos := &repository.Repositories{
		Plan:         env.plans,
		Subscription: env.subs,
		PaymentMeth:  env.methods,
		Usage:        env.usage,
		Notification: &fakeNotificationRepo{},
	}
	env.svc = NewService(repos, env.gateway, env.notifier)
	env.svc.now = func() time.Time { return env.now }
	return env
}
