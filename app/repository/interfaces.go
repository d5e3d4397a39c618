package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
)

// PlanRepository defines the interface for plan catalog database operations
type PlanRepository interface {
	GetByID(id uint) (*models.Plan, error)
	GetAllActive() ([]models.Plan, error)
	GetByBillingInterval(interval string) ([]models.Plan, error)
	GetPriceOverride(planID uint, city, state, country string) (*models.PlanPriceOverride, error)
	Create(plan *models.Plan) error
	Count() (int64, error)
}

// SubscriptionFilter narrows subscription listings.
type SubscriptionFilter struct {
	Status string
	PlanID uint
}

// SubscriptionRepository defines the interface for subscription database
// operations. Status transitions go through UpdateStatusIf so concurrent
// sweeps cannot apply the same transition twice.
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByPublicID(publicID string) (*models.Subscription, error)
	GetCurrentByBusinessID(businessID uint) (*models.Subscription, error)
	Update(sub *models.Subscription) error
	UpdateStatusIf(id uint, expectedStatus string, updates map[string]interface{}) (bool, error)
	List(filter SubscriptionFilter, offset, limit int) ([]models.Subscription, error)
	ListDue(now time.Time, limit int) ([]models.Subscription, error)
	ListTrialsEndingBy(cutoff time.Time) ([]models.Subscription, error)
	Count(filter SubscriptionFilter) (int64, error)
}

// PaymentMethodRepository defines the interface for payment method operations
type PaymentMethodRepository interface {
	Create(pm *models.PaymentMethod) error
	GetByID(id uint) (*models.PaymentMethod, error)
	GetDefaultByBusinessID(businessID uint) (*models.PaymentMethod, error)
	ListByBusinessID(businessID uint) ([]models.PaymentMethod, error)
	SetDefault(businessID, id uint) error
}

// UsageRepository counts live resource rows for quota checks. Counts are
// always recomputed from source tables; nothing is cached.
type UsageRepository interface {
	CountStaff(businessID uint) (int64, error)
	CountServices(businessID uint) (int64, error)
	CountCustomers(businessID uint) (int64, error)
	CountSmsSentSince(businessID uint, since time.Time) (int64, error)
}

// NotificationRepository persists alert traces written by the notifier worker.
type NotificationRepository interface {
	Create(n *models.Notification) error
	MarkDelivered(id uint, at time.Time) error
	ListByBusinessID(businessID uint, offset, limit int) ([]models.Notification, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Plan         PlanRepository
	Subscription SubscriptionRepository
	PaymentMeth  PaymentMethodRepository
	Usage        UsageRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		PaymentMeth:  NewPaymentMethodRepository(db),
		Usage:        NewUsageRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
