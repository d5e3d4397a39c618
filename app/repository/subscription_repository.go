package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create inserts a new subscription row. When the row is current, any prior
// current row of the business is demoted to history in the same transaction.
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if sub.IsCurrent {
			if err := tx.Model(&models.Subscription{}).
				Where("business_id = ? AND is_current = ?", sub.BusinessID, true).
				Update("is_current", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(sub).Error
	})
}

// GetByID retrieves a subscription by its internal ID
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByPublicID retrieves a subscription by its public UUID
func (r *subscriptionRepository) GetByPublicID(publicID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("public_id = ?", publicID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetCurrentByBusinessID retrieves the single current subscription of a business
func (r *subscriptionRepository) GetCurrentByBusinessID(businessID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("business_id = ? AND is_current = ?", businessID, true).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Update saves all fields of an existing subscription
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// UpdateStatusIf applies updates only when the row still has the expected
// status. Returns false when another writer already moved the subscription on,
// which makes concurrent sweep runs safe against double renewal.
func (r *subscriptionRepository) UpdateStatusIf(id uint, expectedStatus string, updates map[string]interface{}) (bool, error) {
	tx := r.db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *subscriptionRepository) applyFilter(tx *gorm.DB, filter SubscriptionFilter) *gorm.DB {
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.PlanID != 0 {
		tx = tx.Where("plan_id = ?", filter.PlanID)
	}
	return tx
}

// List retrieves a paginated list of current subscriptions matching the filter
func (r *subscriptionRepository) List(filter SubscriptionFilter, offset, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	tx := r.applyFilter(r.db.Where("is_current = ?", true), filter)
	err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, err
}

// ListDue retrieves current subscriptions whose billing period has elapsed
func (r *subscriptionRepository) ListDue(now time.Time, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("is_current = ? AND current_period_end <= ?", true, now).
		Where("status IN ?", []string{
			models.SubscriptionStatusActive,
			models.SubscriptionStatusPastDue,
			models.SubscriptionStatusCanceled,
			models.SubscriptionStatusTrialing,
		}).
		Order("current_period_end ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// ListTrialsEndingBy retrieves trialing subscriptions whose trial ends before cutoff
func (r *subscriptionRepository) ListTrialsEndingBy(cutoff time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("is_current = ? AND status = ? AND trial_end IS NOT NULL AND trial_end <= ?",
			true, models.SubscriptionStatusTrialing, cutoff).
		Find(&subs).Error
	return subs, err
}

// Count returns the number of current subscriptions matching the filter
func (r *subscriptionRepository) Count(filter SubscriptionFilter) (int64, error) {
	var count int64
	tx := r.applyFilter(r.db.Model(&models.Subscription{}).Where("is_current = ?", true), filter)
	err := tx.Count(&count).Error
	return count, err
}
