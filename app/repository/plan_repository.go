package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAllActive retrieves all active plans ordered by price
func (r *planRepository) GetAllActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("is_active = ?", true).Order("price_cents ASC").Find(&plans).Error
	return plans, err
}

// GetByBillingInterval retrieves active plans with the given billing interval
func (r *planRepository) GetByBillingInterval(interval string) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("is_active = ? AND billing_interval = ?", true, interval).
		Order("price_cents ASC").Find(&plans).Error
	return plans, err
}

// GetPriceOverride returns the most specific active price override for the
// region, preferring city over state over country matches.
func (r *planRepository) GetPriceOverride(planID uint, city, state, country string) (*models.PlanPriceOverride, error) {
	conditions := []struct {
		clause string
		args   []interface{}
	}{
		{"city = ? AND country = ?", []interface{}{city, country}},
		{"city = '' AND state = ? AND country = ?", []interface{}{state, country}},
		{"city = '' AND state = '' AND country = ?", []interface{}{country}},
	}

	for _, cond := range conditions {
		var override models.PlanPriceOverride
		err := r.db.Where("plan_id = ? AND is_active = ?", planID, true).
			Where(cond.clause, cond.args...).
			First(&override).Error
		if err == nil {
			return &override, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Create inserts a new plan version
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// Count returns the total number of plans
func (r *planRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Plan{}).Count(&count).Error
	return count, err
}
