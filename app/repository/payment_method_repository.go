package repository

import (
	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
)

// paymentMethodRepository implements the PaymentMethodRepository interface
type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository instance
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

// Create stores a new masked payment method
func (r *paymentMethodRepository) Create(pm *models.PaymentMethod) error {
	return r.db.Create(pm).Error
}

// GetByID retrieves a payment method by its ID
func (r *paymentMethodRepository) GetByID(id uint) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := r.db.First(&pm, id).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// GetDefaultByBusinessID retrieves the business's default payment method
func (r *paymentMethodRepository) GetDefaultByBusinessID(businessID uint) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := r.db.Where("business_id = ? AND is_default = ?", businessID, true).First(&pm).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// ListByBusinessID retrieves all payment methods of a business
func (r *paymentMethodRepository) ListByBusinessID(businessID uint) ([]models.PaymentMethod, error) {
	var pms []models.PaymentMethod
	err := r.db.Where("business_id = ?", businessID).Order("created_at DESC").Find(&pms).Error
	return pms, err
}

// SetDefault marks one payment method as default and clears the flag on the rest
func (r *paymentMethodRepository) SetDefault(businessID, id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentMethod{}).
			Where("business_id = ?", businessID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.PaymentMethod{}).
			Where("id = ? AND business_id = ?", id, businessID).
			Update("is_default", true).Error
	})
}
