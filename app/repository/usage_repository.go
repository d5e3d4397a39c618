package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
)

// usageRepository implements the UsageRepository interface
type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage repository instance
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// CountStaff counts active staff members of a business
func (r *usageRepository) CountStaff(businessID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.StaffMember{}).
		Where("business_id = ? AND is_active = ?", businessID, true).
		Count(&count).Error
	return count, err
}

// CountServices counts active service offerings of a business
func (r *usageRepository) CountServices(businessID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ServiceOffering{}).
		Where("business_id = ? AND is_active = ?", businessID, true).
		Count(&count).Error
	return count, err
}

// CountCustomers counts customers of a business
func (r *usageRepository) CountCustomers(businessID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Customer{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}

// CountSmsSentSince counts SMS messages sent by a business since the given time
func (r *usageRepository) CountSmsSentSince(businessID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SmsMessage{}).
		Where("business_id = ? AND status = ? AND sent_at >= ?", businessID, models.SmsStatusSent, since).
		Count(&count).Error
	return count, err
}
