package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
)

// notificationRepository implements the NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create stores a notification trace
func (r *notificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// MarkDelivered records the delivery timestamp of a notification
func (r *notificationRepository) MarkDelivered(id uint, at time.Time) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("delivered_at", &at).Error
}

// ListByBusinessID retrieves a paginated list of notifications for a business
func (r *notificationRepository) ListByBusinessID(businessID uint, offset, limit int) ([]models.Notification, error) {
	var ns []models.Notification
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&ns).Error
	return ns, err
}
