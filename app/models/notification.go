package models

import "time"

const (
	NotificationTypeTrialEnding   = "trial_ending"
	NotificationTypePaymentFailed = "payment_failed"
	NotificationTypeRenewed       = "subscription_renewed"
	NotificationTypeExpired       = "subscription_expired"
)

// Notification is the persisted trace of a fire-and-forget alert handed to the
// delivery collaborator. Delivery failures never affect subscription state.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	BusinessID  uint       `gorm:"not null;index" json:"business_id"`
	Type        string     `gorm:"type:varchar(40);not null;index" json:"type"`
	Message     string     `gorm:"type:text" json:"message"`
	DeliveredAt *time.Time `gorm:"type:timestamp;default:null" json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
