package models

import "time"

const (
	SmsStatusQueued = "queued"
	SmsStatusSent   = "sent"
	SmsStatusFailed = "failed"
)

// SmsMessage records an outbound SMS. The daily usage quota is computed by
// counting these rows, so they are never deleted within the retention window.
type SmsMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BusinessID uint      `gorm:"not null;index:idx_sms_messages_business_sent,priority:1" json:"business_id"`
	Recipient  string    `gorm:"type:varchar(32);not null" json:"recipient"`
	Body       string    `gorm:"type:text" json:"body"`
	Status     string    `gorm:"type:varchar(16);not null;default:'queued'" json:"status"`
	SentAt     time.Time `gorm:"type:timestamp;not null;index:idx_sms_messages_business_sent,priority:2" json:"sent_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
