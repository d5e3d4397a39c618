package models

import (
	"time"

	"gorm.io/gorm"
)

// ServiceOffering is a bookable service and a countable resource checked
// against the plan's service quota.
type ServiceOffering struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	BusinessID      uint           `gorm:"not null;index" json:"business_id"`
	Name            string         `gorm:"type:varchar(150);not null" json:"name"`
	DurationMinutes int            `gorm:"not null;default:30" json:"duration_minutes"`
	PriceCents      int64          `gorm:"not null;default:0" json:"price_cents"`
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
