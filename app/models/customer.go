package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer belongs to a business and counts against the plan's customer quota.
type Customer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BusinessID uint           `gorm:"not null;index" json:"business_id"`
	Name       string         `gorm:"type:varchar(150);not null" json:"name"`
	Email      string         `gorm:"type:varchar(200);default:null" json:"email"`
	Phone      string         `gorm:"type:varchar(32);default:null" json:"phone"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
