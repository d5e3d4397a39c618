package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// StaffMember is a countable resource checked against the plan's staff quota.
type StaffMember struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BusinessID uint           `gorm:"not null;index" json:"business_id" validate:"required"`
	Name       string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email      string         `gorm:"type:varchar(200);default:null" json:"email" validate:"omitempty,email"`
	Phone      string         `gorm:"type:varchar(32);default:null" json:"phone" validate:"max=32"`
	IsActive   bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *StaffMember) Validate() error {
	v := validator.New()

	return v.Struct(s)
}
