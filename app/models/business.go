package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	BUSINESS_STATUS_ACTIVE   = "active"
	BUSINESS_STATUS_INACTIVE = "inactive"
	BUSINESS_STATUS_DISABLED = "disabled"
)

// Business is the tenant that owns staff, services, customers and exactly one
// current subscription.
type Business struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email     string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Phone     string         `gorm:"type:varchar(32);default:null" json:"phone" validate:"max=32"`
	City      string         `gorm:"type:varchar(100);default:null" json:"city" validate:"max=100"`
	State     string         `gorm:"type:varchar(100);default:null" json:"state" validate:"max=100"`
	Country   string         `gorm:"type:varchar(100);default:null" json:"country" validate:"max=100"`
	Status    string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Business) Validate() error {
	v := validator.New()

	return v.Struct(b)
}
