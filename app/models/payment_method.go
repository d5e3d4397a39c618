package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// PaymentMethod stores masked card metadata only; the actual instrument lives
// at the payment gateway and is referenced by GatewayRef. A subscription holds
// a weak reference to at most one payment method.
type PaymentMethod struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BusinessID  uint           `gorm:"not null;index" json:"business_id" validate:"required"`
	GatewayRef  string         `gorm:"type:varchar(191);not null" json:"-" validate:"required"`
	Brand       string         `gorm:"type:varchar(32);not null" json:"brand" validate:"required,max=32"`
	LastFour    string         `gorm:"type:varchar(4);not null" json:"last_four" validate:"required,len=4,numeric"`
	ExpiryMonth int            `gorm:"not null" json:"expiry_month" validate:"min=1,max=12"`
	ExpiryYear  int            `gorm:"not null" json:"expiry_year" validate:"min=2000"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (pm *PaymentMethod) Validate() error {
	v := validator.New()

	return v.Struct(pm)
}
