package models

import "time"

// PlanPriceOverride adjusts a plan's price for a geographic region. Matching is
// a pure lookup by city/state/country; the most specific active row wins.
type PlanPriceOverride struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlanID     uint      `gorm:"not null;index:idx_plan_price_overrides_plan_region,priority:1" json:"plan_id"`
	City       string    `gorm:"type:varchar(100);not null;default:'';index:idx_plan_price_overrides_plan_region,priority:2" json:"city"`
	State      string    `gorm:"type:varchar(100);not null;default:''" json:"state"`
	Country    string    `gorm:"type:varchar(100);not null;default:''" json:"country"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	Currency   string    `gorm:"type:varchar(3);not null;default:'TRY'" json:"currency"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
